package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DocumentData holds a serialized topology document as raw JSON, stored in
// a jsonb column without re-encoding.
type DocumentData []byte

// Scan implements sql.Scanner interface
func (d *DocumentData) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*d = v
		return nil
	case string:
		*d = []byte(v)
		return nil
	default:
		return fmt.Errorf("cannot scan type %T into DocumentData", value)
	}
}

// Value implements driver.Valuer interface
func (d DocumentData) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return []byte(d), nil
}

// MarshalJSON implements json.Marshaler - returns raw JSON
func (d DocumentData) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	return d, nil
}

// UnmarshalJSON implements json.Unmarshaler - stores raw JSON
func (d *DocumentData) UnmarshalJSON(data []byte) error {
	if data == nil {
		*d = nil
		return nil
	}
	*d = data
	return nil
}

// Diagram is a saved topology document. Name doubles as the filename shown
// in the open/save dialogs. Node and connection counts are denormalized so
// listings never parse the document.
type Diagram struct {
	ID              uint         `gorm:"primaryKey"`
	Name            string       `gorm:"uniqueIndex;not null"`
	Document        DocumentData `gorm:"type:jsonb"`
	Size            int          `gorm:"not null;default:0"`
	NodeCount       int          `gorm:"not null;default:0"`
	ConnectionCount int          `gorm:"not null;default:0"`
	OwnerID         uint         `gorm:"index"`
	Owner           User         `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	CreatedAt       time.Time      `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime;column:updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index;column:deleted_at"`
}

func (Diagram) TableName() string {
	return "diagrams"
}
