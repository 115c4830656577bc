package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// TemplateInterface is one declared interface on a device template, e.g.
// {"name": "Gig0/0", "type": "ethernet"}.
type TemplateInterface struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// DeviceTemplate is a catalogue entry the palette drags onto the canvas:
// device category, icon and the interfaces new nodes of this kind start
// with. Interfaces are stored as jsonb.
type DeviceTemplate struct {
	ID         uint         `gorm:"primaryKey"`
	Key        string       `gorm:"uniqueIndex;not null"`
	Name       string       `gorm:"not null"`
	Category   string       `gorm:"index;not null"`
	Icon       string       `gorm:"column:icon"`
	Interfaces DocumentData `gorm:"type:jsonb"`
	CreatedAt  time.Time    `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt  time.Time    `gorm:"autoUpdateTime;column:updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index;column:deleted_at"`
}

func (DeviceTemplate) TableName() string {
	return "device_templates"
}

// SetInterfaces serializes the declared interface list.
func (slf *DeviceTemplate) SetInterfaces(interfaces []TemplateInterface) error {
	data, err := json.Marshal(interfaces)
	if err != nil {
		return err
	}
	slf.Interfaces = data
	return nil
}

// GetInterfaces deserializes the declared interface list.
func (slf DeviceTemplate) GetInterfaces() ([]TemplateInterface, error) {
	if slf.Interfaces == nil {
		return nil, nil
	}
	var interfaces []TemplateInterface
	if err := json.Unmarshal(slf.Interfaces, &interfaces); err != nil {
		return nil, err
	}
	return interfaces, nil
}
