package repo

import (
	"netmap"
	"netmap/internal/api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TemplateRepository struct {
	Db *gorm.DB
}

func NewTemplateRepository() *TemplateRepository {
	return &TemplateRepository{Db: netmap.DB}
}

// FindByKey retrieves a device template by its catalogue key
func (slf *TemplateRepository) FindByKey(key string) (models.DeviceTemplate, error) {
	var template models.DeviceTemplate
	err := slf.Db.Where("key = ?", key).First(&template).Error
	return template, err
}

// FindAll retrieves the whole catalogue, grouped for the palette
func (slf *TemplateRepository) FindAll() ([]models.DeviceTemplate, error) {
	var templates []models.DeviceTemplate
	err := slf.Db.Order("category, name").Find(&templates).Error
	return templates, err
}

// Upsert inserts or updates a template by key
func (slf *TemplateRepository) Upsert(template *models.DeviceTemplate) error {
	return slf.Db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "category", "icon", "interfaces", "updated_at"}),
	}).Create(template).Error
}
