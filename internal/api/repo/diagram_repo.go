package repo

import (
	"netmap"
	"netmap/internal/api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DiagramRepository struct {
	Db *gorm.DB
}

func NewDiagramRepository() *DiagramRepository {
	return &DiagramRepository{Db: netmap.DB}
}

// FindByName retrieves a diagram by its unique name
func (slf *DiagramRepository) FindByName(name string) (models.Diagram, error) {
	var diagram models.Diagram
	err := slf.Db.Where("name = ?", name).First(&diagram).Error
	return diagram, err
}

// FindAll retrieves all diagrams without their document payloads
func (slf *DiagramRepository) FindAll() ([]models.Diagram, error) {
	var diagrams []models.Diagram
	err := slf.Db.
		Select("id", "name", "size", "node_count", "connection_count", "owner_id", "created_at", "updated_at").
		Order("updated_at DESC").
		Find(&diagrams).Error
	return diagrams, err
}

// Upsert inserts a diagram or replaces the stored document for its name.
// deleted_at is cleared on conflict so saving under a previously deleted
// name revives the row instead of leaving it invisible to reads.
func (slf *DiagramRepository) Upsert(diagram *models.Diagram) error {
	return slf.Db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"document", "size", "node_count", "connection_count", "updated_at", "deleted_at",
		}),
	}).Create(diagram).Error
}

// DeleteByName removes a diagram by name
func (slf *DiagramRepository) DeleteByName(name string) error {
	return slf.Db.Where("name = ?", name).Delete(&models.Diagram{}).Error
}
