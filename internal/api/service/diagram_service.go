package service

import (
	"encoding/json"
	"errors"
	"netmap"
	"netmap/internal/api/models"
	"netmap/internal/api/repo"
	"netmap/internal/topology"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ErrDiagramNotFound is returned when loading or deleting a name that was
// never saved.
var ErrDiagramNotFound = errors.New("diagram not found")

// DiagramService is the persistence gateway for topology documents: the
// core produces and consumes documents, this service owns filenames,
// timestamps and storage.
type DiagramService struct {
	diagramRepo *repo.DiagramRepository
	logger      zerolog.Logger
}

func NewDiagramService() *DiagramService {
	return &DiagramService{
		diagramRepo: repo.NewDiagramRepository(),
		logger:      netmap.Logger,
	}
}

// Save stores a serialized topology document under the given name,
// replacing any previous version.
func (slf *DiagramService) Save(name string, doc *topology.Document, ownerID uint) (*models.Diagram, error) {
	if name == "" {
		return nil, errors.New("diagram name is required")
	}
	if doc == nil || doc.Nodes == nil || doc.Connections == nil {
		return nil, topology.ErrMalformedDocument
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		slf.logger.Error().Err(err).Str("name", name).Msg("Error marshaling diagram document")
		return nil, err
	}

	connectionCount := len(doc.Connections)
	diagram := models.Diagram{
		Name:            name,
		Document:        payload,
		Size:            len(payload),
		NodeCount:       len(doc.Nodes),
		ConnectionCount: connectionCount,
		OwnerID:         ownerID,
	}

	if err := slf.diagramRepo.Upsert(&diagram); err != nil {
		slf.logger.Error().Err(err).Str("name", name).Msg("Error saving diagram")
		return nil, err
	}

	slf.logger.Info().
		Str("name", name).
		Int("nodes", diagram.NodeCount).
		Int("connections", diagram.ConnectionCount).
		Msg("Diagram saved")
	return &diagram, nil
}

// Load retrieves and decodes a stored topology document.
func (slf *DiagramService) Load(name string) (*topology.Document, error) {
	diagram, err := slf.diagramRepo.FindByName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiagramNotFound
		}
		slf.logger.Error().Err(err).Str("name", name).Msg("Error loading diagram")
		return nil, err
	}

	var doc topology.Document
	if err := json.Unmarshal(diagram.Document, &doc); err != nil {
		slf.logger.Error().Err(err).Str("name", name).Msg("Error decoding diagram document")
		return nil, err
	}
	return &doc, nil
}

// List returns all stored diagrams without their document payloads.
func (slf *DiagramService) List() ([]models.Diagram, error) {
	diagrams, err := slf.diagramRepo.FindAll()
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error listing diagrams")
		return nil, err
	}
	return diagrams, nil
}

// Delete removes a stored diagram by name.
func (slf *DiagramService) Delete(name string) error {
	if _, err := slf.diagramRepo.FindByName(name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDiagramNotFound
		}
		return err
	}
	if err := slf.diagramRepo.DeleteByName(name); err != nil {
		slf.logger.Error().Err(err).Str("name", name).Msg("Error deleting diagram")
		return err
	}
	slf.logger.Info().Str("name", name).Msg("Diagram deleted")
	return nil
}
