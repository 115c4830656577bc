package request

import "netmap/internal/topology"

// SaveDiagram persists a serialized topology document under a name.
type SaveDiagram struct {
	Name     string             `json:"name" validate:"required,min=1,max=128"`
	Document *topology.Document `json:"document" validate:"required"`
}
