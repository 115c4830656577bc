package mapper

import (
	"netmap/internal/api/handler/response"
	"netmap/internal/api/models"
)

type DiagramMapper struct{}

func (DiagramMapper) EntityToDiagramInfo(diagram models.Diagram) response.DiagramInfo {
	return response.DiagramInfo{
		Filename:        diagram.Name,
		Size:            diagram.Size,
		Created:         diagram.CreatedAt,
		Updated:         diagram.UpdatedAt,
		NodeCount:       diagram.NodeCount,
		ConnectionCount: diagram.ConnectionCount,
	}
}

func (m DiagramMapper) ToDiagramInfos(diagrams []models.Diagram) []response.DiagramInfo {
	infos := make([]response.DiagramInfo, 0, len(diagrams))
	for _, d := range diagrams {
		infos = append(infos, m.EntityToDiagramInfo(d))
	}
	return infos
}
