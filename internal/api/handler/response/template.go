package response

import "netmap/internal/api/models"

type DeviceTemplateDTO struct {
	Key        string                     `json:"key"`
	Name       string                     `json:"name"`
	Category   string                     `json:"category"`
	Icon       string                     `json:"icon,omitempty"`
	Interfaces []models.TemplateInterface `json:"interfaces"`
}
