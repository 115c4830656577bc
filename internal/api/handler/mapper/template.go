package mapper

import (
	"netmap/internal/api/handler/response"
	"netmap/internal/api/models"
)

type TemplateMapper struct{}

func (TemplateMapper) EntityToTemplateDTO(template models.DeviceTemplate) (response.DeviceTemplateDTO, error) {
	interfaces, err := template.GetInterfaces()
	if err != nil {
		return response.DeviceTemplateDTO{}, err
	}
	return response.DeviceTemplateDTO{
		Key:        template.Key,
		Name:       template.Name,
		Category:   template.Category,
		Icon:       template.Icon,
		Interfaces: interfaces,
	}, nil
}
