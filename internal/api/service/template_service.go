package service

import (
	"errors"
	"fmt"
	"netmap"
	"netmap/internal/api/models"
	"netmap/internal/api/repo"
	"netmap/pkg"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// DeviceEndpoints is what the node-creation flow consumes: the declared
// interfaces a fresh node of this template starts with.
type DeviceEndpoints struct {
	Interfaces []models.TemplateInterface `json:"interfaces"`
}

// TemplateService serves the device catalogue. Lookups are cached in Redis
// since the palette requests the same handful of templates constantly.
type TemplateService struct {
	templateRepo *repo.TemplateRepository
	config       netmap.AppConfig
	logger       zerolog.Logger
}

func NewTemplateService() *TemplateService {
	return &TemplateService{
		templateRepo: repo.NewTemplateRepository(),
		config:       netmap.GetConfig(),
		logger:       netmap.Logger,
	}
}

func templateCacheKey(key string) string {
	return fmt.Sprintf("template:%s", key)
}

// LoadDeviceEndpoints returns the declared interface list for a template
// key, or nil when the catalogue has no such device.
func (slf *TemplateService) LoadDeviceEndpoints(templateKey string) (*DeviceEndpoints, error) {
	var cached DeviceEndpoints
	if err := pkg.RedisGet(templateCacheKey(templateKey), &cached); err == nil {
		return &cached, nil
	} else if !pkg.IsRedisNil(err) {
		slf.logger.Warn().Err(err).Str("template", templateKey).Msg("Template cache read failed")
	}

	template, err := slf.templateRepo.FindByKey(templateKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slf.logger.Error().Err(err).Str("template", templateKey).Msg("Error loading device template")
		return nil, err
	}

	interfaces, err := template.GetInterfaces()
	if err != nil {
		slf.logger.Error().Err(err).Str("template", templateKey).Msg("Error decoding template interfaces")
		return nil, err
	}

	endpoints := &DeviceEndpoints{Interfaces: interfaces}
	if err := pkg.RedisSet(templateCacheKey(templateKey), endpoints, slf.config.TemplateCacheTTL); err != nil {
		slf.logger.Warn().Err(err).Str("template", templateKey).Msg("Template cache write failed")
	}
	return endpoints, nil
}

// List returns the whole catalogue for the palette.
func (slf *TemplateService) List() ([]models.DeviceTemplate, error) {
	templates, err := slf.templateRepo.FindAll()
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error listing device templates")
		return nil, err
	}
	return templates, nil
}

// SeedDefaults installs the built-in catalogue. Run in dev mode after
// migration; upserts keep it idempotent.
func (slf *TemplateService) SeedDefaults() error {
	defaults := []struct {
		key        string
		name       string
		category   string
		icon       string
		interfaces []models.TemplateInterface
	}{
		{
			key: "router", name: "Router", category: "network", icon: "router.svg",
			interfaces: []models.TemplateInterface{
				{Name: "Gig0/0", Type: "ethernet"},
				{Name: "Gig0/1", Type: "ethernet"},
				{Name: "Serial0/0", Type: "serial"},
				{Name: "Serial0/1", Type: "serial"},
			},
		},
		{
			key: "switch", name: "Switch", category: "network", icon: "switch.svg",
			interfaces: []models.TemplateInterface{
				{Name: "Gig0/1", Type: "ethernet"},
				{Name: "Gig0/2", Type: "ethernet"},
				{Name: "Gig0/3", Type: "ethernet"},
				{Name: "Gig0/4", Type: "ethernet"},
			},
		},
		{
			key: "server", name: "Server", category: "compute", icon: "server.svg",
			interfaces: []models.TemplateInterface{
				{Name: "eth0", Type: "ethernet"},
				{Name: "eth1", Type: "ethernet"},
			},
		},
		{
			key: "firewall", name: "Firewall", category: "security", icon: "firewall.svg",
			interfaces: []models.TemplateInterface{
				{Name: "outside", Type: "ethernet"},
				{Name: "inside", Type: "ethernet"},
			},
		},
	}

	for _, d := range defaults {
		template := models.DeviceTemplate{
			Key:      d.key,
			Name:     d.name,
			Category: d.category,
			Icon:     d.icon,
		}
		if err := template.SetInterfaces(d.interfaces); err != nil {
			return err
		}
		if err := slf.templateRepo.Upsert(&template); err != nil {
			slf.logger.Error().Err(err).Str("template", d.key).Msg("Error seeding device template")
			return err
		}
		// Drop any stale cached copy so the next lookup sees the seeded row
		if err := pkg.RedisDelete(templateCacheKey(d.key)); err != nil {
			slf.logger.Warn().Err(err).Str("template", d.key).Msg("Template cache invalidation failed")
		}
	}

	slf.logger.Info().Int("templates", len(defaults)).Msg("Device catalogue seeded")
	return nil
}
