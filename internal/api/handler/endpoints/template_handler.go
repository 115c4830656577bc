package endpoints

import (
	"net/http"
	"netmap"
	"netmap/internal/api/handler/mapper"
	"netmap/internal/api/handler/middleware"
	"netmap/internal/api/handler/response"
	"netmap/internal/api/service"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type templateHandler struct {
	templateService *service.TemplateService
	mapper          mapper.TemplateMapper
	logger          zerolog.Logger
	config          netmap.AppConfig
}

func newTemplateHandler() *templateHandler {
	return &templateHandler{
		templateService: service.NewTemplateService(),
		logger:          netmap.Logger,
		config:          netmap.GetConfig(),
	}
}

func TemplateHandler(router *graceful.Graceful) {
	h := newTemplateHandler()

	templates := router.Group("/api/v1/templates")
	templates.Use(middleware.AuthMiddleware(h.config))
	{
		templates.GET("", h.list)
		templates.GET("/:key", h.get)
	}
}

func (slf *templateHandler) list(c *gin.Context) {
	templates, err := slf.templateService.List()
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error listing device templates")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to list templates"})
		return
	}

	dtos := make([]response.DeviceTemplateDTO, 0, len(templates))
	for _, template := range templates {
		dto, err := slf.mapper.EntityToTemplateDTO(template)
		if err != nil {
			slf.logger.Error().Err(err).Str("key", template.Key).Msg("Error mapping device template")
			continue
		}
		dtos = append(dtos, dto)
	}

	c.JSON(http.StatusOK, dtos)
}

func (slf *templateHandler) get(c *gin.Context) {
	key := c.Param("key")

	endpoints, err := slf.templateService.LoadDeviceEndpoints(key)
	if err != nil {
		slf.logger.Error().Err(err).Str("key", key).Msg("Error loading device template")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to load template"})
		return
	}
	if endpoints == nil {
		c.JSON(http.StatusNotFound, response.APIError{Message: "Template not found"})
		return
	}

	c.JSON(http.StatusOK, endpoints)
}
