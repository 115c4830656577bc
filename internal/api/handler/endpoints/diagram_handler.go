package endpoints

import (
	"errors"
	"net/http"
	"netmap"
	"netmap/internal/api/handler/mapper"
	"netmap/internal/api/handler/middleware"
	"netmap/internal/api/handler/request"
	"netmap/internal/api/handler/response"
	"netmap/internal/api/service"
	"netmap/pkg"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type diagramHandler struct {
	diagramService *service.DiagramService
	mapper         mapper.DiagramMapper
	logger         zerolog.Logger
	config         netmap.AppConfig
}

func newDiagramHandler() *diagramHandler {
	return &diagramHandler{
		diagramService: service.NewDiagramService(),
		logger:         netmap.Logger,
		config:         netmap.GetConfig(),
	}
}

func DiagramHandler(router *graceful.Graceful) {
	h := newDiagramHandler()

	diagrams := router.Group("/api/v1/diagrams")
	diagrams.Use(middleware.AuthMiddleware(h.config))
	{
		diagrams.GET("", h.list)
		diagrams.GET("/:name", h.load)
		diagrams.POST("", h.save)
		diagrams.DELETE("/:name", h.delete)
	}
}

func (slf *diagramHandler) list(c *gin.Context) {
	diagrams, err := slf.diagramService.List()
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error listing diagrams")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to list diagrams"})
		return
	}

	c.JSON(http.StatusOK, slf.mapper.ToDiagramInfos(diagrams))
}

func (slf *diagramHandler) load(c *gin.Context) {
	name := c.Param("name")

	doc, err := slf.diagramService.Load(name)
	if err != nil {
		if errors.Is(err, service.ErrDiagramNotFound) {
			c.JSON(http.StatusNotFound, response.APIError{Message: "Diagram not found"})
			return
		}
		slf.logger.Error().Err(err).Str("name", name).Msg("Error loading diagram")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to load diagram"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (slf *diagramHandler) save(c *gin.Context) {
	var saveDTO request.SaveDiagram

	err := pkg.ParseAndValidate(c, &saveDTO)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error parsing and validating save diagram DTO")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	ownerID := uint(0)
	if id, exists := c.Get("userID"); exists {
		ownerID = id.(uint)
	}

	diagram, err := slf.diagramService.Save(saveDTO.Name, saveDTO.Document, ownerID)
	if err != nil {
		slf.logger.Error().Err(err).Str("name", saveDTO.Name).Msg("Error saving diagram")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, slf.mapper.EntityToDiagramInfo(*diagram))
}

func (slf *diagramHandler) delete(c *gin.Context) {
	name := c.Param("name")

	if err := slf.diagramService.Delete(name); err != nil {
		if errors.Is(err, service.ErrDiagramNotFound) {
			c.JSON(http.StatusNotFound, response.APIError{Message: "Diagram not found"})
			return
		}
		slf.logger.Error().Err(err).Str("name", name).Msg("Error deleting diagram")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to delete diagram"})
		return
	}

	c.Status(http.StatusNoContent)
}
