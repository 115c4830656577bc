package endpoints

import (
	"fmt"
	"net/http"
	"netmap"
	"netmap/internal/api/handler/middleware"
	"netmap/internal/api/handler/response"
	ws "netmap/internal/api/websocket"
	"strconv"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, you should validate the origin
		return true
	},
}

type websocketHandler struct {
	hub    *ws.Hub
	logger zerolog.Logger
	config netmap.AppConfig
}

func newWebSocketHandler(hub *ws.Hub) *websocketHandler {
	return &websocketHandler{
		hub:    hub,
		logger: netmap.Logger,
		config: netmap.GetConfig(),
	}
}

// WebSocketHandler sets up WebSocket routes
func WebSocketHandler(router *graceful.Graceful, hub *ws.Hub) {
	h := newWebSocketHandler(hub)

	wsRoutes := router.Group("/api/v1/ws")
	wsRoutes.Use(middleware.AuthMiddleware(h.config))
	{
		wsRoutes.GET("/diagrams/:diagramId", h.handleWebSocket)
		wsRoutes.GET("/diagrams/:diagramId/users", h.getActiveUsers)
	}

	wsRoutes.GET("/stats", h.getRoomStats)
}

// handleWebSocket handles WebSocket connections for a specific diagram
func (slf *websocketHandler) handleWebSocket(c *gin.Context) {
	diagramID, err := strconv.ParseUint(c.Param("diagramId"), 10, 32)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Invalid diagram ID")
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid diagram ID"})
		return
	}

	// Set by the auth middleware; absent in dev mode
	userID := uint(0)
	if id, exists := c.Get("userID"); exists {
		userID = id.(uint)
	}

	username, exists := c.Get("username")
	if !exists {
		username = fmt.Sprintf("User%d", userID)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to upgrade to WebSocket")
		return
	}

	clientID := uuid.New().String()

	client := ws.NewClient(
		clientID,
		userID,
		username.(string),
		uint(diagramID),
		slf.hub,
		conn,
		slf.logger,
	)

	slf.hub.Register <- client

	slf.logger.Info().
		Str("clientId", clientID).
		Uint("userId", userID).
		Uint("diagramId", uint(diagramID)).
		Msg("WebSocket connection established")

	go client.WritePump()
	go client.ReadPump()
}

// getActiveUsers returns the list of active users in a room
func (slf *websocketHandler) getActiveUsers(c *gin.Context) {
	diagramID, err := strconv.ParseUint(c.Param("diagramId"), 10, 32)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Invalid diagram ID")
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid diagram ID"})
		return
	}

	users := slf.hub.GetActiveUsersInRoom(uint(diagramID))
	c.JSON(http.StatusOK, gin.H{
		"diagramId": diagramID,
		"users":     users,
	})
}

// getRoomStats returns statistics about all active rooms
func (slf *websocketHandler) getRoomStats(c *gin.Context) {
	stats := slf.hub.GetRoomStats()
	c.JSON(http.StatusOK, gin.H{
		"rooms": stats,
	})
}
