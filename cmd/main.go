package main

import (
	"context"
	"errors"
	"netmap"
	"netmap/internal/api/handler/endpoints"
	"netmap/internal/api/models"
	"netmap/internal/api/service"
	"netmap/internal/api/websocket"
	"netmap/internal/realtime"
	"netmap/internal/topology"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
)

func main() {
	netmap.InitConfig(".env")
	gin.SetMode(gin.ReleaseMode)

	if netmap.GetConfig().Mode == "dev" {
		if err := netmap.DB.AutoMigrate(
			&models.User{},
			&models.Diagram{},
			&models.DeviceTemplate{},
		); err != nil {
			netmap.Logger.Fatal().Err(err).Msg("Failed to migrate database")
		}
		netmap.Logger.Info().Msg("Database migrated successfully")
		gin.SetMode(gin.DebugMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	router, err := graceful.Default(graceful.WithAddr(netmap.GetConfig().ApiPort))
	if err != nil {
		panic(err)
	}
	defer stop()
	defer router.Close()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	diagramService := service.NewDiagramService()
	templateService := service.NewTemplateService()

	if netmap.GetConfig().Mode == "dev" {
		if err := templateService.SeedDefaults(); err != nil {
			netmap.Logger.Fatal().Err(err).Msg("Failed to seed device templates")
		}
	}

	// Initialize WebSocket components
	processor := websocket.NewMessageProcessor(diagramService, templateService, netmap.Logger)
	hub := websocket.NewHub(processor, netmap.Logger)

	// Mirror topology events to NATS when configured
	if natsURL := netmap.GetConfig().NATSConfig.URL; natsURL != "" {
		publisher, err := realtime.NewPublisher(natsURL, netmap.Logger)
		if err != nil {
			netmap.Logger.Fatal().Err(err).Msg("Failed to connect to NATS")
		}
		defer publisher.Close()
		hub.OnRoomCreated(func(diagramID uint, bus *topology.Bus) {
			publisher.Attach(diagramID, bus)
		})
	}

	go hub.Run()
	netmap.Logger.Info().Msg("WebSocket hub started")

	initAPI(router, hub)

	netmap.Logger.Debug().Msgf("Starting CORE API on port %s", netmap.GetConfig().ApiPort)
	if err = router.RunWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		netmap.Logger.Fatal().Msg(err.Error())
		panic(err)
	}

}

func initAPI(router *graceful.Graceful, hub *websocket.Hub) {
	endpoints.AuthHandler(router)
	endpoints.DiagramHandler(router)
	endpoints.TemplateHandler(router)
	endpoints.WebSocketHandler(router, hub)
}
