package api

import (
	"github.com/gin-gonic/gin"
	"github.com/soundcanvas/soundcanvas-api/internal/api/handlers"
	apimiddleware "github.com/soundcanvas/soundcanvas-api/internal/api/middleware"
	"github.com/soundcanvas/soundcanvas-api/internal/clients"
	"github.com/soundcanvas/soundcanvas-api/internal/config"
	"github.com/soundcanvas/soundcanvas-api/internal/metrics"
)

func SetupRouter(cfg *config.Config, cw *metrics.Client, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking())

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Collaborator clients
	modelClient := clients.NewModelClient(cfg.ModelServerURL)
	rendererClient := clients.NewRendererClient(cfg.RendererURL)
	producerClient := clients.NewProducerClient(cfg.AudioProducerURL)

	// Health check
	healthHandler := handlers.NewHealthHandler(cfg, producerClient)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	// Composition API v1
	v1 := router.Group("/api/v1")
	{
		compositionHandler := handlers.NewCompositionHandler(cfg, cw, modelClient, rendererClient, producerClient)
		v1.GET("/genres", compositionHandler.ListGenres)
		v1.POST("/compositions", compositionHandler.Compose)
		v1.POST("/compositions/stems", compositionHandler.ComposeStems)
	}

	return router
}
