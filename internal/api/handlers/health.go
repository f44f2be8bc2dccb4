package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundcanvas/soundcanvas-api/internal/clients"
	"github.com/soundcanvas/soundcanvas-api/internal/config"
)

// HealthHandler reports API health and collaborator reachability
type HealthHandler struct {
	cfg      *config.Config
	producer *clients.ProducerClient
}

func NewHealthHandler(cfg *config.Config, producer *clients.ProducerClient) *HealthHandler {
	return &HealthHandler{cfg: cfg, producer: producer}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	modelStatus := "disabled"
	if h.cfg.ModelServerURL != "" {
		modelStatus = "enabled"
	}

	producerStatus := "down"
	if h.producer.HealthCheck(c.Request.Context()) {
		producerStatus = "healthy"
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"model_server": gin.H{
			"status": modelStatus,
			"url":    h.cfg.ModelServerURL,
		},
		"audio_producer": gin.H{
			"status": producerStatus,
			"url":    h.cfg.AudioProducerURL,
		},
	})
}
