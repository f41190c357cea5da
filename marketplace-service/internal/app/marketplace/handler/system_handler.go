package handler

import (
	"net/http"
	"time"

	"homehero/marketplace-service/internal/app/marketplace/entity"

	"github.com/gin-gonic/gin"
)

type SystemHandler struct {
	statsService StatsServiceInterface
	responder    *Responder
	startedAt    time.Time
}

func NewSystemHandler(statsService StatsServiceInterface, responder *Responder) *SystemHandler {
	return &SystemHandler{
		statsService: statsService,
		responder:    responder,
		startedAt:    time.Now(),
	}
}

func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, entity.MessageResponse{Message: "Home Hero Server is running"})
}

func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, entity.HealthResponse{
		Status:    "OK",
		Uptime:    time.Since(h.startedAt).Seconds(),
		Timestamp: time.Now().UTC(),
	})
}

// APITest - GET /api/test, ping базы
func (h *SystemHandler) APITest(c *gin.Context) {
	if err := h.statsService.Ping(c.Request.Context()); err != nil {
		h.responder.internal(c, msgDatabaseDown, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Database connection successful",
		"timestamp": time.Now().UTC(),
	})
}

func (h *SystemHandler) Stats(c *gin.Context) {
	stats, err := h.statsService.Stats(c.Request.Context())
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
