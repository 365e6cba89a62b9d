package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BotStatus reports whether the bot update loop is running.
type BotStatus interface {
	IsRunning() bool
}

// HealthHandler handles health check requests
type HealthHandler struct {
	bot     BotStatus
	version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(bot BotStatus, version string) *HealthHandler {
	return &HealthHandler{
		bot:     bot,
		version: version,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Bot     struct {
		Running bool `json:"running"`
	} `json:"bot"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: h.version,
	}
	response.Bot.Running = h.bot.IsRunning()

	c.JSON(http.StatusOK, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.bot.IsRunning() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "bot not running",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
