package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yourusername/fetchbot/api/handlers"
	"github.com/yourusername/fetchbot/api/middleware"
	"github.com/yourusername/fetchbot/internal/domain"
)

// SetupRouter sets up the HTTP router
func SetupRouter(
	bot handlers.BotStatus,
	history domain.HistoryRepository,
	version string,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(bot, version)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		historyHandler := handlers.NewHistoryHandler(history, log)
		v1.GET("/history", historyHandler.List)
		v1.GET("/history/stats", historyHandler.Stats)
	}

	return router
}
