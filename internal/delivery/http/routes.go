package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/pricescout/backend/config"
	"github.com/pricescout/backend/internal/infrastructure/cache"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, limiters *cache.MemoryCache[*rate.Limiter]) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	router.GET("/countries", handler.Countries)

	limited := RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst, limiters)
	router.POST("/compare", limited, handler.Compare)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/countries", handler.Countries)
		v1.POST("/compare", limited, handler.Compare)
	}

	if cfg.Server.StaticDir != "" {
		router.NoRoute(gin.WrapH(http.FileServer(http.Dir(cfg.Server.StaticDir))))
	}

	return router
}
