package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dbward/dbward/internal/middleware"
	"github.com/dbward/dbward/pkg/config"
)

func SetupRouter(
	backupHandler *BackupHandler,
	alertHandler *AlertHandler,
	registryHandler *RegistryHandler,
	eventHandler *EventHandler,
	prometheusHandler *PrometheusHandler,
	cfg *config.Config,
) *gin.Engine {
	// Set Gin mode
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router with custom middleware
	router := gin.New()

	// Global middleware (in order)
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimitMiddleware(middleware.APIRateLimiter))

	// CORS middleware (for development)
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoints
	healthHandler := NewHealthHandler()
	router.GET("/health", healthHandler.HealthCheck)
	router.HEAD("/health", healthHandler.HealthCheck) // Docker healthcheck uses HEAD
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	router.GET("/metrics", healthHandler.MetricsCheck)

	// Prometheus metrics endpoint
	router.GET("/prometheus", prometheusHandler.MetricsEndpoint)

	api := router.Group("/api")
	{
		// Registry (read-only inventory)
		api.GET("/servers", registryHandler.ListServers)
		api.GET("/databases", registryHandler.ListDatabases)
		api.GET("/databases/:id", registryHandler.GetDatabase)
		api.GET("/policies", registryHandler.ListPolicies)
		api.GET("/policies/:id", registryHandler.GetPolicy)

		// Backups
		api.POST("/databases/:id/backups",
			middleware.RateLimitMiddleware(middleware.BackupTriggerRateLimiter),
			backupHandler.TriggerBackup)
		api.GET("/databases/:id/backups", backupHandler.ListBackups)
		api.GET("/backups/:id", backupHandler.GetBackup)

		// Alerting feed
		api.GET("/alerts", alertHandler.ListAlerts)
		api.GET("/databases/:id/status", alertHandler.GetDatabaseStatus)

		// Event stream
		api.GET("/events", eventHandler.ListEvents)
	}

	return router
}
