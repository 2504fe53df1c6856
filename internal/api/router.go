package api

import (
	"github.com/gin-gonic/gin"
	"github.com/greentrails/trail-importer/internal/api/handler"
	"github.com/greentrails/trail-importer/internal/api/middleware"
	"github.com/greentrails/trail-importer/internal/config"
	"github.com/greentrails/trail-importer/internal/logger"
	"github.com/greentrails/trail-importer/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	importService *service.ImportService,
	recoveryService *service.RecoveryService,
	cfg *config.Config,
	log *logger.Logger,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	importHandler := handler.NewImportHandler(importService, log)
	recoveryHandler := handler.NewRecoveryHandler(recoveryService, log)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Bulk import
		v1.POST("/import", importHandler.TriggerImport)
		v1.GET("/import/jobs", importHandler.ListJobs)
		v1.GET("/import/jobs/:id", importHandler.GetJob)

		// Recovery / diagnostics
		v1.GET("/recovery/analysis", recoveryHandler.AnalyzeFailures)
		v1.POST("/recovery/probe", recoveryHandler.ProbeInsertAccess)
		v1.POST("/recovery/cancel-stuck", recoveryHandler.CancelStuckJobs)
		v1.POST("/recovery/smoke-test", recoveryHandler.SmokeTest)
	}

	return r
}
