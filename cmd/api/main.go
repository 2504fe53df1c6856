package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/greentrails/trail-importer/internal/api"
	"github.com/greentrails/trail-importer/internal/config"
	"github.com/greentrails/trail-importer/internal/logger"
	"github.com/greentrails/trail-importer/internal/repository"
	"github.com/greentrails/trail-importer/internal/service"
	"github.com/greentrails/trail-importer/internal/source"
	"github.com/greentrails/trail-importer/internal/source/dump"
	"github.com/greentrails/trail-importer/internal/source/nps"
	"github.com/greentrails/trail-importer/internal/source/synthetic"
	"github.com/greentrails/trail-importer/internal/storage"
)

func main() {
	// Initialize logger first (from LOG_* environment variables)
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	trailRepo := repository.NewTrailRepository(db)
	jobRepo := repository.NewImportJobRepository(db)

	// Object storage backs the dump source and failure reports; the service
	// still runs without it when no credentials are configured.
	var objectStorage storage.ObjectStorage
	if cfg.Storage.AccessKey != "" {
		objectStorage, err = storage.NewS3Storage(&storage.S3Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize storage")
		}
	} else {
		appLogger.Warn("No storage credentials configured; dump source and failure reports disabled")
	}

	// Initialize data sources
	sources := map[string]source.Source{
		"hiking_project": synthetic.NewAdapter("hiking_project", "Hiking Project", nil),
		"trailapi":       synthetic.NewAdapter("trailapi", "TrailAPI", nil),
	}
	if cfg.Sources.NPS.Enabled {
		sources[nps.SourceID] = nps.NewAdapter(&nps.Config{
			APIKey:  cfg.Sources.NPS.APIKey,
			BaseURL: cfg.Sources.NPS.BaseURL,
		})
	}
	if cfg.Sources.Dump.Enabled && objectStorage != nil {
		sources[dump.SourceID] = dump.NewAdapter(objectStorage, cfg.Sources.Dump.Key)
	}

	// Initialize services
	processor := service.NewBatchProcessor(trailRepo, appLogger)
	importService := service.NewImportService(
		jobRepo,
		trailRepo,
		processor,
		sources,
		objectStorage,
		appLogger,
		&service.ImporterConfig{
			BatchSize:    cfg.Importer.BatchSize,
			MaxPerSource: cfg.Importer.MaxPerSource,
		},
	)
	recoveryService := service.NewRecoveryService(
		jobRepo,
		trailRepo,
		importService,
		appLogger,
		&service.RecoveryConfig{StuckAfter: cfg.Recovery.StuckAfter},
	)

	// Setup router
	router := api.SetupRouter(importService, recoveryService, cfg, appLogger)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting import API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
