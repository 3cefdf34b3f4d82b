package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/dbward/dbward/internal/api"
	"github.com/dbward/dbward/internal/engine"
	"github.com/dbward/dbward/internal/events"
	"github.com/dbward/dbward/internal/monitoring"
	"github.com/dbward/dbward/internal/queue"
	"github.com/dbward/dbward/internal/repository"
	"github.com/dbward/dbward/internal/service"
	"github.com/dbward/dbward/internal/storage"
	"github.com/dbward/dbward/pkg/config"
	"github.com/dbward/dbward/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logLevel := parseLogLevel(cfg.LogLevel)
	appLogger := logger.NewLogger(logLevel, os.Stdout, cfg.LogJSON)
	logger.SetDefault(appLogger)

	logger.Info("Starting application", map[string]interface{}{
		"app":   cfg.AppName,
		"debug": cfg.Debug,
		"port":  cfg.Port,
	})

	// Initialize database
	if err := repository.InitDB(cfg); err != nil {
		logger.Fatal("Failed to initialize database", err, nil)
	}
	logger.Info("Database initialized", nil)

	db := repository.GetDB()

	// Repositories
	serverRepo := repository.NewServerRepository(db)
	databaseRepo := repository.NewDatabaseConfigRepository(db)
	policyRepo := repository.NewPolicyRepository(db)
	jobRepo := repository.NewJobRepository(db)
	resultRepo := repository.NewResultRepository(db)
	failureRepo := repository.NewFailureRepository(db)

	// Seed the standard policy so fresh deployments can enable databases
	// without creating a policy first
	if err := policyRepo.EnsureDefaults(); err != nil {
		logger.Fatal("Failed to seed default policy", err, nil)
	}

	// Event bus with multi-storage (PostgreSQL + optional InfluxDB)
	dbEventStorage := events.NewDatabaseEventStorage(db)
	var eventStorage events.EventStorage = dbEventStorage
	if cfg.InfluxDBURL != "" && cfg.InfluxDBToken != "" {
		influxClient, err := storage.NewInfluxDBClient(storage.InfluxDBConfig{
			URL:    cfg.InfluxDBURL,
			Token:  cfg.InfluxDBToken,
			Org:    cfg.InfluxDBOrg,
			Bucket: cfg.InfluxDBBucket,
		})
		if err != nil {
			logger.Warn("Failed to initialize InfluxDB, falling back to database-only event storage", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer influxClient.Close()
			eventStorage = events.NewMultiEventStorage(dbEventStorage, events.NewInfluxDBEventStorage(influxClient))
			logger.Info("Event storage initialized with PostgreSQL and InfluxDB", nil)
		}
	}
	events.SetEventStorage(eventStorage)

	// Job queue
	jobQueue, err := buildQueue(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize job queue", err, nil)
	}

	// Blob store for backup artifacts
	blobStore, err := buildBlobStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize blob store", err, nil)
	}

	// Core services
	drivers := engine.DefaultRegistry()
	retention := service.NewRetentionService(resultRepo, blobStore)
	alerting := service.NewAlertingService(failureRepo, cfg.AlertThreshold)
	scheduler := service.NewScheduler(databaseRepo, policyRepo, jobRepo, resultRepo, jobQueue, cfg.EvaluationInterval)
	processor := service.NewProcessor(jobQueue, databaseRepo, policyRepo, resultRepo, failureRepo, drivers, blobStore, retention, service.ProcessorOptions{
		Workers:       cfg.ProcessorWorkers,
		BackupTimeout: cfg.BackupTimeout,
		UploadTimeout: cfg.UploadTimeout,
	})

	// Start the scheduler and the processor worker pool
	scheduler.Start()

	ctx, cancel := context.WithCancel(context.Background())
	processorDone := make(chan struct{})
	go func() {
		defer close(processorDone)
		if err := processor.Run(ctx); err != nil {
			logger.Error("Processor stopped with error", err, nil)
		}
	}()

	// Prometheus gauges that need periodic database reads
	exporter := monitoring.NewPrometheusExporter(failureRepo, cfg.AlertThreshold)
	exporter.StartMetricsCollector(cfg.MetricsCollectInterval)

	// HTTP API
	backupHandler := api.NewBackupHandler(scheduler, resultRepo)
	alertHandler := api.NewAlertHandler(alerting)
	registryHandler := api.NewRegistryHandler(serverRepo, databaseRepo, policyRepo)
	eventHandler := api.NewEventHandler()
	prometheusHandler := api.NewPrometheusHandler()

	router := api.SetupRouter(backupHandler, alertHandler, registryHandler, eventHandler, prometheusHandler, cfg)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down gracefully...", nil)

		scheduler.Stop()
		cancel()
		<-processorDone
		jobQueue.Close()

		logger.Info("Shutdown complete", nil)
		os.Exit(0)
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("Server starting", map[string]interface{}{
		"address":      addr,
		"api_endpoint": fmt.Sprintf("http://localhost%s/api", addr),
		"health_check": fmt.Sprintf("http://localhost%s/health", addr),
	})

	if err := router.Run(addr); err != nil {
		logger.Fatal("Failed to start server", err, nil)
	}
}

// buildQueue selects the job queue backend from configuration
func buildQueue(cfg *config.Config) (queue.Queue, error) {
	switch cfg.QueueBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Info("Redis queue initialized", map[string]interface{}{
			"addr":   cfg.RedisAddr,
			"prefix": cfg.QueueKeyPrefix,
		})
		return queue.NewRedisQueue(client, cfg.QueueKeyPrefix, cfg.VisibilityTimeout), nil
	case "memory":
		logger.Warn("Using in-memory queue, jobs will not survive restarts", nil)
		return queue.NewMemoryQueue(cfg.VisibilityTimeout), nil
	default:
		return nil, fmt.Errorf("unknown queue backend: %s", cfg.QueueBackend)
	}
}

// buildBlobStore selects the artifact storage backend from configuration
func buildBlobStore(cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.StorageBackend {
	case "local":
		return storage.NewLocalStore(cfg.LocalStoragePath)
	case "sftp":
		return storage.NewSFTPStore(cfg)
	case "s3":
		return storage.NewS3Store(context.Background(), cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}

// parseLogLevel converts a string to a logger.LogLevel
func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return logger.DEBUG
	case "INFO":
		return logger.INFO
	case "WARN":
		return logger.WARN
	case "ERROR":
		return logger.ERROR
	case "FATAL":
		return logger.FATAL
	default:
		return logger.INFO
	}
}
