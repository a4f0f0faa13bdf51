package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/neuroquant-report-server/internal/api"
	"github.com/neuroquant-report-server/internal/config"
	"github.com/neuroquant-report-server/internal/database"
	"github.com/neuroquant-report-server/internal/domain"
	"github.com/neuroquant-report-server/internal/reference"
	"github.com/neuroquant-report-server/internal/repository"
	"github.com/neuroquant-report-server/internal/service"
	"github.com/neuroquant-report-server/pkg/segmentation"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging)

	// Reference snapshot: compiled-in tables unless a snapshot file is
	// configured.
	snapshot, err := loadSnapshot(cfg.Reference)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load reference snapshot")
	}
	logger.WithField("version", snapshot.Version()).Info("Reference snapshot loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Report store
	store, err := newReportStore(ctx, configManager, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open report store")
	}
	defer store.Close()

	// Segmentation service with result cache
	segmenter, closeSegmenter, err := newSegmentationService(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to set up segmentation service")
	}
	defer closeSegmenter()

	analyzer := service.NewAnalyzer(logger, snapshot)
	server := api.NewServer(configManager, analyzer, store, segmenter, logger)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

// newLogger builds the process logger from configuration.
func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	switch cfg.Output {
	case "stderr":
		logger.SetOutput(os.Stderr)
	case "", "stdout":
		logger.SetOutput(os.Stdout)
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			logger.SetOutput(os.Stdout)
			logger.WithError(err).Warn("Failed to open log file, using stdout")
		} else {
			logger.SetOutput(file)
		}
	}
	return logger
}

func loadSnapshot(cfg domain.ReferenceConfig) (*reference.Snapshot, error) {
	if cfg.Path == "" {
		return reference.Default(), nil
	}
	return reference.Load(cfg.Path)
}

// newReportStore opens the configured store backend. The PostgreSQL backend
// runs its schema migrations before serving; SQLite manages its own schema.
func newReportStore(ctx context.Context, configManager *config.Manager, logger *logrus.Logger) (domain.ReportStore, error) {
	dbCfg := configManager.GetDatabaseConfig()

	switch dbCfg.Driver {
	case "postgres":
		db, err := database.NewConnection(ctx, database.Config{
			Host:        dbCfg.Host,
			Port:        dbCfg.Port,
			Database:    dbCfg.Database,
			Username:    dbCfg.Username,
			Password:    dbCfg.Password,
			SSLMode:     dbCfg.SSLMode,
			MaxConns:    dbCfg.MaxOpenConns,
			MaxIdle:     dbCfg.MaxIdleConns,
			MaxConnLife: dbCfg.ConnMaxLifetime,
		}, logger)
		if err != nil {
			return nil, err
		}

		runner, err := database.NewMigrationRunner(db.Pool, logger)
		if err != nil {
			db.Close()
			return nil, err
		}
		if err := runner.Up(); err != nil {
			db.Close()
			return nil, err
		}

		return repository.NewPostgresStore(db.Pool)
	default:
		return repository.NewSQLiteStore(dbCfg.Path)
	}
}

// newSegmentationService wires the inference client behind the result cache.
func newSegmentationService(cfg *domain.Config, logger *logrus.Logger) (domain.SegmentationService, func(), error) {
	client := segmentation.NewClient(segmentation.Config{
		BaseURL:   cfg.Segmentation.BaseURL,
		Timeout:   cfg.Segmentation.Timeout,
		RateLimit: cfg.Segmentation.RateLimit,
	}, logger)

	cache, err := segmentation.NewCache(segmentation.CacheConfig{
		LRUSize:     cfg.Cache.LRUSize,
		RedisURL:    cfg.Cache.RedisURL,
		DefaultTTL:  cfg.Cache.DefaultTTL,
		MaxRetries:  cfg.Cache.MaxRetries,
		PoolSize:    cfg.Cache.PoolSize,
		PoolTimeout: cfg.Cache.PoolTimeout,
	})
	if err != nil {
		return nil, nil, err
	}

	closeCache := func() {
		if err := cache.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close segmentation cache")
		}
	}
	return segmentation.NewCachingService(client, cache), closeCache, nil
}
