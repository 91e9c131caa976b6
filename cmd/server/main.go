package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/fisioflow/recommendation-engine/internal/api"
	"github.com/fisioflow/recommendation-engine/internal/cache"
	"github.com/fisioflow/recommendation-engine/internal/config"
	"github.com/fisioflow/recommendation-engine/internal/database"
	"github.com/fisioflow/recommendation-engine/internal/domain"
	"github.com/fisioflow/recommendation-engine/internal/feedback"
	"github.com/fisioflow/recommendation-engine/internal/knowledge"
	"github.com/fisioflow/recommendation-engine/internal/repository"
	"github.com/fisioflow/recommendation-engine/internal/service"
	"github.com/fisioflow/recommendation-engine/pkg/external"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Core engine: knowledge base plus rule pipeline. Everything below is
	// optional infrastructure around it.
	kb := knowledge.NewBase()
	engine := service.NewRecommendationService(logger, kb)

	var store domain.RecommendationStore
	db, err := database.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Warn("Database unavailable, running without persistence")
	} else {
		defer db.Close()
		if err := database.RunMigrations(configManager.GetDatabaseURL(), cfg.Database.MigrationsPath, logger); err != nil {
			logger.WithError(err).Fatal("Database migrations failed")
		}
		store = repository.NewRecommendationRepository(db.Pool, logger)
	}

	var recCache *cache.RecommendationCache
	if cfg.Cache.Enabled {
		recCache, err = cache.New(cfg.Cache, logger)
		if err != nil {
			logger.WithError(err).Warn("Cache unavailable, continuing without it")
			recCache = nil
		} else {
			defer recCache.Close()
		}
	}

	feedbackStore, err := newFeedbackStore(cfg.Feedback)
	if err != nil {
		logger.WithError(err).Warn("Feedback store unavailable, continuing without it")
	} else {
		defer feedbackStore.Close()
	}

	var mediaClient *external.MediaCatalogClient
	if cfg.MediaCatalog.Enabled {
		mediaClient = external.NewMediaCatalogClient(cfg.MediaCatalog)
	}

	server := api.NewServer(api.Dependencies{
		ConfigManager: configManager,
		Engine:        engine,
		Store:         store,
		Cache:         recCache,
		FeedbackStore: feedbackStore,
		MediaClient:   mediaClient,
		Logger:        logger,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting recommendation server")

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if cfg.Output == "stderr" {
		logger.SetOutput(os.Stderr)
	} else {
		logger.SetOutput(os.Stdout)
	}

	return logger
}

// newFeedbackStore selects the feedback backend by driver. On failure it
// returns a nil interface, not a nil concrete pointer, so the server's
// absent-component checks hold.
func newFeedbackStore(cfg domain.FeedbackConfig) (feedback.Store, error) {
	switch cfg.Driver {
	case "postgres":
		store, err := feedback.NewPostgresStoreFromURL(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		store, err := feedback.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}
