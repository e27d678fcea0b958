// Package main is the entry point for the media-catalog-service API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"media-catalog-service/internal/app/service"
	"media-catalog-service/internal/config"
	"media-catalog-service/internal/domain"
	"media-catalog-service/internal/infra/cache"
	"media-catalog-service/internal/infra/kv"
	"media-catalog-service/internal/infra/provider/sources"
	"media-catalog-service/internal/job"
	"media-catalog-service/internal/logger"
	"media-catalog-service/internal/registry"
	"media-catalog-service/internal/transport/httpserver"
	"media-catalog-service/internal/validator"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(
		logger.Config{
			Level:  cfg.Logger.Level,
			Format: cfg.Logger.Format,
			Output: cfg.Logger.Output,
		},
		logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting media-catalog-service",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
	)

	// Open the key-value store backing the cache. Persistence is an
	// optimization; when the file cannot be opened the service runs
	// with the in-memory store instead of failing startup.
	var kvStore domain.KeyValueStore
	if cfg.Cache.Path != "" {
		bolt, err := kv.OpenBolt(cfg.Cache.Path, log.Logger)
		if err != nil {
			log.Warn("failed to open cache storage, falling back to in-memory",
				zap.String("path", cfg.Cache.Path),
				zap.Error(err),
			)
			kvStore = kv.NewMemory()
		} else {
			defer func() { _ = bolt.Close() }()
			kvStore = bolt
			log.Info("cache storage opened", zap.String("path", cfg.Cache.Path))
		}
	} else {
		kvStore = kv.NewMemory()
		log.Info("cache persistence disabled, using in-memory storage")
	}

	// Create cache store
	store := cache.New(
		cache.Config{
			CatalogItems:  cache.TypeConfig{TTL: cfg.Cache.CatalogTTL, Capacity: cfg.Cache.CatalogCapacity},
			MediaDetail:   cache.TypeConfig{TTL: cfg.Cache.DetailTTL, Capacity: cfg.Cache.DetailCapacity},
			SearchResults: cache.TypeConfig{TTL: cfg.Cache.SearchTTL, Capacity: cfg.Cache.SearchCapacity},
		},
		kvStore,
		log.Logger,
	)

	// Create provider registry and register configured providers
	reg := registry.New(log.Logger)
	for _, p := range sources.NewProviders(cfg.Provider, log.Logger) {
		reg.RegisterProvider(p)
	}

	// Create services
	catalogSvc := service.NewCatalogService(reg, store, cfg.Catalog, log.Logger)
	loadMoreSvc := service.NewLoadMoreService(reg, cfg.Pagination, log.Logger)
	seasonSvc := service.NewSeasonService(reg, cfg.Season, log.Logger)

	// Create validator
	v := validator.New()

	// Create HTTP server
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Port:      cfg.App.Port,
			BodyLimit: 1024 * 1024, // 1MB
			Debug:     cfg.App.Debug,
		},
		catalogSvc,
		loadMoreSvc,
		seasonSvc,
		reg,
		store,
		kvStore,
		v,
		log.Logger,
	)

	// Start cache janitor
	janitor := job.NewCacheJanitor(store, cfg.Janitor, log.Logger)
	janitor.Start(cfg.Janitor.OnStartup)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutdown signal received")

		// Stop janitor
		janitor.Stop()

		// Shutdown server with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.App.ShutdownWithContext(ctx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	// Start server
	if err := server.Start(cfg.App.Port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
