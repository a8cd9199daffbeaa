package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gridex/internal/config"
	dbRedis "github.com/kailas-cloud/gridex/internal/db/redis"
	"github.com/kailas-cloud/gridex/internal/db/sqlstore"
	logpkg "github.com/kailas-cloud/gridex/internal/logger"
	"github.com/kailas-cloud/gridex/internal/metrics"
	"github.com/kailas-cloud/gridex/internal/repository/listcache"
	"github.com/kailas-cloud/gridex/internal/repository/resource"
	chiTransport "github.com/kailas-cloud/gridex/internal/transport/chi"
	aggregateuc "github.com/kailas-cloud/gridex/internal/usecase/aggregate"
	healthuc "github.com/kailas-cloud/gridex/internal/usecase/health"
	listinguc "github.com/kailas-cloud/gridex/internal/usecase/listing"
	provisionuc "github.com/kailas-cloud/gridex/internal/usecase/provision"
	searchuc "github.com/kailas-cloud/gridex/internal/usecase/search"
	"github.com/kailas-cloud/gridex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting gridex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	apiKeys, err := cfg.Auth.Tenants()
	if err != nil {
		logger.Fatal("Invalid api keys", zap.Error(err))
	}

	registry, err := resource.Load(cfg.ResourcesFile)
	if err != nil {
		logger.Fatal("Failed to load resource definitions", zap.String("path", cfg.ResourcesFile), zap.Error(err))
	}

	ctx := context.Background()

	store, err := sqlstore.NewStore(sqlstore.Config{
		Driver:           cfg.Database.Driver,
		DSN:              cfg.Database.DSN,
		MaxOpenConns:     cfg.Database.MaxOpenConns,
		CreateExtensions: cfg.Database.CreateExtensions,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	// Wait for database to be ready
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	caps, err := store.DetectCapabilities(ctx)
	if err != nil {
		logger.Fatal("Failed to detect database capabilities", zap.Error(err))
	}
	logger.Info("Connected to database",
		zap.String("backend", caps.Backend),
		zap.Bool("full_text", caps.FullText),
		zap.Bool("trigram", caps.Trigram),
	)

	if cfg.Database.EnsureIndexes {
		if err := provisionuc.New(store, caps, logger).Ensure(ctx, registry.List(ctx)); err != nil {
			logger.Fatal("Failed to ensure indexes", zap.Error(err))
		}
	}

	// Register listing metrics explicitly (no init())
	metrics.RegisterListingMetrics()

	listingSvc := listinguc.New(registry, searchuc.New(store, caps), aggregateuc.New(store), store).
		WithPagination(cfg.Listing.DefaultPageSize, cfg.Listing.MaxPageSize)

	// Pass nil interface (not typed nil pointer!) when the cache is disabled.
	var cachePinger healthuc.Pinger
	if cfg.Cache.Enabled {
		cacheStore, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cacheStore.Close()

		if err := cacheStore.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			// Listings are served uncached until the cache comes back.
			logger.Warn("Cache not ready", zap.Error(err))
		}
		cachePinger = cacheStore
		listingSvc.WithCache(listcache.New(
			cacheStore, cfg.Cache.KeyPrefix, time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.ListCacheTotal, logger,
		))
	}

	healthSvc := healthuc.New(store, cachePinger)

	server := chiTransport.NewServer(listingSvc, healthSvc, logger)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys:        apiKeys,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
