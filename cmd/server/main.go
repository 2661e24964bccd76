package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nutricalc/backend/config"
	httpDelivery "github.com/nutricalc/backend/internal/delivery/http"
	"github.com/nutricalc/backend/internal/domain"
	"github.com/nutricalc/backend/internal/infrastructure/cache"
	"github.com/nutricalc/backend/internal/infrastructure/history"
	"github.com/nutricalc/backend/internal/infrastructure/metrics"
	"github.com/nutricalc/backend/internal/infrastructure/nutritionapi"
	"github.com/nutricalc/backend/internal/pkg/logger"
	"github.com/nutricalc/backend/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not read .env: %v\n", err)
	}

	cfg, err := config.Load(os.Getenv("NUTRICALC_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Server.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("starting NutriCalc backend",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("history_store", cfg.History.Store),
	)

	client := nutritionapi.NewClient(nutritionapi.Options{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
	}, log.Named("nutritionapi"))
	log.Info("nutrition service configured", zap.String("base_url", client.BaseURL()))

	var lookupCache domain.CacheRepository
	var memoryCache *cache.MemoryCache
	if cfg.Cache.Enabled {
		memoryCache = cache.NewMemoryCache(cfg.Cache.CleanupInterval)
		defer memoryCache.Close()
		lookupCache = memoryCache
		log.Info("lookup cache enabled", zap.Duration("ttl", cfg.Cache.TTL))
	}

	historyStore, closeHistory, err := history.Open(context.Background(), history.Options{
		Kind:     cfg.History.Store,
		Path:     cfg.History.Path,
		RedisURL: cfg.History.RedisURL,
		RedisKey: cfg.History.RedisKey,
	}, log.Named("history"))
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer func() {
		if err := closeHistory(); err != nil {
			log.Warn("failed to close history store", zap.Error(err))
		}
	}()
	log.Info("history store ready", zap.String("store", cfg.History.Store))

	collector := metrics.NewCollector()

	nutritionService := usecase.NewNutritionService(
		client,
		lookupCache,
		historyStore,
		collector,
		log.Named("nutrition"),
		usecase.NutritionServiceConfig{
			CacheTTL:          cfg.Cache.TTL,
			FuzzySuggestions:  true,
			HistoryMaxEntries: cfg.History.MaxEntries,
		},
	)

	handler := httpDelivery.NewHandler(nutritionService, client, log)
	if memoryCache != nil {
		handler.WithCacheStats(memoryCache)
	}
	router := httpDelivery.SetupRouter(cfg, handler, collector, log.Named("http"))

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		log.Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}
