package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nutricalc/backend/config"
	"github.com/nutricalc/backend/internal/domain"
	"github.com/nutricalc/backend/internal/infrastructure/cache"
	"github.com/nutricalc/backend/internal/infrastructure/history"
	"github.com/nutricalc/backend/internal/infrastructure/nutritionapi"
	"github.com/nutricalc/backend/internal/pkg/logger"
	"github.com/nutricalc/backend/internal/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cliSession keys supersession for the terminal; one command runs at a time
const cliSession = "cli"

var (
	configPath string
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "nutricalc",
	Short:         "nutricalc looks up nutrition facts and totals recipes",
	Long:          "nutricalc queries a nutrition data service for foods and recipes and prints a Nutrition Facts label.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// nutritionService is what the commands need from the nutrition service
type nutritionService interface {
	Search(ctx context.Context, session, query string) (*domain.NutritionResult, error)
	CalculateRecipe(ctx context.Context, session string, ingredients []domain.IngredientQuery) (*domain.NutritionResult, error)
	Suggest(ctx context.Context, query string, limit int) ([]domain.FoodSuggestion, error)
	History(ctx context.Context) ([]string, error)
	Label(result *domain.NutritionResult) *domain.LabelView
}

// newService builds the service from configuration. Tests replace it.
var newService = func(cfg *config.Config, log *zap.Logger) (nutritionService, func(), error) {
	client := nutritionapi.NewClient(nutritionapi.Options{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
	}, log.Named("nutritionapi"))

	historyStore, closeHistory, err := history.Open(context.Background(), history.Options{
		Kind:     cfg.History.Store,
		Path:     cfg.History.Path,
		RedisURL: cfg.History.RedisURL,
		RedisKey: cfg.History.RedisKey,
	}, log.Named("history"))
	if err != nil {
		return nil, nil, fmt.Errorf("open history store: %w", err)
	}

	var lookupCache domain.CacheRepository
	closeCache := func() {}
	if cfg.Cache.Enabled {
		memoryCache := cache.NewMemoryCache(cfg.Cache.CleanupInterval)
		lookupCache, closeCache = memoryCache, memoryCache.Close
	}

	svc := usecase.NewNutritionService(client, lookupCache, historyStore, nil, log.Named("nutrition"), usecase.NutritionServiceConfig{
		CacheTTL:          cfg.Cache.TTL,
		FuzzySuggestions:  true,
		HistoryMaxEntries: cfg.History.MaxEntries,
	})

	cleanup := func() {
		closeCache()
		if err := closeHistory(); err != nil {
			log.Warn("failed to close history store", zap.Error(err))
		}
	}
	return svc, cleanup, nil
}

// Execute runs the root command and exits non-zero on error
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ./config.yaml if present)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr")
}

// withService loads configuration, builds the service and runs fn with it
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc nutritionService) error) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read .env: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := zap.NewNop()
	if verbose {
		log, err = logger.NewWithOutput("debug", "development", cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
	}

	svc, cleanup, err := newService(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	return fn(cmd.Context(), svc)
}
