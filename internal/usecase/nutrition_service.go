package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nutricalc/backend/internal/domain"
	"go.uber.org/zap"
)

// Package-level compiled regex patterns for performance
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// Lookup kinds and outcomes reported to metrics
const (
	lookupSingle   = "single"
	lookupMultiple = "multiple"
	lookupSuggest  = "suggest"

	outcomeOK         = "ok"
	outcomeNotFound   = "not_found"
	outcomeError      = "error"
	outcomeSuperseded = "superseded"
	outcomeCanceled   = "canceled"
)

// NutritionServiceConfig holds configuration for the nutrition service
type NutritionServiceConfig struct {
	CacheTTL          time.Duration
	FuzzySuggestions  bool
	HistoryMaxEntries int
}

// NutritionService runs searches, recipe calculations and suggestions against the
// nutrition API and keeps the search history
type NutritionService struct {
	api        domain.NutritionAPI
	cache      domain.CacheRepository
	history    *HistoryService
	tracker    *RequestTracker
	parser     *QueryParser
	aggregator *Aggregator
	presenter  *LabelPresenter
	ranker     *SuggestionRanker
	metrics    domain.MetricsRecorder
	logger     *zap.Logger
	cacheTTL   time.Duration
}

// NewNutritionService creates a new nutrition service with dependencies
func NewNutritionService(
	api domain.NutritionAPI,
	cache domain.CacheRepository,
	historyStore domain.HistoryStore,
	metrics domain.MetricsRecorder,
	logger *zap.Logger,
	config NutritionServiceConfig,
) *NutritionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	return &NutritionService{
		api:        api,
		cache:      cache,
		history:    NewHistoryService(historyStore, config.HistoryMaxEntries, logger),
		tracker:    NewRequestTracker(),
		parser:     NewQueryParser(logger),
		aggregator: NewAggregator(logger),
		presenter:  NewLabelPresenter(),
		ranker:     NewSuggestionRanker(config.FuzzySuggestions),
		metrics:    metrics,
		logger:     logger,
		cacheTTL:   cacheTTL,
	}
}

// Search looks up a single food, or a comma-separated list of ingredients as one batch.
// Flow: parse -> (cache -> API) or batch API -> record history -> return
func (s *NutritionService) Search(ctx context.Context, session, query string) (*domain.NutritionResult, error) {
	parsed, err := s.parser.Parse(query)
	if err != nil {
		return nil, err
	}

	ctx, done := s.tracker.Begin(ctx, session)
	defer done()

	var result *domain.NutritionResult
	if parsed.Batch {
		result, err = s.searchBatch(ctx, parsed.Ingredients)
	} else {
		q := parsed.Ingredients[0]
		var single *domain.IngredientResult
		single, err = s.lookupSingle(ctx, q.Name, q.QuantityGrams)
		if err == nil {
			result = domain.NewSingleResult(single)
		}
	}
	if err != nil {
		if Superseded(ctx) {
			return nil, domain.ErrSuperseded
		}
		return nil, err
	}
	if Superseded(ctx) {
		return nil, domain.ErrSuperseded
	}

	if _, err := s.history.Record(ctx, parsed.Raw); err != nil {
		s.logger.Warn("failed to record search history",
			zap.String("query", parsed.Raw),
			zap.Error(err))
	}

	return result, nil
}

// CalculateRecipe looks up each ingredient and sums the totals.
// Ingredients the service does not know are listed in NotFound; any other
// lookup failure fails the whole recipe.
func (s *NutritionService) CalculateRecipe(
	ctx context.Context,
	session string,
	ingredients []domain.IngredientQuery,
) (*domain.NutritionResult, error) {
	if len(NormalizeIngredients(ingredients)) == 0 {
		return nil, domain.ErrEmptyRecipe
	}

	ctx, done := s.tracker.Begin(ctx, session)
	defer done()

	aggregate, err := s.aggregator.Aggregate(ctx, ingredients, s.lookupSingle)
	if err != nil {
		if Superseded(ctx) {
			return nil, domain.ErrSuperseded
		}
		return nil, err
	}

	return domain.NewRecipeResult(aggregate), nil
}

// Suggest returns food suggestions for partially typed text, best match first
func (s *NutritionService) Suggest(ctx context.Context, query string, limit int) ([]domain.FoodSuggestion, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinSuggestionQueryLength {
		return []domain.FoodSuggestion{}, nil
	}
	limit = ClampSuggestionLimit(limit)

	start := time.Now()
	results, err := s.api.SearchFoods(ctx, query, limit)
	s.metrics.ObserveLookup(lookupSuggest, outcomeOf(ctx, err), time.Since(start))
	if err != nil {
		return nil, err
	}

	ranked := s.ranker.Rank(query, results)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// History returns the recent searches, newest first
func (s *NutritionService) History(ctx context.Context) ([]string, error) {
	return s.history.List(ctx)
}

// Label renders the Nutrition Facts label for a result
func (s *NutritionService) Label(result *domain.NutritionResult) *domain.LabelView {
	return s.presenter.Render(result)
}

func (s *NutritionService) searchBatch(ctx context.Context, ingredients []domain.IngredientQuery) (*domain.NutritionResult, error) {
	start := time.Now()
	aggregate, err := s.api.LookupMultiple(ctx, ingredients)
	s.metrics.ObserveLookup(lookupMultiple, outcomeOf(ctx, err), time.Since(start))
	if err != nil {
		return nil, err
	}

	aggregate.NotFound = dedupeNames(aggregate.NotFound)
	if len(aggregate.TotalNutrients) == 0 && len(aggregate.Ingredients) > 0 {
		aggregate.TotalNutrients = SumNutrients(aggregate.Ingredients)
	}

	if len(aggregate.NotFound) > 0 {
		s.logger.Info("batch search partially resolved",
			zap.Strings("not_found", aggregate.NotFound))
	}

	return domain.NewRecipeResult(aggregate), nil
}

// lookupSingle returns one food at the requested quantity, using the cache when possible
func (s *NutritionService) lookupSingle(ctx context.Context, food string, grams float64) (*domain.IngredientResult, error) {
	cacheKey := generateCacheKey(food)

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		s.metrics.ObserveCache(true)
		if cached.QuantityGrams == grams {
			return cached, nil
		}
		return cached.ScaleTo(grams), nil
	}
	s.metrics.ObserveCache(false)

	start := time.Now()
	result, err := s.api.LookupSingle(ctx, food, grams)
	s.metrics.ObserveLookup(lookupSingle, outcomeOf(ctx, err), time.Since(start))
	if err != nil {
		return nil, err
	}

	if err := s.setInCache(ctx, cacheKey, result); err != nil {
		s.logger.Warn("failed to cache lookup", zap.String("key", cacheKey), zap.Error(err))
	}

	return result, nil
}

// generateCacheKey creates a normalized cache key for a food name.
// Format: "nutrition:{normalized_food_name}"
func generateCacheKey(food string) string {
	return fmt.Sprintf("nutrition:%s", normalizeForCacheKey(food))
}

// normalizeForCacheKey lowercases, strips special characters and collapses whitespace
func normalizeForCacheKey(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(s)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// getFromCache retrieves a lookup result from cache
func (s *NutritionService) getFromCache(ctx context.Context, key string) (*domain.IngredientResult, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if result, ok := value.(*domain.IngredientResult); ok {
		return result, nil
	}

	// The memory cache hands back JSON-decoded maps
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, domain.ErrCacheMiss
	}
	var result domain.IngredientResult
	if err := json.Unmarshal(raw, &result); err != nil || result.QuantityGrams <= 0 {
		return nil, domain.ErrCacheMiss
	}
	return &result, nil
}

// setInCache stores a lookup result in cache
func (s *NutritionService) setInCache(ctx context.Context, key string, data *domain.IngredientResult) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}

// dedupeNames drops repeated names, keeping first-seen order
func dedupeNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func outcomeOf(ctx context.Context, err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, domain.ErrNotFound):
		return outcomeNotFound
	case errors.Is(err, context.Canceled):
		if Superseded(ctx) {
			return outcomeSuperseded
		}
		return outcomeCanceled
	default:
		return outcomeError
	}
}

type noopMetrics struct{}

func (noopMetrics) ObserveLookup(string, string, time.Duration) {}

func (noopMetrics) ObserveCache(bool) {}
