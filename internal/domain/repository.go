package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// NutritionAPI defines the interface for the remote nutrition data service
type NutritionAPI interface {
	LookupSingle(ctx context.Context, food string, quantityGrams float64) (*IngredientResult, error)
	LookupMultiple(ctx context.Context, ingredients []IngredientQuery) (*AggregateResult, error)
	SearchFoods(ctx context.Context, query string, limit int) ([]FoodSuggestion, error)
}

// HistoryStore persists the search history as one unit
type HistoryStore interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, history []string) error
}

// MetricsRecorder receives lookup and cache events
type MetricsRecorder interface {
	ObserveLookup(kind, outcome string, duration time.Duration)
	ObserveCache(hit bool)
}
