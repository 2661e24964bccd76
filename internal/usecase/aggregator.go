package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/nutricalc/backend/internal/domain"
	"go.uber.org/zap"
)

// LookupFunc resolves one ingredient at the given quantity
type LookupFunc func(ctx context.Context, name string, quantityGrams float64) (*domain.IngredientResult, error)

// Aggregator sums per-ingredient lookups into recipe totals
type Aggregator struct {
	logger *zap.Logger
}

// NewAggregator creates a new recipe aggregator
func NewAggregator(logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{logger: logger}
}

// Aggregate looks up every ingredient and sums the results.
// An ingredient the service does not know lands in NotFound and the batch
// continues. Any other lookup failure aborts the batch and is returned as is.
func (a *Aggregator) Aggregate(
	ctx context.Context,
	queries []domain.IngredientQuery,
	lookup LookupFunc,
) (*domain.AggregateResult, error) {
	queries = NormalizeIngredients(queries)
	if len(queries) == 0 {
		return nil, domain.ErrEmptyRecipe
	}

	result := &domain.AggregateResult{
		Ingredients: make([]domain.IngredientResult, 0, len(queries)),
		NotFound:    []string{},
	}
	missing := make(map[string]bool)

	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ing, err := lookup(ctx, q.Name, q.QuantityGrams)
		if err == nil && ing == nil {
			err = domain.ErrNotFound
		}
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				if ctx.Err() != nil {
					return nil, err
				}
				a.logger.Warn("ingredient lookup failed",
					zap.String("ingredient", q.Name),
					zap.Error(err))
				return nil, err
			}
			a.logger.Debug("ingredient not found", zap.String("ingredient", q.Name))
			if !missing[q.Name] {
				missing[q.Name] = true
				result.NotFound = append(result.NotFound, q.Name)
			}
			continue
		}
		result.Ingredients = append(result.Ingredients, *ing)
	}

	result.TotalNutrients = SumNutrients(result.Ingredients)

	a.logger.Debug("recipe aggregated",
		zap.Int("ingredients", len(result.Ingredients)),
		zap.Int("not_found", len(result.NotFound)),
		zap.Int("nutrients", len(result.TotalNutrients)))

	return result, nil
}

// SumNutrients groups nutrients by name (case-insensitive, trimmed) and sums amounts.
// Name spelling and unit come from the first occurrence; order is first-seen.
// Units are not reconciled across ingredients.
func SumNutrients(ingredients []domain.IngredientResult) []domain.Nutrient {
	totals := []domain.Nutrient{}
	index := make(map[string]int)

	for _, ing := range ingredients {
		for _, n := range ing.Nutrients {
			key := strings.ToLower(strings.TrimSpace(n.Name))
			if i, ok := index[key]; ok {
				totals[i].Amount += n.Amount
				continue
			}
			index[key] = len(totals)
			totals = append(totals, domain.Nutrient{
				Name:   n.Name,
				Amount: n.Amount,
				Unit:   n.Unit,
			})
		}
	}

	return totals
}

// NormalizeIngredients trims names, drops blank ones and fills in the default quantity
func NormalizeIngredients(queries []domain.IngredientQuery) []domain.IngredientQuery {
	out := make([]domain.IngredientQuery, 0, len(queries))
	for _, q := range queries {
		name := strings.TrimSpace(q.Name)
		if name == "" {
			continue
		}
		grams := q.QuantityGrams
		if grams <= 0 {
			grams = domain.DefaultQuantityGrams
		}
		out = append(out, domain.IngredientQuery{Name: name, QuantityGrams: grams})
	}
	return out
}
