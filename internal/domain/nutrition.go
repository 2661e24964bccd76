package domain

import (
	"fmt"
	"strings"
)

// DefaultQuantityGrams is the quantity used when the user does not give one
const DefaultQuantityGrams = 100.0

// Nutrient is one named nutrient amount at a given food mass
type Nutrient struct {
	Name    string   `json:"name"`
	Amount  float64  `json:"amount"`
	Unit    string   `json:"unit"`
	Per100g *float64 `json:"per_100g,omitempty"`
}

// IngredientResult is the nutrition of one food at one quantity
type IngredientResult struct {
	Ingredient    string     `json:"ingredient"`
	QuantityGrams float64    `json:"quantity_g"`
	Nutrients     []Nutrient `json:"nutrients"`
}

// ScaleTo returns a copy of the result at a different quantity.
// Amounts are recomputed from per-100g values; nutrients without one are scaled linearly.
func (r *IngredientResult) ScaleTo(grams float64) *IngredientResult {
	scaled := &IngredientResult{
		Ingredient:    r.Ingredient,
		QuantityGrams: grams,
		Nutrients:     make([]Nutrient, len(r.Nutrients)),
	}
	for i, n := range r.Nutrients {
		out := n
		switch {
		case n.Per100g != nil:
			out.Amount = *n.Per100g * grams / 100
		case r.QuantityGrams > 0:
			out.Amount = n.Amount * grams / r.QuantityGrams
		}
		scaled.Nutrients[i] = out
	}
	return scaled
}

// AggregateResult is the summed nutrition of a recipe
type AggregateResult struct {
	Ingredients    []IngredientResult `json:"ingredients"`
	TotalNutrients []Nutrient         `json:"total_nutrients"`
	NotFound       []string           `json:"not_found"`
}

// IngredientQuery is one ingredient of a recipe request
type IngredientQuery struct {
	Name          string  `json:"name" binding:"required"`
	QuantityGrams float64 `json:"quantity_g"`
}

// FoodSuggestion is one entry returned by the food search endpoint
type FoodSuggestion struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group,omitempty"`
}

// ResultKind tells which case of NutritionResult is set
type ResultKind string

const (
	KindSingle ResultKind = "single"
	KindRecipe ResultKind = "recipe"
)

// NutritionResult holds either a single-food lookup or a recipe aggregate.
// Exactly one of Single and Recipe is non-nil, matching Kind.
type NutritionResult struct {
	Kind   ResultKind        `json:"kind"`
	Single *IngredientResult `json:"single,omitempty"`
	Recipe *AggregateResult  `json:"recipe,omitempty"`
}

// NewSingleResult wraps a single-food lookup
func NewSingleResult(r *IngredientResult) *NutritionResult {
	return &NutritionResult{Kind: KindSingle, Single: r}
}

// NewRecipeResult wraps a recipe aggregate
func NewRecipeResult(r *AggregateResult) *NutritionResult {
	return &NutritionResult{Kind: KindRecipe, Recipe: r}
}

// Nutrients returns the list the label is built from
func (r *NutritionResult) Nutrients() []Nutrient {
	switch r.Kind {
	case KindSingle:
		if r.Single != nil {
			return r.Single.Nutrients
		}
	case KindRecipe:
		if r.Recipe != nil {
			return r.Recipe.TotalNutrients
		}
	}
	return nil
}

// NotFound returns the unresolved ingredient names of a recipe
func (r *NutritionResult) NotFound() []string {
	if r.Kind == KindRecipe && r.Recipe != nil {
		return r.Recipe.NotFound
	}
	return nil
}

// ServingDescription describes what one label serving covers
func (r *NutritionResult) ServingDescription() string {
	switch r.Kind {
	case KindSingle:
		if r.Single != nil && r.Single.Ingredient != "" {
			return fmt.Sprintf("1 serving (%s)", r.Single.Ingredient)
		}
	case KindRecipe:
		if r.Recipe != nil && len(r.Recipe.Ingredients) > 0 {
			names := make([]string, len(r.Recipe.Ingredients))
			for i, ing := range r.Recipe.Ingredients {
				names[i] = ing.Ingredient
			}
			return fmt.Sprintf("Combined serving (%s)", strings.Join(names, " + "))
		}
	}
	return "Serving size"
}
