package nutritionapi

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/nutricalc/backend/internal/domain"
)

// Wire types of the nutrition service

type nutrientDTO struct {
	Name    string   `json:"name"`
	Amount  float64  `json:"amount"`
	Unit    string   `json:"unit"`
	Per100g *float64 `json:"per_100g,omitempty"`
}

type ingredientDTO struct {
	Ingredient    string        `json:"ingredient"`
	QuantityGrams float64       `json:"quantity_g"`
	Nutrients     []nutrientDTO `json:"nutrients"`
}

type ingredientRequestDTO struct {
	Name          string  `json:"name"`
	QuantityGrams float64 `json:"quantity_g"`
}

type aggregateDTO struct {
	Ingredients    []ingredientDTO `json:"ingredients"`
	TotalNutrients []nutrientDTO   `json:"total_nutrients"`
	NotFound       []string        `json:"not_found"`
}

type foodDTO struct {
	ID    foodID `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group,omitempty"`
}

type searchResponseDTO struct {
	Results []foodDTO `json:"results"`
}

type errorDTO struct {
	Error string `json:"error"`
}

// foodID accepts both numeric and string identifiers
type foodID string

func (id *foodID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = foodID(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = foodID(n.String())
	return nil
}

// toIngredientResult converts a single lookup response. The requested name and quantity
// fill in whatever the service left out.
func toIngredientResult(dto ingredientDTO, requestedName string, requestedGrams float64) *domain.IngredientResult {
	name := strings.TrimSpace(dto.Ingredient)
	if name == "" {
		name = requestedName
	}
	grams := dto.QuantityGrams
	if grams <= 0 {
		grams = requestedGrams
	}

	return &domain.IngredientResult{
		Ingredient:    name,
		QuantityGrams: grams,
		Nutrients:     toNutrients(dto.Nutrients, grams),
	}
}

// toNutrients maps nutrients, deriving per_100g when the service did not send it
func toNutrients(dtos []nutrientDTO, grams float64) []domain.Nutrient {
	nutrients := make([]domain.Nutrient, 0, len(dtos))
	for _, d := range dtos {
		n := domain.Nutrient{
			Name:    strings.TrimSpace(d.Name),
			Amount:  d.Amount,
			Unit:    d.Unit,
			Per100g: d.Per100g,
		}
		if n.Per100g == nil && grams > 0 {
			per100 := d.Amount * 100 / grams
			n.Per100g = &per100
		}
		nutrients = append(nutrients, n)
	}
	return nutrients
}

// toAggregateResult converts a batch response
func toAggregateResult(dto aggregateDTO) *domain.AggregateResult {
	result := &domain.AggregateResult{
		Ingredients: make([]domain.IngredientResult, 0, len(dto.Ingredients)),
		NotFound:    dto.NotFound,
	}
	for _, ing := range dto.Ingredients {
		result.Ingredients = append(result.Ingredients, *toIngredientResult(ing, "", domain.DefaultQuantityGrams))
	}
	if len(dto.TotalNutrients) > 0 {
		result.TotalNutrients = toNutrients(dto.TotalNutrients, 0)
	}
	if result.NotFound == nil {
		result.NotFound = []string{}
	}
	return result
}

func toFoodSuggestions(dtos []foodDTO) []domain.FoodSuggestion {
	out := make([]domain.FoodSuggestion, 0, len(dtos))
	for _, d := range dtos {
		if strings.TrimSpace(d.Name) == "" {
			continue
		}
		out = append(out, domain.FoodSuggestion{
			ID:    string(d.ID),
			Name:  d.Name,
			Group: d.Group,
		})
	}
	return out
}
