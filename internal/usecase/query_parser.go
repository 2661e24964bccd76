package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nutricalc/backend/internal/domain"
	"go.uber.org/zap"
)

// Compiled patterns for ingredient parsing
var (
	// Leading quantity like "150g oats", "150 g oats", "12.5 grams butter"
	leadingQuantityPattern = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*(?:g|grams?)\s+(.+)$`)

	// Multiple spaces cleanup
	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// ParsedQuery is a search query split into single or batch form
type ParsedQuery struct {
	Raw         string
	Batch       bool
	Ingredients []domain.IngredientQuery // exactly one entry when Batch is false
}

// QueryParser turns raw search text into ingredient queries
type QueryParser struct {
	logger *zap.Logger
}

// NewQueryParser creates a new query parser
func NewQueryParser(logger *zap.Logger) *QueryParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryParser{logger: logger}
}

// Parse splits a comma-separated query into a batch of ingredients, each defaulting
// to 100g. A query without commas is a single-food search.
func (p *QueryParser) Parse(raw string) (ParsedQuery, error) {
	query := strings.TrimSpace(raw)
	if query == "" {
		return ParsedQuery{}, domain.ErrInvalidRequest
	}

	parsed := ParsedQuery{Raw: query}

	if !strings.Contains(query, ",") {
		parsed.Ingredients = []domain.IngredientQuery{parseIngredient(query)}
		return parsed, nil
	}

	parsed.Batch = true
	for _, part := range strings.Split(query, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		parsed.Ingredients = append(parsed.Ingredients, parseIngredient(part))
	}
	if len(parsed.Ingredients) == 0 {
		return ParsedQuery{}, domain.ErrEmptyRecipe
	}

	p.logger.Debug("parsed batch query",
		zap.String("query", query),
		zap.Int("ingredients", len(parsed.Ingredients)))

	return parsed, nil
}

// parseIngredient reads an optional leading gram quantity off an ingredient
func parseIngredient(text string) domain.IngredientQuery {
	text = multiSpacePattern.ReplaceAllString(strings.TrimSpace(text), " ")

	if m := leadingQuantityPattern.FindStringSubmatch(text); m != nil {
		if grams, err := strconv.ParseFloat(m[1], 64); err == nil && grams > 0 {
			return domain.IngredientQuery{Name: strings.TrimSpace(m[2]), QuantityGrams: grams}
		}
	}

	return domain.IngredientQuery{Name: text, QuantityGrams: domain.DefaultQuantityGrams}
}

// ParseIngredientArg parses a "name:grams" argument, e.g. "oats:50".
// The quantity defaults to 100g when omitted.
func ParseIngredientArg(arg string) (domain.IngredientQuery, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return domain.IngredientQuery{}, fmt.Errorf("%w: empty ingredient", domain.ErrInvalidRequest)
	}

	idx := strings.LastIndex(arg, ":")
	if idx < 0 {
		return parseIngredient(arg), nil
	}

	name := strings.TrimSpace(arg[:idx])
	qty := strings.TrimSpace(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(arg[idx+1:])), "g"))
	if name == "" {
		return domain.IngredientQuery{}, fmt.Errorf("%w: missing ingredient name in %q", domain.ErrInvalidRequest, arg)
	}

	grams, err := strconv.ParseFloat(qty, 64)
	if err != nil || grams <= 0 {
		return domain.IngredientQuery{}, fmt.Errorf("%w: quantity must be a positive number of grams in %q", domain.ErrInvalidRequest, arg)
	}

	return domain.IngredientQuery{Name: name, QuantityGrams: grams}, nil
}
