package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/nutricalc/backend/config"
	"github.com/nutricalc/backend/internal/domain"
	"github.com/nutricalc/backend/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeService answers from a fixed table of foods per 100g
type fakeService struct {
	presenter   *usecase.LabelPresenter
	history     []string
	searched    []string
	ingredients []domain.IngredientQuery
	suggestions []domain.FoodSuggestion
	limit       int
}

func newFakeService() *fakeService {
	return &fakeService{presenter: usecase.NewLabelPresenter()}
}

func (f *fakeService) Search(ctx context.Context, session, query string) (*domain.NutritionResult, error) {
	f.searched = append(f.searched, query)
	if query != "egg" {
		return nil, &domain.APIError{Status: 404, Message: "Food '" + query + "' not found"}
	}
	return domain.NewSingleResult(&domain.IngredientResult{
		Ingredient:    "egg",
		QuantityGrams: 100,
		Nutrients:     []domain.Nutrient{{Name: "Energy", Amount: 143, Unit: "kcal"}},
	}), nil
}

func (f *fakeService) CalculateRecipe(ctx context.Context, session string, ingredients []domain.IngredientQuery) (*domain.NutritionResult, error) {
	f.ingredients = ingredients
	return domain.NewRecipeResult(&domain.AggregateResult{
		Ingredients: []domain.IngredientResult{{
			Ingredient:    "oats",
			QuantityGrams: 50,
			Nutrients:     []domain.Nutrient{{Name: "Energy", Amount: 194.5, Unit: "kcal"}},
		}},
		TotalNutrients: []domain.Nutrient{{Name: "Energy", Amount: 194.5, Unit: "kcal"}},
		NotFound:       []string{"unicorn"},
	}), nil
}

func (f *fakeService) Suggest(ctx context.Context, query string, limit int) ([]domain.FoodSuggestion, error) {
	f.limit = limit
	return f.suggestions, nil
}

func (f *fakeService) History(ctx context.Context) ([]string, error) {
	return f.history, nil
}

func (f *fakeService) Label(result *domain.NutritionResult) *domain.LabelView {
	return f.presenter.Render(result)
}

// runCLI executes the root command against svc and returns its output
func runCLI(t *testing.T, svc *fakeService, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	original := newService
	newService = func(cfg *config.Config, log *zap.Logger) (nutritionService, func(), error) {
		return svc, func() {}, nil
	}
	t.Cleanup(func() { newService = original })

	jsonOutput, verbose, configPath = false, false, ""
	suggestLimit = usecase.DefaultSuggestionLimit

	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := runCLI(t, newFakeService(), "--help")
	require.NoError(t, err)
	for _, name := range []string{"search", "recipe", "suggest", "history", "--json", "--config"} {
		assert.Contains(t, out, name)
	}
}

func TestSearchCommand(t *testing.T) {
	t.Run("prints label", func(t *testing.T) {
		svc := newFakeService()
		out, err := runCLI(t, svc, "search", "egg")
		require.NoError(t, err)
		assert.Contains(t, out, "Nutrition Facts")
		assert.Contains(t, out, "1 serving (egg)")
		assert.Equal(t, []string{"egg"}, svc.searched)
	})

	t.Run("joins words into one query", func(t *testing.T) {
		svc := newFakeService()
		_, err := runCLI(t, svc, "search", "150g", "oats,", "milk")
		require.Error(t, err)
		assert.Equal(t, []string{"150g oats, milk"}, svc.searched)
	})

	t.Run("json output", func(t *testing.T) {
		out, err := runCLI(t, newFakeService(), "--json", "search", "egg")
		require.NoError(t, err)

		var body struct {
			Result domain.NutritionResult `json:"result"`
			Label  domain.LabelView       `json:"label"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &body))
		assert.Equal(t, domain.KindSingle, body.Result.Kind)
		assert.Equal(t, 143, body.Label.Calories)
	})

	t.Run("service message is returned verbatim", func(t *testing.T) {
		_, err := runCLI(t, newFakeService(), "search", "unicorn")
		assert.EqualError(t, err, "Food 'unicorn' not found")
	})

	t.Run("requires a query", func(t *testing.T) {
		_, err := runCLI(t, newFakeService(), "search")
		assert.Error(t, err)
	})
}

func TestRecipeCommand(t *testing.T) {
	t.Run("parses name and grams", func(t *testing.T) {
		svc := newFakeService()
		out, err := runCLI(t, svc, "recipe", "oats:50", "milk", "unicorn:10g")
		require.NoError(t, err)

		assert.Equal(t, []domain.IngredientQuery{
			{Name: "oats", QuantityGrams: 50},
			{Name: "milk", QuantityGrams: 100},
			{Name: "unicorn", QuantityGrams: 10},
		}, svc.ingredients)
		assert.Contains(t, out, "Combined serving (oats)")
		assert.Contains(t, out, "Not found: unicorn")
	})

	t.Run("bad quantity", func(t *testing.T) {
		_, err := runCLI(t, newFakeService(), "recipe", "oats:lots")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("blank ingredients", func(t *testing.T) {
		_, err := runCLI(t, newFakeService(), "recipe", " ", "")
		assert.ErrorIs(t, err, domain.ErrEmptyRecipe)
	})
}

func TestSuggestCommand(t *testing.T) {
	svc := newFakeService()
	svc.suggestions = []domain.FoodSuggestion{{ID: "1", Name: "Egg"}, {ID: "2", Name: "Egg white"}}

	out, err := runCLI(t, svc, "suggest", "eg", "--limit", "2")
	require.NoError(t, err)
	assert.Equal(t, "Egg\nEgg white\n", out)
	assert.Equal(t, 2, svc.limit)

	svc.suggestions = nil
	out, err = runCLI(t, svc, "suggest", "zz")
	require.NoError(t, err)
	assert.Equal(t, "No suggestions.\n", out)
}

func TestHistoryCommand(t *testing.T) {
	svc := newFakeService()

	out, err := runCLI(t, svc, "history")
	require.NoError(t, err)
	assert.Equal(t, "No recent searches.\n", out)

	svc.history = []string{"banana", "apple"}
	out, err = runCLI(t, svc, "history")
	require.NoError(t, err)
	assert.Equal(t, "1. banana\n2. apple\n", out)

	out, err = runCLI(t, svc, "--json", "history")
	require.NoError(t, err)
	assert.JSONEq(t, `{"history":["banana","apple"]}`, out)
}
