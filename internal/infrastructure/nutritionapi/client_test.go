package nutritionapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nutricalc/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(Options{BaseURL: url, Timeout: 5 * time.Second}, nil)
}

func TestNewClient(t *testing.T) {
	client := NewClient(Options{BaseURL: "https://api.example.com"}, nil)

	assert.NotNil(t, client)
	assert.Equal(t, "https://api.example.com", client.BaseURL())
	assert.NotNil(t, client.http)
	assert.NotNil(t, client.rateLimiter)
	assert.Equal(t, 15*time.Second, client.http.GetClient().Timeout)
}

func TestLookupSingle_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/nutrition/single", r.URL.Path)
		assert.Equal(t, "egg", r.URL.Query().Get("food"))
		assert.Equal(t, "50", r.URL.Query().Get("quantity_g"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"ingredient": "egg",
			"quantity_g": 50,
			"nutrients": [
				{"name": "Energy", "amount": 71.5, "unit": "kcal", "per_100g": 143},
				{"name": "Protein", "amount": 6.3, "unit": "g"}
			]
		}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).LookupSingle(context.Background(), "egg", 50)

	require.NoError(t, err)
	assert.Equal(t, "egg", result.Ingredient)
	assert.Equal(t, 50.0, result.QuantityGrams)
	require.Len(t, result.Nutrients, 2)
	assert.Equal(t, 143.0, *result.Nutrients[0].Per100g)
	require.NotNil(t, result.Nutrients[1].Per100g, "per_100g derived from amount")
	assert.InDelta(t, 12.6, *result.Nutrients[1].Per100g, 1e-9)
}

func TestLookupSingle_DefaultQuantity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("quantity_g"))
		_, _ = w.Write([]byte(`{"nutrients": []}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).LookupSingle(context.Background(), "apple", 0)

	require.NoError(t, err)
	assert.Equal(t, "apple", result.Ingredient, "requested name fills missing ingredient")
	assert.Equal(t, 100.0, result.QuantityGrams)
	assert.Empty(t, result.Nutrients)
}

func TestLookupSingle_ErrorStatus(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantErr     error
	}{
		{
			name:        "not found is verbatim and matches ErrNotFound",
			status:      http.StatusNotFound,
			body:        `{"error": "Food 'dragonfruit' not found"}`,
			wantMessage: "Food 'dragonfruit' not found",
			wantErr:     domain.ErrNotFound,
		},
		{
			name:        "server error message is verbatim",
			status:      http.StatusInternalServerError,
			body:        `{"error": "database unavailable"}`,
			wantMessage: "database unavailable",
		},
		{
			name:        "non-json body falls back to status",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantMessage: "nutrition service returned status 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).LookupSingle(context.Background(), "dragonfruit", 100)

			var apiErr *domain.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMessage, err.Error())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLookupSingle_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(url).LookupSingle(context.Background(), "egg", 100)

	assert.ErrorIs(t, err, domain.ErrAPIUnavailable)
}

func TestLookupSingle_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ingredient": `))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).LookupSingle(context.Background(), "egg", 100)

	assert.ErrorIs(t, err, domain.ErrAPIUnavailable)
}

func TestLookupSingle_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := newTestClient(server.URL).LookupSingle(ctx, "egg", 100)

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrAPIUnavailable)
}

func TestLookupMultiple(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/nutrition/multiple", r.URL.Path)

		var body []map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body, 3)
		assert.Equal(t, "oats", body[0]["name"])
		assert.Equal(t, 100.0, body[0]["quantity_g"])
		assert.Equal(t, 250.0, body[1]["quantity_g"])

		_, _ = w.Write([]byte(`{
			"ingredients": [
				{"ingredient": "oats", "quantity_g": 100, "nutrients": [{"name": "Energy", "amount": 389, "unit": "kcal"}]},
				{"ingredient": "milk", "quantity_g": 250, "nutrients": [{"name": "Energy", "amount": 152.5, "unit": "kcal"}]}
			],
			"total_nutrients": [{"name": "Energy", "amount": 541.5, "unit": "kcal"}],
			"not_found": ["banana"]
		}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).LookupMultiple(context.Background(), []domain.IngredientQuery{
		{Name: "oats"},
		{Name: "milk", QuantityGrams: 250},
		{Name: "banana", QuantityGrams: 100},
	})

	require.NoError(t, err)
	require.Len(t, result.Ingredients, 2)
	assert.Equal(t, "milk", result.Ingredients[1].Ingredient)
	require.Len(t, result.TotalNutrients, 1)
	assert.Equal(t, 541.5, result.TotalNutrients[0].Amount)
	assert.Equal(t, []string{"banana"}, result.NotFound)
}

func TestLookupMultiple_MissingFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ingredients": []}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).LookupMultiple(context.Background(), []domain.IngredientQuery{{Name: "x"}})

	require.NoError(t, err)
	assert.NotNil(t, result.NotFound)
	assert.Empty(t, result.NotFound)
	assert.Empty(t, result.TotalNutrients)
}

func TestSearchFoods(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/foods/search", r.URL.Path)
		assert.Equal(t, "chick", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))

		_, _ = w.Write([]byte(`{"results": [
			{"id": 171477, "name": "Chicken breast", "group": "Poultry"},
			{"id": "abc", "name": "Chickpeas"},
			{"id": 3, "name": "  "}
		]}`))
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).SearchFoods(context.Background(), "chick", 5)

	require.NoError(t, err)
	assert.Equal(t, []domain.FoodSuggestion{
		{ID: "171477", Name: "Chicken breast", Group: "Poultry"},
		{ID: "abc", Name: "Chickpeas"},
	}, got)
}

func TestPing(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/health", r.URL.Path)
			_, _ = w.Write([]byte(`{"status": "ok"}`))
		}))
		defer server.Close()

		assert.NoError(t, newTestClient(server.URL).Ping(context.Background()))
	})

	t.Run("unhealthy", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		var apiErr *domain.APIError
		err := newTestClient(server.URL).Ping(context.Background())
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	})
}

func TestRateLimiter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL, RequestsPerSecond: 0.001, Burst: 1}, nil)

	_, err := client.SearchFoods(context.Background(), "ab", 5)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.SearchFoods(ctx, "ab", 5)
	assert.Error(t, err, "second call must wait for the limiter")
}
