package nutritionapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/nutricalc/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Endpoint paths of the nutrition service
const (
	singlePath   = "/api/nutrition/single"
	multiplePath = "/api/nutrition/multiple"
	searchPath   = "/api/foods/search"
	healthPath   = "/api/health"
)

// Options configures the client
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client handles communication with the nutrition data service
type Client struct {
	http        *resty.Client
	baseURL     string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a new nutrition service client
func NewClient(opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Burst <= 0 {
		opts.Burst = 10
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "NutriCalc/1.0")

	return &Client{
		http:        client,
		baseURL:     opts.BaseURL,
		rateLimiter: rate.NewLimiter(limit, opts.Burst),
		logger:      logger,
	}
}

// LookupSingle fetches the nutrients of one food at the given quantity
func (c *Client) LookupSingle(ctx context.Context, food string, quantityGrams float64) (*domain.IngredientResult, error) {
	if quantityGrams <= 0 {
		quantityGrams = domain.DefaultQuantityGrams
	}

	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := req.
		SetQueryParams(map[string]string{
			"food":       food,
			"quantity_g": strconv.FormatFloat(quantityGrams, 'f', -1, 64),
		}).
		Get(singlePath)

	var dto ingredientDTO
	if err := c.decode(ctx, resp, err, &dto); err != nil {
		c.logger.Debug("single lookup failed", zap.String("food", food), zap.Error(err))
		return nil, err
	}

	return toIngredientResult(dto, food, quantityGrams), nil
}

// LookupMultiple resolves a batch of ingredients in one request
func (c *Client) LookupMultiple(ctx context.Context, ingredients []domain.IngredientQuery) (*domain.AggregateResult, error) {
	body := make([]ingredientRequestDTO, len(ingredients))
	for i, ing := range ingredients {
		grams := ing.QuantityGrams
		if grams <= 0 {
			grams = domain.DefaultQuantityGrams
		}
		body[i] = ingredientRequestDTO{Name: ing.Name, QuantityGrams: grams}
	}

	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := req.
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(multiplePath)

	var dto aggregateDTO
	if err := c.decode(ctx, resp, err, &dto); err != nil {
		c.logger.Debug("batch lookup failed", zap.Int("ingredients", len(ingredients)), zap.Error(err))
		return nil, err
	}

	result := toAggregateResult(dto)
	c.logger.Debug("batch lookup finished",
		zap.Int("resolved", len(result.Ingredients)),
		zap.Strings("not_found", result.NotFound))
	return result, nil
}

// SearchFoods returns food suggestions for partially typed text
func (c *Client) SearchFoods(ctx context.Context, query string, limit int) ([]domain.FoodSuggestion, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := req.
		SetQueryParams(map[string]string{
			"q":     query,
			"limit": strconv.Itoa(limit),
		}).
		Get(searchPath)

	var dto searchResponseDTO
	if err := c.decode(ctx, resp, err, &dto); err != nil {
		return nil, err
	}

	return toFoodSuggestions(dto.Results), nil
}

// Ping checks that the nutrition service is reachable
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}
	resp, err := req.Get(healthPath)
	return c.decode(ctx, resp, err, nil)
}

// BaseURL returns the configured service address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request waits for the rate limiter and returns a request bound to ctx
func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}
	return c.http.R().SetContext(ctx), nil
}

// decode turns a response into out, or into the matching domain error
func (c *Client) decode(ctx context.Context, resp *resty.Response, reqErr error, out interface{}) error {
	if reqErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", domain.ErrAPIUnavailable, reqErr)
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return parseAPIError(resp.StatusCode(), resp.Body())
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", domain.ErrAPIUnavailable, err)
	}
	return nil
}

// parseAPIError reads the {error} body of a failed response
func parseAPIError(status int, body []byte) *domain.APIError {
	apiErr := &domain.APIError{Status: status}
	var payload errorDTO
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = payload.Error
	}
	return apiErr
}
