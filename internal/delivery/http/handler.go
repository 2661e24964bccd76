package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nutricalc/backend/internal/domain"
	"github.com/nutricalc/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

const (
	// SessionHeader lets API clients name their own session
	SessionHeader = "X-Session-ID"
	// SessionCookie carries the browser session when no header is sent
	SessionCookie = "nutricalc_session"

	sessionCookieMaxAge = 30 * 24 * 60 * 60
	healthPingTimeout   = 3 * time.Second
)

// NutritionUsecase is what the handlers need from the nutrition service
type NutritionUsecase interface {
	Search(ctx context.Context, session, query string) (*domain.NutritionResult, error)
	CalculateRecipe(ctx context.Context, session string, ingredients []domain.IngredientQuery) (*domain.NutritionResult, error)
	Suggest(ctx context.Context, query string, limit int) ([]domain.FoodSuggestion, error)
	History(ctx context.Context) ([]string, error)
	Label(result *domain.NutritionResult) *domain.LabelView
}

// Pinger checks that the upstream nutrition service answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// CacheStatter reports lookup cache usage for the health check
type CacheStatter interface {
	Stats() cache.Stats
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	nutrition NutritionUsecase
	upstream  Pinger
	cache     CacheStatter
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler. upstream may be nil.
func NewHandler(nutrition NutritionUsecase, upstream Pinger, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		nutrition: nutrition,
		upstream:  upstream,
		logger:    logger,
	}
}

// WithCacheStats adds the lookup cache counters to the health payload
func (h *Handler) WithCacheStats(stats CacheStatter) *Handler {
	h.cache = stats
	return h
}

// RecipeRequest is the body of POST /api/v1/nutrition/recipe
type RecipeRequest struct {
	Ingredients []domain.IngredientQuery `json:"ingredients"`
}

// NutritionResponse pairs a lookup result with its rendered label
type NutritionResponse struct {
	Result *domain.NutritionResult `json:"result"`
	Label  *domain.LabelView       `json:"label"`
}

// HealthCheck returns the health status of the API and its upstream
func (h *Handler) HealthCheck(c *gin.Context) {
	upstream := "unconfigured"
	if h.upstream != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()
		if err := h.upstream.Ping(ctx); err != nil {
			upstream = "unreachable"
			h.logger.Warn("nutrition service health check failed", zap.Error(err))
		} else {
			upstream = "ok"
		}
	}

	payload := gin.H{
		"status":   "healthy",
		"service":  "nutricalc-backend",
		"version":  "1.0.0",
		"upstream": upstream,
	}
	if h.cache != nil {
		payload["cache"] = h.cache.Stats()
	}
	c.JSON(http.StatusOK, payload)
}

// SearchNutrition handles GET /api/v1/nutrition/search?q=
func (h *Handler) SearchNutrition(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	result, err := h.nutrition.Search(c.Request.Context(), sessionID(c), query)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NutritionResponse{Result: result, Label: h.nutrition.Label(result)})
}

// CalculateRecipe handles POST /api/v1/nutrition/recipe
func (h *Handler) CalculateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := h.nutrition.CalculateRecipe(c.Request.Context(), sessionID(c), req.Ingredients)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NutritionResponse{Result: result, Label: h.nutrition.Label(result)})
}

// SuggestFoods handles GET /api/v1/foods/suggest?q=&limit=
func (h *Handler) SuggestFoods(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	results, err := h.nutrition.Suggest(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// GetHistory handles GET /api/v1/history
func (h *Handler) GetHistory(c *gin.Context) {
	history, err := h.nutrition.History(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if history == nil {
		history = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

// indexPage is the data the index template renders
type indexPage struct {
	Query   string
	Label   *domain.LabelView
	Error   string
	History []string
}

// Index renders the search page. With ?q= the label is rendered server-side.
func (h *Handler) Index(c *gin.Context) {
	page := indexPage{Query: strings.TrimSpace(c.Query("q"))}
	status := http.StatusOK

	if page.Query != "" {
		result, err := h.nutrition.Search(c.Request.Context(), sessionID(c), page.Query)
		if err != nil {
			status, page.Error = classifyError(err)
			h.logError(c, status, err)
		} else {
			page.Label = h.nutrition.Label(result)
		}
	}

	history, err := h.nutrition.History(c.Request.Context())
	if err != nil {
		h.logger.Warn("failed to load history for index page", zap.Error(err))
	}
	page.History = history

	c.HTML(status, "index.html", page)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status, message := classifyError(err)
	h.logError(c, status, err)
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": message})
}

func (h *Handler) logError(c *gin.Context, status int, err error) {
	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields...)
		return
	}
	h.logger.Debug("request rejected", fields...)
}

// classifyError maps service errors to a status and the message shown to the user.
// Messages from the nutrition service are passed through unchanged.
func classifyError(err error) (int, string) {
	var apiErr *domain.APIError

	switch {
	case errors.Is(err, domain.ErrSuperseded):
		return http.StatusConflict, domain.ErrSuperseded.Error()
	case errors.Is(err, domain.ErrEmptyRecipe):
		return http.StatusBadRequest, domain.ErrEmptyRecipe.Error()
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &apiErr):
		return http.StatusBadGateway, apiErr.Error()
	case errors.Is(err, domain.ErrAPIUnavailable):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// sessionID returns the caller's session key from the header or cookie,
// issuing a new cookie when neither is present
func sessionID(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetHeader(SessionHeader)); id != "" {
		return id
	}
	if id, err := c.Cookie(SessionCookie); err == nil && id != "" {
		return id
	}

	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, id, sessionCookieMaxAge, "/", "", false, true)
	return id
}
