package http

import (
	"embed"
	"html/template"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/nutricalc/backend/config"
	"github.com/nutricalc/backend/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

// SetupRouter creates and configures the Gin router. collector may be nil.
func SetupRouter(cfg *config.Config, handler *Handler, collector *metrics.Collector, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	// Global middleware
	router.Use(requestid.New())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	if collector != nil {
		router.Use(collector.HTTPMiddleware())
		router.GET("/metrics", gin.WrapH(collector.Handler()))
	}

	router.GET("/health", handler.HealthCheck)
	router.GET("/", handler.Index)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst, logger))
	{
		nutrition := v1.Group("/nutrition")
		{
			nutrition.GET("/search", handler.SearchNutrition)
			nutrition.POST("/recipe", handler.CalculateRecipe)
		}

		v1.GET("/foods/suggest", handler.SuggestFoods)
		v1.GET("/history", handler.GetHistory)
	}

	return router
}
