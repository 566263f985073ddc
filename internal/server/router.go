package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/productify/deepwork-backend/internal/handlers"
	"github.com/productify/deepwork-backend/internal/middleware"
)

type RouterConfig struct {
	IdentityMiddleware *middleware.IdentityMiddleware
	ClassifyHandler    *handlers.ClassifyHandler
	DeepWorkHandler    *handlers.DeepWorkHandler
	FocusHandler       *handlers.FocusHandler
	RulesHandler       *handlers.RulesHandler
	TeamHandler        *handlers.TeamHandler
	AdminHandler       *handlers.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware("deepwork-backend"))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", middleware.UserIDHeader},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.IdentityMiddleware.RequireUser())
	// Classification
	api.POST("/classify", cfg.ClassifyHandler.Classify)
	api.POST("/classify/batch", cfg.ClassifyHandler.ClassifyBatch)
	// Deep work scores
	api.GET("/deepwork/score", cfg.DeepWorkHandler.GetScore)
	api.POST("/deepwork/calculate", cfg.DeepWorkHandler.Calculate)
	api.GET("/deepwork/scores", cfg.DeepWorkHandler.GetRange)
	api.GET("/deepwork/weekly", cfg.DeepWorkHandler.GetWeekly)
	// Calendar gaps / focus suggestions
	api.GET("/focus/gaps", cfg.FocusHandler.GetGaps)
	api.GET("/focus/suggestions", cfg.FocusHandler.GetSuggestions)
	// Classification rules
	api.GET("/rules", cfg.RulesHandler.ListRules)
	api.POST("/rules", cfg.RulesHandler.UpsertPlatformRule)
	api.DELETE("/rules/:domain", cfg.RulesHandler.DeletePlatformRule)
	api.POST("/rules/urls", cfg.RulesHandler.UpsertURLRule)
	api.DELETE("/rules/urls", cfg.RulesHandler.DeleteURLRule)
	api.GET("/rules/lists", cfg.RulesHandler.ListCustomEntries)
	api.POST("/rules/lists", cfg.RulesHandler.AddCustomEntry)
	api.DELETE("/rules/lists", cfg.RulesHandler.DeleteCustomEntry)
	// Teams
	api.GET("/teams/:id/score", cfg.TeamHandler.GetScore)
	api.POST("/teams/:id/score/calculate", cfg.TeamHandler.CalculateScore)
	api.POST("/teams/:id/alerts/generate", cfg.TeamHandler.GenerateAlerts)
	api.GET("/teams/:id/alerts", cfg.TeamHandler.ListAlerts)
	api.POST("/teams/:id/alerts/:alertID/dismiss", cfg.TeamHandler.DismissAlert)
	api.POST("/teams/:id/suggestions/generate", cfg.TeamHandler.GenerateSuggestions)
	api.GET("/teams/:id/suggestions", cfg.TeamHandler.ListSuggestions)
	api.POST("/teams/:id/suggestions/:suggestionID/dismiss", cfg.TeamHandler.DismissSuggestion)
	api.POST("/teams/:id/suggestions/:suggestionID/apply", cfg.TeamHandler.ApplySuggestion)
	// Admin
	api.POST("/admin/resync", cfg.AdminHandler.Resync)

	return router
}
