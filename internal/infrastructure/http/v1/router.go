// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"bakehouse/internal/infrastructure/http/v1/handlers"
	"bakehouse/internal/infrastructure/http/v1/middleware"
	"bakehouse/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Logger *logger.Logger

	// JWTSecret verifies bearer token signatures on protected routes.
	JWTSecret string

	Health    *handlers.HealthHandler
	Items     *handlers.ItemHandler
	Suppliers *handlers.SupplierHandler
	Recipes   *handlers.RecipeHandler
	Stock     *handlers.StockHandler
	Reports   *handlers.ReportsHandler
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	health := router.Group("/health")
	{
		health.GET("/live", cfg.Health.Live)
		health.GET("/ready", cfg.Health.Ready)
		health.GET("/info", cfg.Health.Info)
	}

	// API v1, actor identity required
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTSecret))
	{
		stock := api.Group("/stock")
		{
			stock.POST("/receive", cfg.Stock.Receive)
			stock.POST("/consume", cfg.Stock.Consume)
			stock.POST("/produce", cfg.Stock.Produce)
			stock.POST("/adjust", cfg.Stock.Adjust)
			stock.GET("/lots/:itemId", cfg.Stock.Lots)
			stock.GET("/cost/:itemId", cfg.Stock.Cost)
			stock.GET("/movements", cfg.Stock.Movements)
		}

		items := api.Group("/items")
		{
			items.GET("", cfg.Items.List)
			items.POST("", cfg.Items.Create)
			items.GET("/:id", cfg.Items.Get)
			items.PUT("/:id", cfg.Items.Update)
			items.DELETE("/:id", cfg.Items.Deactivate)
		}

		suppliers := api.Group("/suppliers")
		{
			suppliers.GET("", cfg.Suppliers.List)
			suppliers.POST("", cfg.Suppliers.Create)
			suppliers.GET("/:id", cfg.Suppliers.Get)
			suppliers.PUT("/:id", cfg.Suppliers.Update)
			suppliers.DELETE("/:id", cfg.Suppliers.Deactivate)
		}

		recipes := api.Group("/recipes")
		{
			recipes.GET("", cfg.Recipes.List)
			recipes.POST("", cfg.Recipes.Create)
			recipes.GET("/:id", cfg.Recipes.Get)
			recipes.PUT("/:id", cfg.Recipes.Update)
			recipes.GET("/:id/cost", cfg.Recipes.Cost)
			recipes.GET("/:id/validate", cfg.Recipes.Validate)
		}

		reports := api.Group("/reports")
		{
			reports.GET("/low-stock", cfg.Reports.LowStock)
			reports.GET("/expiring", cfg.Reports.Expiring)
			reports.GET("/summary", cfg.Reports.Summary)
			reports.GET("/export", cfg.Reports.Export)
			reports.POST("/write-off-expired", cfg.Reports.WriteOffExpired)
		}
	}

	return router
}
