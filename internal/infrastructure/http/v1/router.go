// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"lemonpos/internal/domain/catalog/ingredient"
	"lemonpos/internal/domain/catalog/product"
	"lemonpos/internal/domain/ledger"
	"lemonpos/internal/domain/order"
	"lemonpos/internal/domain/reports"
	"lemonpos/internal/infrastructure/http/v1/handlers"
	"lemonpos/internal/infrastructure/http/v1/middleware"
	"lemonpos/pkg/logger"
)

// RouterConfig holds the wired services for the API.
type RouterConfig struct {
	Logger *logger.Logger

	Products    *product.Service
	Ingredients *ingredient.Service
	Stock       *ledger.Service
	Orders      *order.Coordinator
	Reports     *reports.Service

	// Storage is pinged by the readiness probe; nil skips the check.
	Storage handlers.Pinger
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

	healthHandler := handlers.NewHealthHandler(cfg.Storage)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	base := handlers.NewBaseHandler()
	productHandler := handlers.NewProductHandler(base, cfg.Products)
	ingredientHandler := handlers.NewIngredientHandler(base, cfg.Ingredients)
	stockHandler := handlers.NewStockHandler(base, cfg.Stock)
	orderHandler := handlers.NewOrderHandler(base, cfg.Orders)
	reportHandler := handlers.NewReportHandler(base, cfg.Reports)

	api := router.Group("/api/v1")
	{
		products := api.Group("/products")
		{
			products.POST("", productHandler.Create)
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
			products.PUT("/:id", productHandler.Update)
			products.DELETE("/:id", productHandler.Deactivate)
			products.POST("/:id/receive", productHandler.Receive)
		}

		ingredients := api.Group("/ingredients")
		{
			ingredients.POST("", ingredientHandler.Create)
			ingredients.GET("", ingredientHandler.List)
			ingredients.GET("/:id", ingredientHandler.Get)
			ingredients.PUT("/:id", ingredientHandler.Update)
			ingredients.DELETE("/:id", ingredientHandler.Deactivate)

			ingredients.POST("/:id/movements", stockHandler.Append)
			ingredients.GET("/:id/movements", stockHandler.History)
		}

		stock := api.Group("/stock")
		{
			stock.GET("/movements", stockHandler.List)
			stock.POST("/reconcile", stockHandler.Reconcile)
		}

		orders := api.Group("/orders")
		{
			orders.POST("", orderHandler.Commit)
			orders.GET("", orderHandler.List)
			orders.GET("/:id", orderHandler.Get)
			orders.PATCH("/:id/status", orderHandler.UpdateStatus)
		}

		reportRoutes := api.Group("/reports")
		{
			reportRoutes.GET("/low-stock", reportHandler.LowStock)
			reportRoutes.GET("/valuation", reportHandler.Valuation)
		}
	}

	return router
}
