// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stockpilot/inventory-backend/internal/config"
	"github.com/stockpilot/inventory-backend/internal/handlers"
	"github.com/stockpilot/inventory-backend/internal/middleware"
	"github.com/stockpilot/inventory-backend/internal/services"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	productService := services.NewProductService(db)
	supplierService := services.NewSupplierService(db)
	transactionService := services.NewTransactionService(db)
	dashboardService := services.NewDashboardService(db)

	// The scorer is optional; without an API key the reorder service runs
	// on the rule engine alone.
	var scorer services.ReorderScorer
	if gemini := services.NewGeminiScorer(cfg.AI); gemini != nil {
		scorer = gemini
	}
	reorderService := services.NewReorderService(db, scorer,
		time.Duration(cfg.AI.TimeoutSeconds)*time.Second)

	// Initialize handlers
	productHandler := handlers.NewProductHandler(productService)
	supplierHandler := handlers.NewSupplierHandler(supplierService, dashboardService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, reorderService)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.POST("", productHandler.CreateProduct)
			products.GET("/low-stock", productHandler.GetLowStockProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.PUT("/:id", productHandler.UpdateProduct)
			products.DELETE("/:id", productHandler.DeleteProduct)
		}

		suppliers := v1.Group("/suppliers")
		{
			suppliers.GET("", supplierHandler.GetSuppliers)
			suppliers.POST("", supplierHandler.CreateSupplier)
			suppliers.GET("/stats", supplierHandler.GetSupplierStats)
			suppliers.GET("/:id", supplierHandler.GetSupplier)
			suppliers.PUT("/:id", supplierHandler.UpdateSupplier)
			suppliers.DELETE("/:id", supplierHandler.DeleteSupplier)
		}

		transactions := v1.Group("/transactions")
		{
			transactions.GET("", transactionHandler.GetTransactions)
			transactions.POST("", transactionHandler.CreateTransaction)
			transactions.GET("/summary", transactionHandler.GetTransactionSummary)
			transactions.GET("/monthly-stats", transactionHandler.GetMonthlyStats)
			transactions.GET("/:id", transactionHandler.GetTransaction)
		}

		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("/stats", dashboardHandler.GetDashboardStats)
			dashboard.GET("/reorder-suggestions", middleware.ReorderRateLimit(), dashboardHandler.GetReorderSuggestions)
			dashboard.GET("/reports", dashboardHandler.GetInventoryReports)
		}
	}

	return r
}
