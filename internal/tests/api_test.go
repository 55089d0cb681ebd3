// internal/tests/api_test.go
package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stockpilot/inventory-backend/internal/handlers"
	"github.com/stockpilot/inventory-backend/internal/models"
	"github.com/stockpilot/inventory-backend/internal/services"
)

type APITestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

func (suite *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)

	sqlDB, err := db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	suite.Require().NoError(db.AutoMigrate(
		&models.Supplier{},
		&models.Product{},
		&models.Transaction{},
	))
	suite.db = db

	productService := services.NewProductService(db)
	supplierService := services.NewSupplierService(db)
	transactionService := services.NewTransactionService(db)
	dashboardService := services.NewDashboardService(db)
	reorderService := services.NewReorderService(db, nil, time.Second)

	productHandler := handlers.NewProductHandler(productService)
	supplierHandler := handlers.NewSupplierHandler(supplierService, dashboardService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, reorderService)

	suite.router = gin.New()
	v1 := suite.router.Group("/v1")
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
			suppliers.DELETE("/:id", supplierHandler.DeleteSupplier)
		}
		transactions := v1.Group("/transactions")
		{
			transactions.GET("", transactionHandler.GetTransactions)
			transactions.POST("", transactionHandler.CreateTransaction)
		}
		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("/stats", dashboardHandler.GetDashboardStats)
			dashboard.GET("/reorder-suggestions", dashboardHandler.GetReorderSuggestions)
			dashboard.GET("/reports", dashboardHandler.GetInventoryReports)
		}
	}
}

func (suite *APITestSuite) request(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewBuffer(jsonData)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *APITestSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func (suite *APITestSuite) TestProductLifecycle() {
	w := suite.request("POST", "/v1/products", map[string]interface{}{
		"name":     "Widget",
		"sku":      "wid-001",
		"price":    49.99,
		"quantity": 20,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	response := suite.decode(w)
	assert.True(suite.T(), response["success"].(bool))
	data := response["data"].(map[string]interface{})
	assert.Equal(suite.T(), "WID-001", data["sku"])
	productID := data["id"].(string)

	// Duplicate SKU, case-insensitively
	w = suite.request("POST", "/v1/products", map[string]interface{}{
		"name": "Widget Clone", "sku": "WID-001", "price": 10, "quantity": 1,
	})
	suite.Require().Equal(http.StatusConflict, w.Code)
	response = suite.decode(w)
	assert.False(suite.T(), response["success"].(bool))
	assert.Equal(suite.T(), "CONFLICT", response["error"].(map[string]interface{})["code"])

	w = suite.request("GET", "/v1/products/"+productID, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request("DELETE", "/v1/products/"+productID, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request("GET", "/v1/products", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	response = suite.decode(w)
	assert.Empty(suite.T(), response["data"])
}

func (suite *APITestSuite) TestInvalidProductIDRejected() {
	w := suite.request("GET", "/v1/products/not-a-uuid", nil)
	suite.Require().Equal(http.StatusBadRequest, w.Code)
	response := suite.decode(w)
	assert.Equal(suite.T(), "BAD_REQUEST", response["error"].(map[string]interface{})["code"])
}

func (suite *APITestSuite) TestSaleRejectedWhenStockInsufficient() {
	product := &models.Product{
		Name: "Widget", SKU: "WID-001", Price: 100, Quantity: 3,
		MinStockLevel: 10, IsActive: true,
	}
	suite.Require().NoError(suite.db.Create(product).Error)

	w := suite.request("POST", "/v1/transactions", map[string]interface{}{
		"type":       "sale",
		"product_id": product.ID.String(),
		"quantity":   5,
		"price":      100,
	})
	suite.Require().Equal(http.StatusBadRequest, w.Code, w.Body.String())

	response := suite.decode(w)
	errObj := response["error"].(map[string]interface{})
	assert.Equal(suite.T(), "INSUFFICIENT_STOCK", errObj["code"])
	assert.Equal(suite.T(), "Insufficient stock. Available: 3, Requested: 5", errObj["message"])

	var fetched models.Product
	suite.Require().NoError(suite.db.First(&fetched, "id = ?", product.ID).Error)
	assert.Equal(suite.T(), 3, fetched.Quantity)
}

func (suite *APITestSuite) TestSaleAppliedAtomically() {
	product := &models.Product{
		Name: "Widget", SKU: "WID-001", Price: 100, Quantity: 20,
		MinStockLevel: 10, IsActive: true,
	}
	suite.Require().NoError(suite.db.Create(product).Error)

	w := suite.request("POST", "/v1/transactions", map[string]interface{}{
		"type":       "sale",
		"product_id": product.ID.String(),
		"quantity":   5,
		"price":      95,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	response := suite.decode(w)
	data := response["data"].(map[string]interface{})
	assert.Equal(suite.T(), 475.0, data["total_amount"])

	var fetched models.Product
	suite.Require().NoError(suite.db.First(&fetched, "id = ?", product.ID).Error)
	assert.Equal(suite.T(), 15, fetched.Quantity)
}

func (suite *APITestSuite) TestSupplierDeleteGuard() {
	supplier := &models.Supplier{Name: "Acme Supplies", IsActive: true}
	suite.Require().NoError(suite.db.Create(supplier).Error)

	product := &models.Product{
		Name: "Widget", SKU: "WID-001", Price: 10, Quantity: 5,
		MinStockLevel: 10, IsActive: true, SupplierID: &supplier.ID,
	}
	suite.Require().NoError(suite.db.Create(product).Error)

	w := suite.request("DELETE", fmt.Sprintf("/v1/suppliers/%s", supplier.ID), nil)
	suite.Require().Equal(http.StatusConflict, w.Code)
	response := suite.decode(w)
	assert.Equal(suite.T(), "CONFLICT", response["error"].(map[string]interface{})["code"])
}

func (suite *APITestSuite) TestDashboardEndpoints() {
	product := &models.Product{
		Name: "Widget", SKU: "WID-001", Price: 10, Quantity: 2,
		MinStockLevel: 10, IsActive: true,
	}
	suite.Require().NoError(suite.db.Create(product).Error)

	w := suite.request("GET", "/v1/dashboard/stats", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	response := suite.decode(w)
	stats := response["data"].(map[string]interface{})["stats"].(map[string]interface{})
	assert.Equal(suite.T(), 1.0, stats["total_products"])
	assert.Equal(suite.T(), 1.0, stats["low_stock_count"])

	w = suite.request("GET", "/v1/dashboard/reorder-suggestions", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	response = suite.decode(w)
	suggestions := response["data"].([]interface{})
	suite.Require().Len(suggestions, 1)
	first := suggestions[0].(map[string]interface{})
	assert.Equal(suite.T(), "Widget", first["productName"])
	assert.Equal(suite.T(), "Stock below minimum level - urgent reorder needed", first["reason"])

	w = suite.request("GET", "/v1/dashboard/reports?type=stock_levels", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request("GET", "/v1/dashboard/reports?type=bogus", nil)
	suite.Require().Equal(http.StatusBadRequest, w.Code)
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
