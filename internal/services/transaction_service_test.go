// internal/services/transaction_service_test.go
package services

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/stockpilot/inventory-backend/internal/apperrors"
	"github.com/stockpilot/inventory-backend/internal/models"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *TransactionService
	product *models.Product
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewTransactionService(suite.db)

	suite.product = &models.Product{
		Name:          "Widget",
		SKU:           "WID-001",
		Price:         100.0,
		Quantity:      20,
		MinStockLevel: 10,
		IsActive:      true,
	}
	suite.Require().NoError(suite.db.Create(suite.product).Error)
}

func (suite *TransactionServiceTestSuite) TestSaleDecrementsStock() {
	created, err := suite.service.CreateTransaction(&CreateTransactionRequest{
		Type:      models.TransactionTypeSale,
		ProductID: suite.product.ID,
		Quantity:  5,
		Price:     95.0,
		Customer:  "Acme Corp",
	})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.TransactionTypeSale, created.Type)
	assert.Equal(suite.T(), 5, created.Quantity)
	assert.Equal(suite.T(), 475.0, created.TotalAmount)
	assert.Equal(suite.T(), models.TransactionStatusCompleted, created.Status)

	var product models.Product
	suite.Require().NoError(suite.db.First(&product, "id = ?", suite.product.ID).Error)
	assert.Equal(suite.T(), 15, product.Quantity)
}

func (suite *TransactionServiceTestSuite) TestPurchaseIncrementsStock() {
	created, err := suite.service.CreateTransaction(&CreateTransactionRequest{
		Type:      models.TransactionTypePurchase,
		ProductID: suite.product.ID,
		Quantity:  30,
		Price:     60.0,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 1800.0, created.TotalAmount)

	var product models.Product
	suite.Require().NoError(suite.db.First(&product, "id = ?", suite.product.ID).Error)
	assert.Equal(suite.T(), 50, product.Quantity)
}

func (suite *TransactionServiceTestSuite) TestOversellLeavesStateUnchanged() {
	_, err := suite.service.CreateTransaction(&CreateTransactionRequest{
		Type:      models.TransactionTypeSale,
		ProductID: suite.product.ID,
		Quantity:  25,
		Price:     100.0,
	})
	suite.Require().Error(err)
	assert.True(suite.T(), apperrors.IsCode(err, apperrors.CodeInsufficientStock))

	appErr, ok := apperrors.As(err)
	suite.Require().True(ok)
	assert.Equal(suite.T(), "Insufficient stock. Available: 20, Requested: 25", appErr.Message)

	var product models.Product
	suite.Require().NoError(suite.db.First(&product, "id = ?", suite.product.ID).Error)
	assert.Equal(suite.T(), 20, product.Quantity)

	var count int64
	suite.Require().NoError(suite.db.Model(&models.Transaction{}).Count(&count).Error)
	assert.Equal(suite.T(), int64(0), count)
}

func (suite *TransactionServiceTestSuite) TestUnknownProduct() {
	_, err := suite.service.CreateTransaction(&CreateTransactionRequest{
		Type:      models.TransactionTypeSale,
		ProductID: uuid.New(),
		Quantity:  1,
		Price:     10.0,
	})
	suite.Require().Error(err)
	assert.True(suite.T(), apperrors.IsCode(err, apperrors.CodeNotFound))
}

func (suite *TransactionServiceTestSuite) TestInvalidRequestRejected() {
	_, err := suite.service.CreateTransaction(&CreateTransactionRequest{
		Type:      "adjustment",
		ProductID: suite.product.ID,
		Quantity:  1,
		Price:     10.0,
	})
	suite.Require().Error(err)
	assert.True(suite.T(), apperrors.IsCode(err, apperrors.CodeValidationFailed))

	_, err = suite.service.CreateTransaction(&CreateTransactionRequest{
		Type:      models.TransactionTypeSale,
		ProductID: suite.product.ID,
		Quantity:  0,
		Price:     10.0,
	})
	suite.Require().Error(err)
	assert.True(suite.T(), apperrors.IsCode(err, apperrors.CodeValidationFailed))
}

// Twenty concurrent single-unit sales race for five units of stock.
// Exactly five may succeed and the quantity must land on zero, never
// below.
func (suite *TransactionServiceTestSuite) TestConcurrentSalesNeverOversell() {
	suite.Require().NoError(suite.db.Model(suite.product).Update("quantity", 5).Error)

	const attempts = 20
	results := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.service.CreateTransaction(&CreateTransactionRequest{
				Type:      models.TransactionTypeSale,
				ProductID: suite.product.ID,
				Quantity:  1,
				Price:     100.0,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, rejected := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(suite.T(), apperrors.IsCode(err, apperrors.CodeInsufficientStock))
		rejected++
	}
	assert.Equal(suite.T(), 5, succeeded)
	assert.Equal(suite.T(), 15, rejected)

	var product models.Product
	suite.Require().NoError(suite.db.First(&product, "id = ?", suite.product.ID).Error)
	assert.Equal(suite.T(), 0, product.Quantity)

	var count int64
	suite.Require().NoError(suite.db.Model(&models.Transaction{}).Count(&count).Error)
	assert.Equal(suite.T(), int64(5), count)
}

func (suite *TransactionServiceTestSuite) TestGetTransactionsFilters() {
	_, err := suite.service.CreateTransaction(&CreateTransactionRequest{
		Type: models.TransactionTypePurchase, ProductID: suite.product.ID, Quantity: 10, Price: 50.0,
	})
	suite.Require().NoError(err)
	_, err = suite.service.CreateTransaction(&CreateTransactionRequest{
		Type: models.TransactionTypeSale, ProductID: suite.product.ID, Quantity: 3, Price: 90.0,
	})
	suite.Require().NoError(err)

	sales, total, err := suite.service.GetTransactions(TransactionFilter{
		Type: models.TransactionTypeSale,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(1), total)
	suite.Require().Len(sales, 1)
	assert.Equal(suite.T(), models.TransactionTypeSale, sales[0].Type)
	suite.Require().NotNil(sales[0].Product)
	assert.Equal(suite.T(), "Widget", sales[0].Product.Name)

	all, total, err := suite.service.GetTransactions(TransactionFilter{})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(2), total)
	assert.Len(suite.T(), all, 2)
}

func (suite *TransactionServiceTestSuite) TestSummaryGrossProfit() {
	_, err := suite.service.CreateTransaction(&CreateTransactionRequest{
		Type: models.TransactionTypePurchase, ProductID: suite.product.ID, Quantity: 10, Price: 50.0,
	})
	suite.Require().NoError(err)
	_, err = suite.service.CreateTransaction(&CreateTransactionRequest{
		Type: models.TransactionTypeSale, ProductID: suite.product.ID, Quantity: 8, Price: 100.0,
	})
	suite.Require().NoError(err)

	summary, err := suite.service.GetTransactionSummary(nil, nil)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), int64(1), summary.Purchases.TotalTransactions)
	assert.Equal(suite.T(), 500.0, summary.Purchases.TotalAmount)
	assert.Equal(suite.T(), int64(10), summary.Purchases.TotalQuantity)
	assert.Equal(suite.T(), int64(1), summary.Sales.TotalTransactions)
	assert.Equal(suite.T(), 800.0, summary.Sales.TotalAmount)
	assert.Equal(suite.T(), 300.0, summary.GrossProfit)
}

func (suite *TransactionServiceTestSuite) TestMonthlyStatsGrouping() {
	// Rows inserted directly with explicit timestamps to span months.
	jan := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	rows := []models.Transaction{
		{Type: models.TransactionTypeSale, ProductID: suite.product.ID, Quantity: 2, Price: 100.0, BaseModel: models.BaseModel{CreatedAt: jan}},
		{Type: models.TransactionTypeSale, ProductID: suite.product.ID, Quantity: 3, Price: 100.0, BaseModel: models.BaseModel{CreatedAt: jan}},
		{Type: models.TransactionTypePurchase, ProductID: suite.product.ID, Quantity: 5, Price: 40.0, BaseModel: models.BaseModel{CreatedAt: feb}},
	}
	for i := range rows {
		suite.Require().NoError(suite.db.Create(&rows[i]).Error)
	}

	stats, err := suite.service.GetMonthlyStats()
	suite.Require().NoError(err)
	suite.Require().Len(stats, 2)

	// Newest first
	assert.Equal(suite.T(), 2, stats[0].Month)
	assert.Equal(suite.T(), models.TransactionTypePurchase, stats[0].Type)
	assert.Equal(suite.T(), 200.0, stats[0].TotalAmount)
	assert.Equal(suite.T(), int64(1), stats[0].TotalTransactions)

	assert.Equal(suite.T(), 1, stats[1].Month)
	assert.Equal(suite.T(), models.TransactionTypeSale, stats[1].Type)
	assert.Equal(suite.T(), 500.0, stats[1].TotalAmount)
	assert.Equal(suite.T(), int64(2), stats[1].TotalTransactions)
}

func TestTransactionServiceSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
