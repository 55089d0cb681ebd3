// internal/services/transaction_service.go
package services

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stockpilot/inventory-backend/internal/apperrors"
	"github.com/stockpilot/inventory-backend/internal/models"
	"github.com/stockpilot/inventory-backend/internal/utils"
)

// TransactionService is the stock ledger: it applies purchase and sale
// events as one atomic unit spanning the transactions table and the
// product quantity column.
type TransactionService struct {
	db *gorm.DB

	// Per-product mutexes serialize the check-then-adjust sequence so two
	// concurrent sales cannot both pass the stock check against the same
	// row. The row is additionally locked FOR UPDATE on Postgres.
	productLocks sync.Map
}

type CreateTransactionRequest struct {
	Type          models.TransactionType `json:"type" validate:"required,oneof=purchase sale"`
	ProductID     uuid.UUID              `json:"product_id" validate:"required"`
	Quantity      int                    `json:"quantity" validate:"required,min=1"`
	Price         float64                `json:"price" validate:"gte=0"`
	SupplierID    *uuid.UUID             `json:"supplier_id"`
	Customer      string                 `json:"customer" validate:"max=100"`
	InvoiceNumber string                 `json:"invoice_number" validate:"max=50"`
	Notes         string                 `json:"notes" validate:"max=300"`
}

type TransactionFilter struct {
	utils.PaginationParams
	Type      models.TransactionType
	ProductID *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
}

type TypeSummary struct {
	TotalTransactions int64   `json:"total_transactions"`
	TotalAmount       float64 `json:"total_amount"`
	TotalQuantity     int64   `json:"total_quantity"`
}

type TransactionSummary struct {
	Purchases   TypeSummary `json:"purchases"`
	Sales       TypeSummary `json:"sales"`
	GrossProfit float64     `json:"gross_profit"`
}

type MonthlyStat struct {
	Year              int                    `json:"year"`
	Month             int                    `json:"month"`
	Type              models.TransactionType `json:"type"`
	TotalAmount       float64                `json:"total_amount"`
	TotalTransactions int64                  `json:"total_transactions"`
}

func NewTransactionService(db *gorm.DB) *TransactionService {
	return &TransactionService{db: db}
}

func (s *TransactionService) lockProduct(id uuid.UUID) *sync.Mutex {
	lock, _ := s.productLocks.LoadOrStore(id, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// CreateTransaction applies one ledger event. On success the transaction
// row exists and the product quantity reflects the change; on any failure
// neither is visible.
func (s *TransactionService) CreateTransaction(req *CreateTransactionRequest) (*models.Transaction, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.NewValidationFailed("Invalid input", utils.GetValidationErrors(err))
	}

	lock := s.lockProduct(req.ProductID)
	lock.Lock()
	defer lock.Unlock()

	var created *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		query := tx
		if tx.Dialector.Name() == "postgres" {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var product models.Product
		if err := query.First(&product, "id = ?", req.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("Product")
			}
			return apperrors.NewStorageFailure(err)
		}

		if req.Type == models.TransactionTypeSale && product.Quantity < req.Quantity {
			return apperrors.NewInsufficientStock(product.Quantity, req.Quantity)
		}

		transaction := &models.Transaction{
			Type:          req.Type,
			ProductID:     product.ID,
			Quantity:      req.Quantity,
			Price:         req.Price,
			SupplierID:    req.SupplierID,
			Customer:      req.Customer,
			InvoiceNumber: req.InvoiceNumber,
			Notes:         req.Notes,
			Status:        models.TransactionStatusCompleted,
			CreatedBy:     "system",
		}

		// TotalAmount is recomputed in the model's BeforeSave hook.
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.NewStorageFailure(err)
		}

		delta := req.Quantity
		if req.Type == models.TransactionTypeSale {
			delta = -req.Quantity
		}

		if err := tx.Model(&models.Product{}).
			Where("id = ?", product.ID).
			Update("quantity", gorm.Expr("quantity + ?", delta)).Error; err != nil {
			return apperrors.NewStorageFailure(err)
		}

		created = transaction
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"transaction_id": created.ID,
		"type":           created.Type,
		"product_id":     created.ProductID,
		"quantity":       created.Quantity,
		"total_amount":   created.TotalAmount,
	}).Info("Ledger transaction applied")

	return s.GetTransaction(created.ID)
}

func (s *TransactionService) GetTransactions(filter TransactionFilter) ([]models.Transaction, int64, error) {
	query := s.db.Model(&models.Transaction{}).
		Preload("Product").
		Preload("Supplier")

	if filter.Type == models.TransactionTypePurchase || filter.Type == models.TransactionTypeSale {
		query = query.Where("type = ?", filter.Type)
	}

	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}

	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}

	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewStorageFailure(err)
	}

	var transactions []models.Transaction
	err := utils.ApplyPagination(query, filter.PaginationParams).
		Order("created_at DESC").
		Find(&transactions).Error
	if err != nil {
		return nil, 0, apperrors.NewStorageFailure(err)
	}

	return transactions, total, nil
}

func (s *TransactionService) GetTransaction(id uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	err := s.db.Preload("Product").Preload("Supplier").
		First(&transaction, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Transaction")
		}
		return nil, apperrors.NewStorageFailure(err)
	}
	return &transaction, nil
}

// GetTransactionSummary aggregates totals per type over an optional date
// range. Gross profit is sales revenue minus purchase cost.
func (s *TransactionService) GetTransactionSummary(dateFrom, dateTo *time.Time) (*TransactionSummary, error) {
	type row struct {
		Type              models.TransactionType
		TotalTransactions int64
		TotalAmount       float64
		TotalQuantity     int64
	}

	query := s.db.Model(&models.Transaction{}).
		Select("type, COUNT(*) as total_transactions, COALESCE(SUM(total_amount), 0) as total_amount, COALESCE(SUM(quantity), 0) as total_quantity").
		Group("type")

	if dateFrom != nil {
		query = query.Where("created_at >= ?", *dateFrom)
	}
	if dateTo != nil {
		query = query.Where("created_at <= ?", *dateTo)
	}

	var rows []row
	if err := query.Scan(&rows).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	summary := &TransactionSummary{}
	for _, r := range rows {
		ts := TypeSummary{
			TotalTransactions: r.TotalTransactions,
			TotalAmount:       r.TotalAmount,
			TotalQuantity:     r.TotalQuantity,
		}
		switch r.Type {
		case models.TransactionTypePurchase:
			summary.Purchases = ts
		case models.TransactionTypeSale:
			summary.Sales = ts
		}
	}

	summary.GrossProfit = summary.Sales.TotalAmount - summary.Purchases.TotalAmount
	return summary, nil
}

// GetMonthlyStats groups the ledger by calendar month and type, newest
// first, capped at 24 groups. Bucketing happens in memory so the query
// stays portable across dialects.
func (s *TransactionService) GetMonthlyStats() ([]MonthlyStat, error) {
	var transactions []models.Transaction
	err := s.db.Select("type, total_amount, created_at").
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	stats := groupByMonth(transactions)

	// Newest first
	sortMonthlyStats(stats, false)
	if len(stats) > 24 {
		stats = stats[:24]
	}
	return stats, nil
}

func groupByMonth(transactions []models.Transaction) []MonthlyStat {
	type key struct {
		year  int
		month int
		typ   models.TransactionType
	}

	buckets := make(map[key]*MonthlyStat)
	for _, t := range transactions {
		k := key{t.CreatedAt.Year(), int(t.CreatedAt.Month()), t.Type}
		stat, ok := buckets[k]
		if !ok {
			stat = &MonthlyStat{Year: k.year, Month: k.month, Type: k.typ}
			buckets[k] = stat
		}
		stat.TotalAmount += t.TotalAmount
		stat.TotalTransactions++
	}

	stats := make([]MonthlyStat, 0, len(buckets))
	for _, stat := range buckets {
		stats = append(stats, *stat)
	}
	return stats
}

func sortMonthlyStats(stats []MonthlyStat, ascending bool) {
	sort.Slice(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if !ascending {
			a, b = b, a
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.Type < b.Type
	})
}
