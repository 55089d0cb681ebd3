// internal/services/reorder_service.go
package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/stockpilot/inventory-backend/internal/apperrors"
	"github.com/stockpilot/inventory-backend/internal/models"
)

const reorderSalesLookbackMonths = 3

// ProductSignal is the per-candidate snapshot handed to the scorer.
type ProductSignal struct {
	Name            string  `json:"name"`
	SKU             string  `json:"sku"`
	CurrentStock    int     `json:"currentStock"`
	MinStockLevel   int     `json:"minStockLevel"`
	AvgMonthlySales float64 `json:"avgMonthlySales"`
	TotalSold       int     `json:"totalSold"`
	Supplier        string  `json:"supplier"`
	Price           float64 `json:"price"`
}

type ReorderSuggestion struct {
	ProductName       string `json:"productName"`
	CurrentStock      int    `json:"currentStock"`
	SuggestedQuantity int    `json:"suggestedQuantity"`
	Reason            string `json:"reason"`
}

// ReorderScorer is the optional external collaborator. It may fail or
// return garbage; callers must fall back to the rule engine.
type ReorderScorer interface {
	Score(ctx context.Context, signals []ProductSignal) ([]ReorderSuggestion, error)
}

type ReorderService struct {
	db      *gorm.DB
	scorer  ReorderScorer
	timeout time.Duration
}

func NewReorderService(db *gorm.DB, scorer ReorderScorer, timeout time.Duration) *ReorderService {
	return &ReorderService{db: db, scorer: scorer, timeout: timeout}
}

// GetReorderSuggestions selects low-stock candidates, derives their sales
// velocity, and asks the configured scorer for suggestions. Any scorer
// failure degrades silently to the deterministic rule engine; the scorer
// is a refinement, never a dependency for correctness.
func (s *ReorderService) GetReorderSuggestions(ctx context.Context) ([]ReorderSuggestion, error) {
	signals, err := s.collectSignals()
	if err != nil {
		return nil, err
	}
	if len(signals) == 0 {
		return []ReorderSuggestion{}, nil
	}

	if s.scorer != nil {
		scoreCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		suggestions, err := s.scorer.Score(scoreCtx, signals)
		if err == nil && validSuggestions(suggestions) {
			return suggestions, nil
		}
		logrus.WithError(err).Warn("Reorder scorer unavailable, falling back to rule-based suggestions")
	}

	return RuleBasedSuggestions(signals), nil
}

func (s *ReorderService) collectSignals() ([]ProductSignal, error) {
	var candidates []models.Product
	err := s.db.Preload("Supplier").
		Where("is_active = ? AND quantity <= min_stock_level * 2", true).
		Find(&candidates).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(candidates))
	for _, p := range candidates {
		ids = append(ids, p.ID)
	}

	since := time.Now().AddDate(0, -reorderSalesLookbackMonths, 0)

	type soldRow struct {
		ProductID uuid.UUID
		Total     int
	}
	var sold []soldRow
	err = s.db.Model(&models.Transaction{}).
		Select("product_id, COALESCE(SUM(quantity), 0) as total").
		Where("product_id IN ? AND type = ? AND created_at >= ?", ids, models.TransactionTypeSale, since).
		Group("product_id").
		Scan(&sold).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	soldByProduct := make(map[uuid.UUID]int, len(sold))
	for _, r := range sold {
		soldByProduct[r.ProductID] = r.Total
	}

	signals := make([]ProductSignal, 0, len(candidates))
	for _, p := range candidates {
		supplierName := "Unknown"
		if p.Supplier != nil {
			supplierName = p.Supplier.Name
		}

		totalSold := soldByProduct[p.ID]
		signals = append(signals, ProductSignal{
			Name:            p.Name,
			SKU:             p.SKU,
			CurrentStock:    p.Quantity,
			MinStockLevel:   p.MinStockLevel,
			AvgMonthlySales: float64(totalSold) / reorderSalesLookbackMonths,
			TotalSold:       totalSold,
			Supplier:        supplierName,
			Price:           p.Price,
		})
	}

	return signals, nil
}

// RuleBasedSuggestions is the deterministic engine: reorder up to double
// the minimum stock level or two months of average sales, whichever is
// larger.
func RuleBasedSuggestions(signals []ProductSignal) []ReorderSuggestion {
	suggestions := make([]ReorderSuggestion, 0, len(signals))
	for _, sig := range signals {
		if float64(sig.CurrentStock) > float64(sig.MinStockLevel)*1.5 {
			continue
		}

		suggested := sig.MinStockLevel * 2
		if fromSales := int(math.Ceil(sig.AvgMonthlySales * 2)); fromSales > suggested {
			suggested = fromSales
		}

		var reason string
		switch {
		case sig.CurrentStock <= sig.MinStockLevel:
			reason = "Stock below minimum level - urgent reorder needed"
		case sig.AvgMonthlySales > 0:
			reason = fmt.Sprintf("Based on %.1f avg monthly sales", sig.AvgMonthlySales)
		default:
			reason = "Low stock level detected"
		}

		suggestions = append(suggestions, ReorderSuggestion{
			ProductName:       sig.Name,
			CurrentStock:      sig.CurrentStock,
			SuggestedQuantity: suggested,
			Reason:            reason,
		})
	}
	return suggestions
}

// validSuggestions checks the scorer output shape before trusting it.
func validSuggestions(suggestions []ReorderSuggestion) bool {
	if len(suggestions) == 0 {
		return false
	}
	for _, s := range suggestions {
		if s.ProductName == "" || s.SuggestedQuantity < 0 || s.Reason == "" {
			return false
		}
	}
	return true
}
