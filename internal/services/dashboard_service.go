// internal/services/dashboard_service.go
package services

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockpilot/inventory-backend/internal/apperrors"
	"github.com/stockpilot/inventory-backend/internal/models"
)

type DashboardService struct {
	db *gorm.DB
}

type DashboardStats struct {
	TotalProducts       int64   `json:"total_products"`
	TotalSuppliers      int64   `json:"total_suppliers"`
	TotalTransactions   int64   `json:"total_transactions"`
	LowStockCount       int64   `json:"low_stock_count"`
	TotalInventoryValue float64 `json:"total_inventory_value"`
}

type DashboardData struct {
	Stats              DashboardStats       `json:"stats"`
	LowStockProducts   []models.Product     `json:"low_stock_products"`
	RecentTransactions []models.Transaction `json:"recent_transactions"`
	MonthlyTrends      []MonthlyStat        `json:"monthly_trends"`
	TopSellingProducts []TopSeller          `json:"top_selling_products"`
}

type TopSeller struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	TotalSold int64     `json:"total_sold"`
	Revenue   float64   `json:"revenue"`
}

type StockLevelRow struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	SKU           string    `json:"sku"`
	Quantity      int       `json:"quantity"`
	MinStockLevel int       `json:"min_stock_level"`
	Price         float64   `json:"price"`
	Value         float64   `json:"value"`
	Status        string    `json:"status"`
}

type ValueAnalysisRow struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	SKU      string    `json:"sku"`
	Quantity int       `json:"quantity"`
	Price    float64   `json:"price"`
	Value    float64   `json:"value"`
}

type SupplierPerformanceRow struct {
	SupplierID   *uuid.UUID `json:"supplier_id"`
	SupplierName string     `json:"supplier_name"`
	ProductCount int64      `json:"product_count"`
	TotalValue   float64    `json:"total_value"`
	AvgPrice     float64    `json:"avg_price"`
}

type SupplierStatRow struct {
	SupplierID   *uuid.UUID `json:"supplier_id"`
	SupplierName string     `json:"supplier_name"`
	ProductCount int64      `json:"product_count"`
	TotalValue   float64    `json:"total_value"`
}

const (
	ReportStockLevels         = "stock_levels"
	ReportValueAnalysis       = "value_analysis"
	ReportSupplierPerformance = "supplier_performance"
)

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

func (s *DashboardService) GetDashboardStats() (*DashboardData, error) {
	data := &DashboardData{}

	if err := s.db.Model(&models.Product{}).Where("is_active = ?", true).
		Count(&data.Stats.TotalProducts).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	if err := s.db.Model(&models.Supplier{}).Where("is_active = ?", true).
		Count(&data.Stats.TotalSuppliers).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	if err := s.db.Model(&models.Transaction{}).
		Count(&data.Stats.TotalTransactions).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	// Low stock products, most depleted first
	err := s.db.Preload("Supplier").
		Where("is_active = ? AND quantity <= min_stock_level", true).
		Order("quantity ASC").
		Limit(10).
		Find(&data.LowStockProducts).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	data.Stats.LowStockCount = int64(len(data.LowStockProducts))

	var totalValue float64
	err = s.db.Model(&models.Product{}).
		Where("is_active = ?", true).
		Select("COALESCE(SUM(quantity * price), 0)").
		Scan(&totalValue).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	data.Stats.TotalInventoryValue = math.Round(totalValue*100) / 100

	err = s.db.Preload("Product").
		Order("created_at DESC").
		Limit(5).
		Find(&data.RecentTransactions).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	trends, err := s.monthlyTrends(6)
	if err != nil {
		return nil, err
	}
	data.MonthlyTrends = trends

	topSellers, err := s.topSellingProducts(5)
	if err != nil {
		return nil, err
	}
	data.TopSellingProducts = topSellers

	return data, nil
}

// GetInventoryReport selects a per-product or per-supplier projection by
// report type; unrecognized types are a caller error.
func (s *DashboardService) GetInventoryReport(reportType string) (interface{}, error) {
	switch reportType {
	case ReportStockLevels:
		return s.stockLevelsReport()
	case ReportValueAnalysis:
		return s.valueAnalysisReport()
	case ReportSupplierPerformance:
		return s.supplierPerformanceReport()
	default:
		return nil, apperrors.NewValidationFailed("Invalid report type", nil)
	}
}

func (s *DashboardService) GetSupplierStats() ([]SupplierStatRow, error) {
	var rows []SupplierStatRow
	err := s.db.Model(&models.Product{}).
		Select("products.supplier_id, suppliers.name as supplier_name, COUNT(*) as product_count, COALESCE(SUM(products.quantity * products.price), 0) as total_value").
		Joins("LEFT JOIN suppliers ON suppliers.id = products.supplier_id").
		Where("products.is_active = ?", true).
		Group("products.supplier_id, suppliers.name").
		Order("product_count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	for i := range rows {
		if rows[i].SupplierName == "" {
			rows[i].SupplierName = "Unknown"
		}
	}
	return rows, nil
}

func (s *DashboardService) monthlyTrends(months int) ([]MonthlyStat, error) {
	since := time.Now().AddDate(0, -months, 0)

	var transactions []models.Transaction
	err := s.db.Select("type, total_amount, created_at").
		Where("created_at >= ?", since).
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	stats := groupByMonth(transactions)
	sortMonthlyStats(stats, true)
	return stats, nil
}

func (s *DashboardService) topSellingProducts(limit int) ([]TopSeller, error) {
	var sellers []TopSeller
	err := s.db.Model(&models.Transaction{}).
		Select("transactions.product_id, products.name, products.sku, SUM(transactions.quantity) as total_sold, COALESCE(SUM(transactions.total_amount), 0) as revenue").
		Joins("JOIN products ON products.id = transactions.product_id").
		Where("transactions.type = ?", models.TransactionTypeSale).
		Group("transactions.product_id, products.name, products.sku").
		Order("total_sold DESC").
		Limit(limit).
		Scan(&sellers).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return sellers, nil
}

func (s *DashboardService) stockLevelsReport() ([]StockLevelRow, error) {
	var products []models.Product
	err := s.db.Where("is_active = ?", true).
		Order("quantity ASC").
		Find(&products).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	rows := make([]StockLevelRow, 0, len(products))
	for _, p := range products {
		status := "Well Stocked"
		if p.Quantity <= p.MinStockLevel {
			status = "Low Stock"
		} else if p.Quantity <= p.MinStockLevel*2 {
			status = "Medium Stock"
		}

		rows = append(rows, StockLevelRow{
			ID:            p.ID,
			Name:          p.Name,
			SKU:           p.SKU,
			Quantity:      p.Quantity,
			MinStockLevel: p.MinStockLevel,
			Price:         p.Price,
			Value:         p.InventoryValue(),
			Status:        status,
		})
	}
	return rows, nil
}

func (s *DashboardService) valueAnalysisReport() ([]ValueAnalysisRow, error) {
	var rows []ValueAnalysisRow
	err := s.db.Model(&models.Product{}).
		Select("id, name, sku, quantity, price, quantity * price as value").
		Where("is_active = ?", true).
		Order("value DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return rows, nil
}

func (s *DashboardService) supplierPerformanceReport() ([]SupplierPerformanceRow, error) {
	var rows []SupplierPerformanceRow
	err := s.db.Model(&models.Product{}).
		Select("products.supplier_id, suppliers.name as supplier_name, COUNT(*) as product_count, COALESCE(SUM(products.quantity * products.price), 0) as total_value, COALESCE(AVG(products.price), 0) as avg_price").
		Joins("LEFT JOIN suppliers ON suppliers.id = products.supplier_id").
		Where("products.is_active = ?", true).
		Group("products.supplier_id, suppliers.name").
		Order("total_value DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	for i := range rows {
		if rows[i].SupplierName == "" {
			rows[i].SupplierName = "Unknown"
		}
	}
	return rows, nil
}
