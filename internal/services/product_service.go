// internal/services/product_service.go
package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockpilot/inventory-backend/internal/apperrors"
	"github.com/stockpilot/inventory-backend/internal/models"
	"github.com/stockpilot/inventory-backend/internal/utils"
)

type ProductService struct {
	db *gorm.DB
}

type ProductRequest struct {
	Name          string     `json:"name" validate:"required,max=100"`
	SKU           string     `json:"sku" validate:"required,max=50"`
	Description   string     `json:"description" validate:"max=500"`
	Price         float64    `json:"price" validate:"gte=0"`
	Quantity      int        `json:"quantity" validate:"gte=0"`
	MinStockLevel *int       `json:"min_stock_level" validate:"omitempty,gte=0"`
	SupplierID    *uuid.UUID `json:"supplier_id"`
	Category      string     `json:"category" validate:"max=50"`
}

type ProductSearchParams struct {
	Search      string
	SupplierID  *uuid.UUID
	Category    string
	StockStatus models.StockStatus
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) GetProducts(params ProductSearchParams) ([]models.Product, error) {
	query := s.db.Model(&models.Product{}).
		Preload("Supplier").
		Where("is_active = ?", true)

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(description) LIKE ?",
			searchTerm, searchTerm, searchTerm,
		)
	}

	if params.SupplierID != nil {
		query = query.Where("supplier_id = ?", *params.SupplierID)
	}

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	var products []models.Product
	if err := query.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	// Stock status is derived, not stored, so this filter runs in memory
	// after the query.
	if params.StockStatus != "" {
		filtered := make([]models.Product, 0, len(products))
		for _, p := range products {
			if p.StockStatus == params.StockStatus {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	return products, nil
}

func (s *ProductService) GetProduct(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Supplier").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Product")
		}
		return nil, apperrors.NewStorageFailure(err)
	}
	return &product, nil
}

func (s *ProductService) CreateProduct(req *ProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.NewValidationFailed("Invalid input", utils.GetValidationErrors(err))
	}

	sku := strings.ToUpper(strings.TrimSpace(req.SKU))

	// SKU uniqueness is global, inactive products included.
	var count int64
	if err := s.db.Model(&models.Product{}).Where("UPPER(sku) = ?", sku).Count(&count).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	if count > 0 {
		return nil, apperrors.NewConflict("SKU already exists")
	}

	minStock := 10
	if req.MinStockLevel != nil {
		minStock = *req.MinStockLevel
	}

	product := &models.Product{
		Name:          strings.TrimSpace(req.Name),
		SKU:           sku,
		Description:   strings.TrimSpace(req.Description),
		Price:         req.Price,
		Quantity:      req.Quantity,
		MinStockLevel: minStock,
		SupplierID:    req.SupplierID,
		Category:      strings.TrimSpace(req.Category),
		IsActive:      true,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	return s.GetProduct(product.ID)
}

func (s *ProductService) UpdateProduct(id uuid.UUID, req *ProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.NewValidationFailed("Invalid input", utils.GetValidationErrors(err))
	}

	var existing models.Product
	if err := s.db.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Product")
		}
		return nil, apperrors.NewStorageFailure(err)
	}

	sku := strings.ToUpper(strings.TrimSpace(req.SKU))
	if sku != existing.SKU {
		var count int64
		if err := s.db.Model(&models.Product{}).
			Where("UPPER(sku) = ? AND id <> ?", sku, id).
			Count(&count).Error; err != nil {
			return nil, apperrors.NewStorageFailure(err)
		}
		if count > 0 {
			return nil, apperrors.NewConflict("SKU already exists")
		}
	}

	minStock := existing.MinStockLevel
	if req.MinStockLevel != nil {
		minStock = *req.MinStockLevel
	}

	updates := map[string]interface{}{
		"name":            strings.TrimSpace(req.Name),
		"sku":             sku,
		"description":     strings.TrimSpace(req.Description),
		"price":           req.Price,
		"quantity":        req.Quantity,
		"min_stock_level": minStock,
		"supplier_id":     req.SupplierID,
		"category":        strings.TrimSpace(req.Category),
	}

	if err := s.db.Model(&existing).Updates(updates).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	return s.GetProduct(id)
}

// DeleteProduct flips the active flag; rows are never physically removed.
func (s *ProductService) DeleteProduct(id uuid.UUID) error {
	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("Product")
		}
		return apperrors.NewStorageFailure(err)
	}

	if err := s.db.Model(&product).Update("is_active", false).Error; err != nil {
		return apperrors.NewStorageFailure(err)
	}

	return nil
}

func (s *ProductService) GetLowStockProducts() ([]models.Product, error) {
	var products []models.Product
	err := s.db.Preload("Supplier").
		Where("is_active = ? AND quantity <= min_stock_level", true).
		Order("quantity ASC").
		Find(&products).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return products, nil
}
