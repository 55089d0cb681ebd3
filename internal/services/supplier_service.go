// internal/services/supplier_service.go
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

type SupplierService struct {
	db *gorm.DB
}

type SupplierRequest struct {
	Name          string `json:"name" validate:"required,max=100"`
	ContactPerson string `json:"contact_person" validate:"max=100"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone" validate:"max=20"`
	Address       string `json:"address" validate:"max=300"`
	Website       string `json:"website" validate:"max=200"`
	TaxID         string `json:"tax_id" validate:"max=50"`
	PaymentTerms  string `json:"payment_terms" validate:"max=100"`
	Rating        *int   `json:"rating" validate:"omitempty,min=1,max=5"`
	Notes         string `json:"notes" validate:"max=500"`
}

func NewSupplierService(db *gorm.DB) *SupplierService {
	return &SupplierService{db: db}
}

func (s *SupplierService) GetSuppliers(search string) ([]models.Supplier, error) {
	query := s.db.Model(&models.Supplier{}).Where("is_active = ?", true)

	if search != "" {
		searchTerm := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(contact_person) LIKE ? OR LOWER(email) LIKE ?",
			searchTerm, searchTerm, searchTerm,
		)
	}

	var suppliers []models.Supplier
	if err := query.Order("created_at DESC").Find(&suppliers).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	counts, err := s.activeProductCounts()
	if err != nil {
		return nil, err
	}
	for i := range suppliers {
		suppliers[i].ProductsCount = counts[suppliers[i].ID]
	}

	return suppliers, nil
}

func (s *SupplierService) GetSupplier(id uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := s.db.First(&supplier, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Supplier")
		}
		return nil, apperrors.NewStorageFailure(err)
	}

	var products []models.Product
	if err := s.db.Where("supplier_id = ? AND is_active = ?", id, true).
		Find(&products).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	supplier.Products = products
	supplier.ProductsCount = int64(len(products))

	return &supplier, nil
}

func (s *SupplierService) CreateSupplier(req *SupplierRequest) (*models.Supplier, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.NewValidationFailed("Invalid input", utils.GetValidationErrors(err))
	}

	name := strings.TrimSpace(req.Name)
	if err := s.checkNameConflict(name, uuid.Nil); err != nil {
		return nil, err
	}

	supplier := &models.Supplier{
		Name:          name,
		ContactPerson: strings.TrimSpace(req.ContactPerson),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:         strings.TrimSpace(req.Phone),
		Address:       strings.TrimSpace(req.Address),
		Website:       strings.TrimSpace(req.Website),
		TaxID:         strings.TrimSpace(req.TaxID),
		PaymentTerms:  strings.TrimSpace(req.PaymentTerms),
		Rating:        req.Rating,
		Notes:         strings.TrimSpace(req.Notes),
		IsActive:      true,
	}

	if err := s.db.Create(supplier).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	supplier.ProductsCount = 0
	return supplier, nil
}

func (s *SupplierService) UpdateSupplier(id uuid.UUID, req *SupplierRequest) (*models.Supplier, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.NewValidationFailed("Invalid input", utils.GetValidationErrors(err))
	}

	var existing models.Supplier
	if err := s.db.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Supplier")
		}
		return nil, apperrors.NewStorageFailure(err)
	}

	name := strings.TrimSpace(req.Name)
	if !strings.EqualFold(name, existing.Name) {
		if err := s.checkNameConflict(name, id); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{
		"name":           name,
		"contact_person": strings.TrimSpace(req.ContactPerson),
		"email":          strings.ToLower(strings.TrimSpace(req.Email)),
		"phone":          strings.TrimSpace(req.Phone),
		"address":        strings.TrimSpace(req.Address),
		"website":        strings.TrimSpace(req.Website),
		"tax_id":         strings.TrimSpace(req.TaxID),
		"payment_terms":  strings.TrimSpace(req.PaymentTerms),
		"rating":         req.Rating,
		"notes":          strings.TrimSpace(req.Notes),
	}

	if err := s.db.Model(&existing).Updates(updates).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	var count int64
	if err := s.db.Model(&models.Product{}).
		Where("supplier_id = ? AND is_active = ?", id, true).
		Count(&count).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	existing.ProductsCount = count

	return &existing, nil
}

// DeleteSupplier soft-deletes, refusing while any active product still
// references the supplier.
func (s *SupplierService) DeleteSupplier(id uuid.UUID) error {
	var supplier models.Supplier
	if err := s.db.First(&supplier, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("Supplier")
		}
		return apperrors.NewStorageFailure(err)
	}

	var count int64
	if err := s.db.Model(&models.Product{}).
		Where("supplier_id = ? AND is_active = ?", id, true).
		Count(&count).Error; err != nil {
		return apperrors.NewStorageFailure(err)
	}
	if count > 0 {
		return apperrors.NewConflict("Cannot delete supplier with associated products. Please remove or reassign products first.")
	}

	if err := s.db.Model(&supplier).Update("is_active", false).Error; err != nil {
		return apperrors.NewStorageFailure(err)
	}

	return nil
}

// Name uniqueness is scoped to active suppliers and case-insensitive.
func (s *SupplierService) checkNameConflict(name string, excludeID uuid.UUID) error {
	query := s.db.Model(&models.Supplier{}).
		Where("LOWER(name) = ? AND is_active = ?", strings.ToLower(name), true)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return apperrors.NewStorageFailure(err)
	}
	if count > 0 {
		return apperrors.NewConflict("Supplier with this name already exists")
	}
	return nil
}

func (s *SupplierService) activeProductCounts() (map[uuid.UUID]int64, error) {
	type row struct {
		SupplierID uuid.UUID
		Count      int64
	}

	var rows []row
	err := s.db.Model(&models.Product{}).
		Select("supplier_id, COUNT(*) as count").
		Where("supplier_id IS NOT NULL AND is_active = ?", true).
		Group("supplier_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		counts[r.SupplierID] = r.Count
	}
	return counts, nil
}
