// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	BaseModel
	Name          string     `json:"name" gorm:"size:100;not null"`
	SKU           string     `json:"sku" gorm:"size:50;not null;uniqueIndex"`
	Description   string     `json:"description" gorm:"size:500"`
	Price         float64    `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity      int        `json:"quantity" gorm:"not null;default:0"`
	MinStockLevel int        `json:"min_stock_level" gorm:"not null;default:10"`
	SupplierID    *uuid.UUID `json:"supplier_id" gorm:"type:uuid;index"`
	Category      string     `json:"category" gorm:"size:50;index"`
	IsActive      bool       `json:"is_active" gorm:"not null;default:true"`

	// Derived, never stored
	StockStatus StockStatus `json:"stock_status" gorm:"-"`

	// Relationships
	Supplier     *Supplier     `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	Transactions []Transaction `json:"transactions,omitempty" gorm:"foreignKey:ProductID"`
}

// ComputeStockStatus classifies on-hand quantity against the minimum
// stock level. Pure function of (quantity, min_stock_level).
func (p *Product) ComputeStockStatus() StockStatus {
	switch {
	case p.Quantity == 0:
		return StockStatusOut
	case p.Quantity <= p.MinStockLevel:
		return StockStatusLow
	case p.Quantity <= p.MinStockLevel*2:
		return StockStatusMedium
	default:
		return StockStatusIn
	}
}

// InventoryValue is the on-hand quantity valued at the current price.
func (p *Product) InventoryValue() float64 {
	return float64(p.Quantity) * p.Price
}

func (p *Product) AfterFind(tx *gorm.DB) error {
	p.StockStatus = p.ComputeStockStatus()
	return nil
}
