// internal/models/transaction.go
package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transaction is one entry in the append-only stock ledger. Rows are
// created through the transaction service only and never updated or
// deleted afterwards.
type Transaction struct {
	BaseModel
	Type          TransactionType   `json:"type" gorm:"type:varchar(20);not null;index"`
	ProductID     uuid.UUID         `json:"product_id" gorm:"type:uuid;not null;index"`
	Quantity      int               `json:"quantity" gorm:"not null"`
	Price         float64           `json:"price" gorm:"type:decimal(10,2);not null"`
	TotalAmount   float64           `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	SupplierID    *uuid.UUID        `json:"supplier_id" gorm:"type:uuid;index"`
	Customer      string            `json:"customer" gorm:"size:100"`
	InvoiceNumber string            `json:"invoice_number" gorm:"size:50"`
	Notes         string            `json:"notes" gorm:"size:300"`
	Status        TransactionStatus `json:"status" gorm:"type:varchar(20);default:'completed';index"`
	CreatedBy     string            `json:"created_by" gorm:"size:100;default:'system'"`

	// Relationships
	Product  *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Supplier *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
}

// BeforeSave recomputes the total so a caller-supplied amount can never
// disagree with quantity x price.
func (t *Transaction) BeforeSave(tx *gorm.DB) error {
	t.TotalAmount = float64(t.Quantity) * t.Price
	return nil
}
