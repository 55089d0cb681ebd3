// internal/models/supplier.go
package models

type Supplier struct {
	BaseModel
	Name          string `json:"name" gorm:"size:100;not null;index"`
	ContactPerson string `json:"contact_person" gorm:"size:100"`
	Email         string `json:"email" gorm:"size:255;index"`
	Phone         string `json:"phone" gorm:"size:20"`
	Address       string `json:"address" gorm:"size:300"`
	Website       string `json:"website" gorm:"size:200"`
	TaxID         string `json:"tax_id" gorm:"size:50"`
	PaymentTerms  string `json:"payment_terms" gorm:"size:100"`
	Rating        *int   `json:"rating,omitempty"`
	Notes         string `json:"notes" gorm:"size:500"`
	IsActive      bool   `json:"is_active" gorm:"not null;default:true"`

	// Derived count of active products referencing this supplier
	ProductsCount int64 `json:"products_count" gorm:"-"`

	// Relationships
	Products []Product `json:"products,omitempty" gorm:"foreignKey:SupplierID"`
}
