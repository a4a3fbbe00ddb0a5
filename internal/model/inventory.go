package model

import (
	"time"

	"github.com/google/uuid"
)

// Inventory is the per-product stock counter. Only the stock ledger writes it.
// Optional thresholds satisfy MinimumStock < ReorderPoint < MaximumStock when set.
type Inventory struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	QuantityInStock int       `gorm:"not null;default:0;check:chk_inventories_quantity_in_stock,quantity_in_stock >= 0"`
	MinimumStock    *int
	ReorderPoint    *int
	MaximumStock    *int
	LastUpdated     time.Time `gorm:"not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (Inventory) TableName() string { return "inventories" }

// IsLow reports whether the stock reached the reorder point, or the minimum
// when no reorder point is configured.
func (i *Inventory) IsLow() bool {
	switch {
	case i.ReorderPoint != nil:
		return i.QuantityInStock <= *i.ReorderPoint
	case i.MinimumStock != nil:
		return i.QuantityInStock <= *i.MinimumStock
	default:
		return false
	}
}
