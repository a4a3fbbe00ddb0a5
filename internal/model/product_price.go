package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductPrice is one row of the time-windowed price history. Rows are never
// deleted; the effective price at t is the latest row with ValidFrom <= t.
type ProductPrice struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_product_prices_lookup,priority:1"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CostPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ValidFrom   time.Time       `gorm:"not null;index:idx_product_prices_lookup,priority:2"`
	CreatedDate time.Time       `gorm:"not null;autoCreateTime"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
