package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DiscountPercent     = "percent"
	DiscountFixedAmount = "fixed_amount"
)

// Promotion applies to its products while Active and StartDate <= t < EndDate.
type Promotion struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string          `gorm:"not null"`
	DiscountType  string          `gorm:"type:varchar(20);not null"` // percent | fixed_amount
	DiscountValue decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	StartDate     time.Time       `gorm:"not null"`
	EndDate       time.Time       `gorm:"not null"`
	Active        bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Products []Product `gorm:"many2many:promotion_products" json:"-"`
}

// Covers reports whether t falls inside the promotion window.
func (p *Promotion) Covers(t time.Time) bool {
	return !t.Before(p.StartDate) && t.Before(p.EndDate)
}
