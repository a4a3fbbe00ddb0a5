package model

import (
	"time"

	"github.com/google/uuid"
)

// Product is never deleted; retired products are soft-deactivated.
type Product struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code       string     `gorm:"uniqueIndex;not null"`
	Name       string     `gorm:"index;not null"`
	Unit       string     `gorm:"not null;default:'unit'"`
	SupplierID *uuid.UUID `gorm:"type:uuid;index"`
	Active     bool       `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Supplier  *Supplier  `gorm:"foreignKey:SupplierID"`
	Inventory *Inventory `gorm:"foreignKey:ProductID"`
}
