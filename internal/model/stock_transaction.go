package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stock transaction types.
const (
	StockImport       = "import"
	StockSale         = "sale"
	StockReturn       = "return"
	StockCancelReturn = "cancel_return"
	StockReserve      = "reserve"
	StockAdjustment   = "adjustment"
	StockWriteOff     = "write_off"
)

// Reference types attached to ledger entries.
const (
	RefPurchaseOrder = "purchase_order"
	RefOrder         = "order"
	RefManual        = "manual"
)

// StockTransaction is an immutable ledger entry. Quantity is the number of
// units moved; QuantityChange is the signed effect on Inventory.QuantityInStock
// (zero for audit-only entries such as a sale recorded at payment time).
type StockTransaction struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	AccountID      *uuid.UUID       `gorm:"type:uuid"`
	Type           string           `gorm:"type:varchar(20);not null;index"`
	Quantity       int              `gorm:"not null"`
	QuantityChange int              `gorm:"not null"`
	UnitPrice      *decimal.Decimal `gorm:"type:decimal(18,2)"`
	ReferenceType  string           `gorm:"type:varchar(20)"`
	ReferenceID    *uuid.UUID       `gorm:"type:uuid;index"`
	Note           string
	CreatedAt      time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
