package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase order statuses.
const (
	POPending              = "pending"
	POApproved             = "approved"
	POAwaitingConfirmation = "awaiting_confirmation"
	POReceived             = "received"
	POCancelled            = "cancelled"
)

// PurchaseOrder carries its tax rate explicitly so receive and revert never
// reconstruct it from amounts.
type PurchaseOrder struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderNumber     string          `gorm:"uniqueIndex;not null"`
	SupplierID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID       uuid.UUID       `gorm:"type:uuid;not null"`
	Status          string          `gorm:"type:varchar(30);not null;index"`
	TaxPercent      decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	PlannedSubtotal decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Notes           string
	OrderDate       time.Time `gorm:"not null"`
	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	ReceivedBy      *uuid.UUID `gorm:"type:uuid"`
	ReceivedDate    *time.Time
	EmailSentAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Supplier *Supplier            `gorm:"foreignKey:SupplierID"`
	Details  []PurchaseOrderDetail `gorm:"foreignKey:PurchaseOrderID"`
}

// PurchaseOrderDetail.ReceivedQuantity stays nil until the first receive update.
type PurchaseOrderDetail struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity         int             `gorm:"not null;check:chk_purchase_order_details_quantity,quantity > 0"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ReceivedQuantity *int

	Product *Product `gorm:"foreignKey:ProductID"`
}
