package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	OrderAwaitingConfirmation = "awaiting_confirmation"
	OrderPending              = "pending"
	OrderComplete             = "complete"
	OrderCancelled            = "cancelled"
)

// Payment statuses, shared by Order.PaymentStatus and Payment.Status.
const (
	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// Payment methods.
const (
	MethodCash         = "cash"
	MethodCard         = "card"
	MethodBankTransfer = "bank_transfer"
	MethodMomo         = "momo"
)

// Order is a point-of-sale order. PointsRedeemed and PointsEarned stay nil
// for guest sales.
type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderNumber     string          `gorm:"uniqueIndex;not null"`
	AccountID       uuid.UUID       `gorm:"type:uuid;not null"`
	CustomerID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status          string          `gorm:"type:varchar(30);not null;index"`
	PaymentStatus   string          `gorm:"type:varchar(20);not null"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	TaxPercent      decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PayableAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PointsRedeemed  *int
	PointsEarned    *int
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Customer *Customer     `gorm:"foreignKey:CustomerID"`
	Details  []OrderDetail `gorm:"foreignKey:OrderID"`
	Payment  *Payment      `gorm:"foreignKey:OrderID"`
}

// OrderDetail is immutable once the order is placed.
type OrderDetail struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity        int             `gorm:"not null;check:chk_order_details_quantity,quantity > 0"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	LineTotal       decimal.Decimal `gorm:"type:decimal(18,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// Payment is one-to-one with its order. TransactionRef is the gateway correlation id.
type Payment struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID        uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	Method         string          `gorm:"type:varchar(20);not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status         string          `gorm:"type:varchar(20);not null"`
	TransactionRef *string         `gorm:"uniqueIndex"`
	PaymentURL     *string
	Notes          string
	PaymentDate    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
