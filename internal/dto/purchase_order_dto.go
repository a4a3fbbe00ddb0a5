package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type PurchaseOrderLineRequest struct {
	ProductID string           `json:"product_id" validate:"required,uuid"`
	Quantity  int              `json:"quantity"   validate:"required,min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"` // nil = current cost price
}

type CreatePurchaseOrderRequest struct {
	SupplierID string                     `json:"supplier_id" validate:"required,uuid"`
	Lines      []PurchaseOrderLineRequest `json:"lines"       validate:"required,min=1,dive"`
	TaxPercent decimal.Decimal            `json:"tax_percent" validate:"min=0,max=100"`
	Notes      string                     `json:"notes"       validate:"max=500"`
}

type ReceivedLineRequest struct {
	DetailID         string `json:"detail_id"         validate:"required,uuid"`
	ReceivedQuantity int    `json:"received_quantity" validate:"min=0"`
}

type UpdateReceivedRequest struct {
	Lines []ReceivedLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ReceivePurchaseOrderRequest confirms receipt. Lines override the recorded
// quantities and are required for lines never recorded.
type ReceivePurchaseOrderRequest struct {
	Lines []ReceivedLineRequest `json:"lines" validate:"omitempty,dive"`
	Notes string                `json:"notes" validate:"max=500"`
}

type PurchaseOrderNoteRequest struct {
	Notes string `json:"notes" validate:"max=500"`
}

type SendPurchaseOrderEmailRequest struct {
	IDs         []string `json:"ids"          validate:"required,min=1,dive,uuid"`
	Subject     string   `json:"subject"      validate:"required,max=200"`
	Body        string   `json:"body"         validate:"required"`
	ForceResend bool     `json:"force_resend"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PurchaseOrderDetailResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	ProductName      string          `json:"product_name"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	ReceivedQuantity *int            `json:"received_quantity"`
}

type PurchaseOrderResponse struct {
	ID              string                        `json:"id"`
	OrderNumber     string                        `json:"order_number"`
	SupplierID      string                        `json:"supplier_id"`
	SupplierName    string                        `json:"supplier_name"`
	AccountID       string                        `json:"account_id"`
	Status          string                        `json:"status"`
	TaxPercent      decimal.Decimal               `json:"tax_percent"`
	PlannedSubtotal decimal.Decimal               `json:"planned_subtotal"`
	Subtotal        decimal.Decimal               `json:"subtotal"`
	TaxAmount       decimal.Decimal               `json:"tax_amount"`
	TotalAmount     decimal.Decimal               `json:"total_amount"`
	Notes           string                        `json:"notes"`
	OrderDate       string                        `json:"order_date"`
	ReceivedDate    *string                       `json:"received_date"`
	EmailSentAt     *string                       `json:"email_sent_at"`
	Details         []PurchaseOrderDetailResponse `json:"details"`
}

type SendPurchaseOrderEmailResponse struct {
	Sent   []string `json:"sent"` // order numbers
	SentAt string   `json:"sent_at"`
}
