package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OrderItemRequest struct {
	ProductID       string           `json:"product_id"       validate:"required,uuid"`
	Quantity        int              `json:"quantity"         validate:"required,min=1"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`       // nil = effective price
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"` // nil = best promotion
}

type CreateOrderRequest struct {
	CustomerPhone   string             `json:"customer_phone"   validate:"omitempty,max=20"`
	Items           []OrderItemRequest `json:"items"            validate:"required,min=1,dive"`
	DiscountPercent decimal.Decimal    `json:"discount_percent" validate:"min=0,max=100"`
	TaxPercent      decimal.Decimal    `json:"tax_percent"      validate:"min=0,max=100"`
	PointsToRedeem  int                `json:"points_to_redeem" validate:"min=0"`
	PaymentMethod   string             `json:"payment_method"   validate:"required,oneof=cash card bank_transfer momo"`
	Notes           string             `json:"notes"            validate:"max=500"`
}

// PaymentCallbackRequest is the MoMo IPN body.
type PaymentCallbackRequest struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"      validate:"required"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	OrderInfo    string `json:"orderInfo"`
	OrderType    string `json:"orderType"`
	TransID      int64  `json:"transId"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	PayType      string `json:"payType"`
	ResponseTime int64  `json:"responseTime"`
	ExtraData    string `json:"extraData"`
	Signature    string `json:"signature"    validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OrderItemResponse struct {
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

type PaymentResponse struct {
	ID             string          `json:"id"`
	Method         string          `json:"method"`
	Amount         decimal.Decimal `json:"amount"`
	Status         string          `json:"status"`
	TransactionRef *string         `json:"transaction_ref"`
	PaymentURL     *string         `json:"payment_url"`
	PaymentDate    *string         `json:"payment_date"`
	Notes          string          `json:"notes,omitempty"`
}

type OrderResponse struct {
	ID              string              `json:"id"`
	OrderNumber     string              `json:"order_number"`
	AccountID       string              `json:"account_id"`
	CustomerID      string              `json:"customer_id"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"payment_status"`
	DiscountPercent decimal.Decimal     `json:"discount_percent"`
	TaxPercent      decimal.Decimal     `json:"tax_percent"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	DiscountAmount  decimal.Decimal     `json:"discount_amount"`
	TaxAmount       decimal.Decimal     `json:"tax_amount"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	PayableAmount   decimal.Decimal     `json:"payable_amount"`
	PointsRedeemed  *int                `json:"points_redeemed"`
	PointsEarned    *int                `json:"points_earned"`
	Notes           string              `json:"notes"`
	Items           []OrderItemResponse `json:"items"`
	Payment         *PaymentResponse    `json:"payment"`
	CreatedAt       string              `json:"created_at"`
}
