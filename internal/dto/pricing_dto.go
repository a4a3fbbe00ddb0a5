package dto

import "github.com/shopspring/decimal"

type EffectivePriceResponse struct {
	ProductID string          `json:"product_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	CostPrice decimal.Decimal `json:"cost_price"`
	ValidFrom string          `json:"valid_from"`
}

type BestDiscountResponse struct {
	ProductID       string          `json:"product_id"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// BestDiscountQuery is bound from query string of GET /v1/promotions/best-discount.
type BestDiscountQuery struct {
	ProductID string `form:"product_id" validate:"required,uuid"`
	UnitPrice string `form:"unit_price" validate:"required,numeric"`
	AsOf      string `form:"as_of"` // RFC3339; empty = now
}
