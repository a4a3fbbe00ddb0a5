package dto

import "github.com/shopspring/decimal"

// StockAdjustmentRequest is a manual correction or write-off.
type StockAdjustmentRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Delta     int    `json:"delta"      validate:"required"`
	Type      string `json:"type"       validate:"required,oneof=adjustment write_off"`
	Note      string `json:"note"       validate:"required,max=300"`
}

// StockTransactionFilter is bound from query string of GET /v1/inventory/transactions.
type StockTransactionFilter struct {
	ProductID   string `form:"product_id"   validate:"omitempty,uuid"`
	ReferenceID string `form:"reference_id" validate:"omitempty,uuid"`
	Type        string `form:"type"`
	Page        int    `form:"page,default=1"    validate:"min=1"`
	Limit       int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type StockTransactionResponse struct {
	ID             string           `json:"id"`
	ProductID      string           `json:"product_id"`
	ProductName    string           `json:"product_name,omitempty"`
	AccountID      *string          `json:"account_id"`
	Type           string           `json:"type"`
	Quantity       int              `json:"quantity"`
	QuantityChange int              `json:"quantity_change"`
	UnitPrice      *decimal.Decimal `json:"unit_price"`
	ReferenceType  string           `json:"reference_type"`
	ReferenceID    *string          `json:"reference_id"`
	Note           string           `json:"note"`
	CreatedAt      string           `json:"created_at"`
}

type StockTransactionListResponse struct {
	Data  []StockTransactionResponse `json:"data"`
	Total int64                      `json:"total"`
	Page  int                        `json:"page"`
	Limit int                        `json:"limit"`
}

type InventoryResponse struct {
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name,omitempty"`
	QuantityInStock int    `json:"quantity_in_stock"`
	MinimumStock    *int   `json:"minimum_stock"`
	ReorderPoint    *int   `json:"reorder_point"`
	MaximumStock    *int   `json:"maximum_stock"`
	LastUpdated     string `json:"last_updated"`
}

// ReconcileResponse compares the counter with the sum of its ledger.
type ReconcileResponse struct {
	ProductID       string `json:"product_id"`
	QuantityInStock int    `json:"quantity_in_stock"`
	LedgerSum       int    `json:"ledger_sum"`
	Consistent      bool   `json:"consistent"`
}
