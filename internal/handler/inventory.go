package handler

import (
	"net/http"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/dto"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/middleware"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct{ ledger service.StockLedger }

func NewInventoryHandler(ledger service.StockLedger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

func (h *InventoryHandler) GetStock(c *gin.Context) {
	id, ok := paramID(c, "product_id")
	if !ok {
		return
	}
	resp, err := h.ledger.GetInventory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) ListTransactions(c *gin.Context) {
	var filter dto.StockTransactionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.ledger.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req dto.StockAdjustmentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.ledger.AdjustStock(c.Request.Context(), middleware.AccountID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *InventoryHandler) Reconcile(c *gin.Context) {
	id, ok := paramID(c, "product_id")
	if !ok {
		return
	}
	resp, err := h.ledger.Reconcile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) LowStock(c *gin.Context) {
	resp, err := h.ledger.LowStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
