package handler

import (
	"net/http"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/dto"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/middleware"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type PurchaseOrdersHandler struct{ svc service.PurchaseOrderService }

func NewPurchaseOrdersHandler(svc service.PurchaseOrderService) *PurchaseOrdersHandler {
	return &PurchaseOrdersHandler{svc: svc}
}

func (h *PurchaseOrdersHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.AccountID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PurchaseOrdersHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PurchaseOrdersHandler) Approve(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.PurchaseOrderNoteRequest
	if !bindOptional(c, &req) {
		return
	}
	resp, err := h.svc.Approve(c.Request.Context(), id, middleware.AccountID(c), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateReceived records counted quantities without touching stock.
func (h *PurchaseOrdersHandler) UpdateReceived(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateReceivedRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateReceived(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PurchaseOrdersHandler) Receive(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ReceivePurchaseOrderRequest
	if !bindOptional(c, &req) {
		return
	}
	resp, err := h.svc.Receive(c.Request.Context(), id, middleware.AccountID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PurchaseOrdersHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.PurchaseOrderNoteRequest
	if !bindOptional(c, &req) {
		return
	}
	resp, err := h.svc.Cancel(c.Request.Context(), id, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PurchaseOrdersHandler) Revert(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.PurchaseOrderNoteRequest
	if !bindOptional(c, &req) {
		return
	}
	resp, err := h.svc.Revert(c.Request.Context(), id, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PurchaseOrdersHandler) SendEmail(c *gin.Context) {
	var req dto.SendPurchaseOrderEmailRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SendEmail(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
