package handler

import (
	"net/http"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/apierror"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/dto"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/infra"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/middleware"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type OrdersHandler struct{ svc service.OrderService }

func NewOrdersHandler(svc service.OrderService) *OrdersHandler {
	return &OrdersHandler{svc: svc}
}

func (h *OrdersHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateOrder(c.Request.Context(), middleware.AccountID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *OrdersHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Finalize confirms payment for cash, card and bank transfer orders.
func (h *OrdersHandler) Finalize(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.FinalizePayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrdersHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.CancelOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrdersHandler) Hold(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.HoldOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrdersHandler) Complete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.CompleteOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CallbackVerifier authenticates gateway callbacks. *infra.MomoClient implements it.
type CallbackVerifier interface {
	VerifyCallback(cb infra.MomoCallback) error
}

type PaymentsHandler struct {
	svc      service.OrderService
	verifier CallbackVerifier
}

func NewPaymentsHandler(svc service.OrderService, verifier CallbackVerifier) *PaymentsHandler {
	return &PaymentsHandler{svc: svc, verifier: verifier}
}

// Callback receives the MoMo IPN. Only signed callbacks reach the order
// workflow; a zero result code means the customer paid.
func (h *PaymentsHandler) Callback(c *gin.Context) {
	var req dto.PaymentCallbackRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cb := infra.MomoCallback{
		PartnerCode:  req.PartnerCode,
		OrderID:      req.OrderID,
		RequestID:    req.RequestID,
		Amount:       req.Amount,
		OrderInfo:    req.OrderInfo,
		OrderType:    req.OrderType,
		TransID:      req.TransID,
		ResultCode:   req.ResultCode,
		Message:      req.Message,
		PayType:      req.PayType,
		ResponseTime: req.ResponseTime,
		ExtraData:    req.ExtraData,
		Signature:    req.Signature,
	}
	if err := h.verifier.VerifyCallback(cb); err != nil {
		log.Warn().Str("order_id", req.OrderID).Str("ip", c.ClientIP()).Msg("payment callback rejected")
		respondError(c, apierror.Unauthorized("invalid callback signature"))
		return
	}

	if err := h.svc.HandlePaymentResult(c.Request.Context(), req.OrderID, req.ResultCode == 0); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
