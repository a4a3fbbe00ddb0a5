package handler

import (
	"net/http"
	"time"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/apierror"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/dto"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PricingHandler struct {
	pricing    service.PricingResolver
	promotions service.PromotionResolver
}

func NewPricingHandler(pricing service.PricingResolver, promotions service.PromotionResolver) *PricingHandler {
	return &PricingHandler{pricing: pricing, promotions: promotions}
}

// asOf reads the optional as_of query parameter; empty means now.
func asOf(c *gin.Context, raw string) (time.Time, bool) {
	if raw == "" {
		return time.Now(), true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("as_of must be RFC3339"))
		return time.Time{}, false
	}
	return t, true
}

func (h *PricingHandler) Effective(c *gin.Context) {
	id, ok := paramID(c, "product_id")
	if !ok {
		return
	}
	at, ok := asOf(c, c.Query("as_of"))
	if !ok {
		return
	}
	resp, err := h.pricing.GetEffectivePrice(c.Request.Context(), id, at)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PricingHandler) History(c *gin.Context) {
	id, ok := paramID(c, "product_id")
	if !ok {
		return
	}
	resp, err := h.pricing.History(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PricingHandler) BestDiscount(c *gin.Context) {
	var q dto.BestDiscountQuery
	if !bindQuery(c, &q) {
		return
	}
	at, ok := asOf(c, q.AsOf)
	if !ok {
		return
	}
	price, err := decimal.NewFromString(q.UnitPrice)
	if err != nil || price.IsNegative() {
		c.JSON(http.StatusBadRequest, apierror.New("unit_price must be a non-negative number"))
		return
	}
	productID := uuid.MustParse(q.ProductID)

	pct, err := h.promotions.BestDiscountPercent(c.Request.Context(), productID, price, at)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BestDiscountResponse{ProductID: q.ProductID, UnitPrice: price, DiscountPercent: pct})
}
