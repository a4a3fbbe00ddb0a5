package service

import (
	"time"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/dto"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/model"
)

// ── Model → DTO ───────────────────────────────────────────────────────────────

func timeString(t time.Time) string {
	return t.Format(time.RFC3339)
}

func optionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := timeString(*t)
	return &s
}

func inventoryToResponse(inv *model.Inventory) dto.InventoryResponse {
	resp := dto.InventoryResponse{
		ProductID:       inv.ProductID.String(),
		QuantityInStock: inv.QuantityInStock,
		MinimumStock:    inv.MinimumStock,
		ReorderPoint:    inv.ReorderPoint,
		MaximumStock:    inv.MaximumStock,
		LastUpdated:     timeString(inv.LastUpdated),
	}
	if inv.Product != nil {
		resp.ProductName = inv.Product.Name
	}
	return resp
}

func stockTransactionToResponse(t model.StockTransaction) dto.StockTransactionResponse {
	resp := dto.StockTransactionResponse{
		ID:             t.ID.String(),
		ProductID:      t.ProductID.String(),
		Type:           t.Type,
		Quantity:       t.Quantity,
		QuantityChange: t.QuantityChange,
		UnitPrice:      t.UnitPrice,
		ReferenceType:  t.ReferenceType,
		Note:           t.Note,
		CreatedAt:      timeString(t.CreatedAt),
	}
	if t.Product != nil {
		resp.ProductName = t.Product.Name
	}
	if t.AccountID != nil {
		s := t.AccountID.String()
		resp.AccountID = &s
	}
	if t.ReferenceID != nil {
		s := t.ReferenceID.String()
		resp.ReferenceID = &s
	}
	return resp
}

func priceToResponse(p *model.ProductPrice) dto.EffectivePriceResponse {
	return dto.EffectivePriceResponse{
		ProductID: p.ProductID.String(),
		UnitPrice: p.UnitPrice,
		CostPrice: p.CostPrice,
		ValidFrom: timeString(p.ValidFrom),
	}
}

func purchaseOrderToResponse(po *model.PurchaseOrder) *dto.PurchaseOrderResponse {
	resp := &dto.PurchaseOrderResponse{
		ID:              po.ID.String(),
		OrderNumber:     po.OrderNumber,
		SupplierID:      po.SupplierID.String(),
		AccountID:       po.AccountID.String(),
		Status:          po.Status,
		TaxPercent:      po.TaxPercent,
		PlannedSubtotal: po.PlannedSubtotal,
		Subtotal:        po.Subtotal,
		TaxAmount:       po.TaxAmount,
		TotalAmount:     po.TotalAmount,
		Notes:           po.Notes,
		OrderDate:       timeString(po.OrderDate),
		ReceivedDate:    optionalTime(po.ReceivedDate),
		EmailSentAt:     optionalTime(po.EmailSentAt),
		Details:         make([]dto.PurchaseOrderDetailResponse, 0, len(po.Details)),
	}
	if po.Supplier != nil {
		resp.SupplierName = po.Supplier.Name
	}
	for _, d := range po.Details {
		resp.Details = append(resp.Details, dto.PurchaseOrderDetailResponse{
			ID:               d.ID.String(),
			ProductID:        d.ProductID.String(),
			ProductName:      productName(d.Product, d.ProductID),
			Quantity:         d.Quantity,
			UnitPrice:        d.UnitPrice,
			ReceivedQuantity: d.ReceivedQuantity,
		})
	}
	return resp
}

func orderToResponse(o *model.Order) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:              o.ID.String(),
		OrderNumber:     o.OrderNumber,
		AccountID:       o.AccountID.String(),
		CustomerID:      o.CustomerID.String(),
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		DiscountPercent: o.DiscountPercent,
		TaxPercent:      o.TaxPercent,
		Subtotal:        o.Subtotal,
		DiscountAmount:  o.DiscountAmount,
		TaxAmount:       o.TaxAmount,
		TotalAmount:     o.TotalAmount,
		PayableAmount:   o.PayableAmount,
		PointsRedeemed:  o.PointsRedeemed,
		PointsEarned:    o.PointsEarned,
		Notes:           o.Notes,
		Items:           make([]dto.OrderItemResponse, 0, len(o.Details)),
		CreatedAt:       timeString(o.CreatedAt),
	}
	for _, d := range o.Details {
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			ProductID:       d.ProductID.String(),
			ProductName:     productName(d.Product, d.ProductID),
			Quantity:        d.Quantity,
			UnitPrice:       d.UnitPrice,
			DiscountPercent: d.DiscountPercent,
			LineTotal:       d.LineTotal,
		})
	}
	if p := o.Payment; p != nil {
		resp.Payment = &dto.PaymentResponse{
			ID:             p.ID.String(),
			Method:         p.Method,
			Amount:         p.Amount,
			Status:         p.Status,
			TransactionRef: p.TransactionRef,
			PaymentURL:     p.PaymentURL,
			PaymentDate:    optionalTime(p.PaymentDate),
			Notes:          p.Notes,
		}
	}
	return resp
}
