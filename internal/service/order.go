package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/apierror"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/dto"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/infra"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/model"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultPointUnit = 500

type OrderService interface {
	CreateOrder(ctx context.Context, accountID uuid.UUID, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	// FinalizePayment is idempotent: a paid order is returned unchanged.
	FinalizePayment(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	FinalizePaymentByReference(ctx context.Context, correlationID string) (*dto.OrderResponse, error)
	CancelOrder(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	CancelOrderByReference(ctx context.Context, correlationID string) (*dto.OrderResponse, error)
	HoldOrder(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	CompleteOrder(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	HandlePaymentResult(ctx context.Context, correlationID string, succeeded bool) error
}

// OrderDeps groups the collaborators of the order workflow. Gateway may be
// nil; PointUnit defaults to 500.
type OrderDeps struct {
	Orders     repository.OrderRepository
	Customers  repository.CustomerRepository
	Products   repository.ProductRepository
	Ledger     StockLedger
	Pricing    PricingResolver
	Promotions PromotionResolver
	Gateway    PaymentGateway
	PointUnit  int
}

type orderService struct {
	OrderDeps
}

func NewOrderService(deps OrderDeps) OrderService {
	if deps.PointUnit <= 0 {
		deps.PointUnit = defaultPointUnit
	}
	return &orderService{OrderDeps: deps}
}

type resolvedLine struct {
	product  *model.Product
	quantity int
	price    decimal.Decimal
	discount decimal.Decimal
	total    decimal.Decimal
}

// ── CreateOrder ───────────────────────────────────────────────────────────────
//   1. resolve customer (phone or guest)
//   2. per line: product, price (request or effective), discount (request or best promotion)
//   3. stock pre-check per product
//   4. TX: order number, reserve stock in product id order, points under customer lock, insert
//   5. after commit: payment intent for wallet payments (failure logged only)

func (s *orderService) CreateOrder(ctx context.Context, accountID uuid.UUID, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if !validPercent(req.DiscountPercent) {
		return nil, apierror.InvalidArgument("bill discount must be between 0 and 100")
	}
	if !validPercent(req.TaxPercent) {
		return nil, apierror.InvalidArgument("tax percent must be between 0 and 100")
	}
	if req.PointsToRedeem < 0 {
		return nil, apierror.InvalidArgument("points to redeem must not be negative")
	}
	switch req.PaymentMethod {
	case model.MethodCash, model.MethodCard, model.MethodBankTransfer, model.MethodMomo:
	default:
		return nil, apierror.InvalidArgument("unsupported payment method %q", req.PaymentMethod)
	}
	if len(req.Items) == 0 {
		return nil, apierror.InvalidArgument("an order needs at least one item")
	}

	customerID := model.GuestCustomerID
	if phone := strings.TrimSpace(req.CustomerPhone); phone != "" {
		c, err := s.Customers.FindByPhone(ctx, phone)
		if repository.IsNotFound(err) {
			return nil, apierror.CustomerNotFound(phone)
		}
		if err != nil {
			return nil, err
		}
		customerID = c.ID
	}
	guest := customerID == model.GuestCustomerID

	now := time.Now()
	lines, err := s.resolveLines(ctx, req.Items, now)
	if err != nil {
		return nil, err
	}
	if err := s.checkStock(ctx, lines); err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.total)
	}
	discountAmount := percentOf(subtotal, req.DiscountPercent)
	taxAmount := percentOf(subtotal.Sub(discountAmount), req.TaxPercent)
	total := subtotal.Sub(discountAmount).Add(taxAmount)

	sorted := make([]resolvedLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].product.ID.String() < sorted[j].product.ID.String()
	})

	orderID := uuid.New()
	var order *model.Order
	err = runTx(ctx, s.Orders.DB(), func(tx *gorm.DB) error {
		for _, l := range sorted {
			price := l.price
			if _, err := s.Ledger.Adjust(ctx, tx, AdjustInput{
				ProductID:     l.product.ID,
				ProductName:   l.product.Name,
				Quantity:      -l.quantity,
				Type:          model.StockReserve,
				ActorID:       &accountID,
				ReferenceType: model.RefOrder,
				ReferenceID:   &orderID,
				UnitPrice:     &price,
				Note:          "Order reservation",
			}); err != nil {
				return err
			}
		}

		number, err := s.Orders.NextOrderNumber(ctx, tx, now)
		if err != nil {
			return err
		}

		order = &model.Order{
			ID:              orderID,
			OrderNumber:     number,
			AccountID:       accountID,
			CustomerID:      customerID,
			Status:          model.OrderAwaitingConfirmation,
			PaymentStatus:   model.PaymentUnpaid,
			DiscountPercent: req.DiscountPercent,
			TaxPercent:      req.TaxPercent,
			Subtotal:        subtotal,
			DiscountAmount:  discountAmount,
			TaxAmount:       taxAmount,
			TotalAmount:     total,
			PayableAmount:   total,
			Notes:           req.Notes,
			CreatedAt:       now,
		}
		if !guest {
			if err := s.applyPoints(ctx, tx, order, req.PointsToRedeem); err != nil {
				return err
			}
		}

		for _, l := range lines {
			order.Details = append(order.Details, model.OrderDetail{
				OrderID:         orderID,
				ProductID:       l.product.ID,
				Quantity:        l.quantity,
				UnitPrice:       l.price,
				DiscountPercent: l.discount,
				LineTotal:       l.total,
				Product:         l.product,
			})
		}
		order.Payment = &model.Payment{
			OrderID: orderID,
			Method:  req.PaymentMethod,
			Amount:  order.PayableAmount,
			Status:  model.PaymentUnpaid,
		}
		return s.Orders.CreateTx(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("order_number", order.OrderNumber).Str("payable", order.PayableAmount.String()).Msg("order created")

	if req.PaymentMethod == model.MethodMomo {
		s.requestPaymentIntent(ctx, order)
	}
	return orderToResponse(order), nil
}

func (s *orderService) resolveLines(ctx context.Context, items []dto.OrderItemRequest, now time.Time) ([]resolvedLine, error) {
	lines := make([]resolvedLine, 0, len(items))
	for _, item := range items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, apierror.InvalidArgument("invalid product_id %q", item.ProductID)
		}
		if item.Quantity <= 0 {
			return nil, apierror.InvalidArgument("quantity for product %s must be positive", productID)
		}
		p, err := s.Products.FindByID(ctx, productID)
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("product", productID)
		}
		if err != nil {
			return nil, err
		}
		if !p.Active {
			return nil, apierror.InvalidArgument("product %s is inactive", p.Name)
		}

		var price decimal.Decimal
		if item.UnitPrice != nil {
			price = *item.UnitPrice
		} else {
			current, err := s.Pricing.EffectivePrice(ctx, productID, now)
			if err != nil {
				return nil, err
			}
			price = current.UnitPrice
		}
		if price.IsNegative() {
			return nil, apierror.InvalidArgument("unit price for %s must not be negative", p.Name)
		}
		price = money(price)

		var discount decimal.Decimal
		if item.DiscountPercent != nil {
			discount = *item.DiscountPercent
			if !validPercent(discount) {
				return nil, apierror.InvalidArgument("discount for %s must be between 0 and 100", p.Name)
			}
		} else if s.Promotions != nil {
			discount, err = s.Promotions.BestDiscountPercent(ctx, productID, price, now)
			if err != nil {
				return nil, fmt.Errorf("resolve promotion for %s: %w", p.Name, err)
			}
		}

		lines = append(lines, resolvedLine{
			product:  p,
			quantity: item.Quantity,
			price:    price,
			discount: discount,
			total:    lineTotal(price, item.Quantity, discount),
		})
	}
	return lines, nil
}

// checkStock fails fast before the transaction; Adjust enforces the same
// bound again under the row lock.
func (s *orderService) checkStock(ctx context.Context, lines []resolvedLine) error {
	wanted := make(map[uuid.UUID]int)
	var order []*model.Product
	for _, l := range lines {
		if _, ok := wanted[l.product.ID]; !ok {
			order = append(order, l.product)
		}
		wanted[l.product.ID] += l.quantity
	}
	for _, p := range order {
		available, err := s.Ledger.Available(ctx, p.ID)
		if err != nil {
			return err
		}
		if available < wanted[p.ID] {
			return apierror.InsufficientStock(p.Name, available, wanted[p.ID])
		}
	}
	return nil
}

// applyPoints redeems and earns loyalty points under the customer row lock.
func (s *orderService) applyPoints(ctx context.Context, tx *gorm.DB, order *model.Order, requested int) error {
	c, err := s.Customers.LockByIDTx(ctx, tx, order.CustomerID)
	if repository.IsNotFound(err) {
		return apierror.NotFound("customer", order.CustomerID)
	}
	if err != nil {
		return err
	}

	redeemed := minInt(requested, c.LoyaltyPoints, int(order.TotalAmount.Floor().IntPart()))
	if redeemed < 0 {
		redeemed = 0
	}
	payable := order.TotalAmount.Sub(decimal.NewFromInt(int64(redeemed)))
	earned := int(payable.Div(decimal.NewFromInt(int64(s.PointUnit))).Floor().IntPart())

	balance := c.LoyaltyPoints - redeemed + earned
	if balance < 0 {
		balance = 0
	}
	if err := s.Customers.UpdatePointsTx(ctx, tx, c.ID, balance); err != nil {
		return err
	}

	order.PayableAmount = payable
	order.PointsRedeemed = &redeemed
	order.PointsEarned = &earned
	return nil
}

func minInt(first int, rest ...int) int {
	m := first
	for _, v := range rest {
		if v < m {
			m = v
		}
	}
	return m
}

func (s *orderService) requestPaymentIntent(ctx context.Context, order *model.Order) {
	if s.Gateway == nil {
		log.Warn().Str("order_number", order.OrderNumber).Msg("payment gateway not configured, skipping intent")
		return
	}
	intent, err := s.Gateway.CreatePaymentIntent(ctx, infra.PaymentIntentRequest{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Amount:      order.PayableAmount,
	})
	if err != nil {
		log.Warn().Err(err).Str("order_number", order.OrderNumber).Msg("payment intent failed")
		return
	}
	if err := s.Orders.SetPaymentIntent(ctx, order.Payment.ID, intent.CorrelationID, intent.RedirectURL); err != nil {
		log.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to store payment intent")
		return
	}
	order.Payment.TransactionRef = &intent.CorrelationID
	order.Payment.PaymentURL = &intent.RedirectURL
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	o, err := s.Orders.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, apierror.NotFound("order", id)
	}
	if err != nil {
		return nil, err
	}
	return orderToResponse(o), nil
}

// lockOrder wraps LockByIDTx with the NotFound mapping.
func (s *orderService) lockOrder(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	o, err := s.Orders.LockByIDTx(ctx, tx, id)
	if repository.IsNotFound(err) {
		return nil, apierror.NotFound("order", id)
	}
	return o, err
}

// ── FinalizePayment ───────────────────────────────────────────────────────────
// Stock already left at creation; the sale entries written here are the
// audit record and do not move the counter.

func (s *orderService) FinalizePayment(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	alreadyPaid := false
	err := runTx(ctx, s.Orders.DB(), func(tx *gorm.DB) error {
		o, err := s.lockOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if o.PaymentStatus == model.PaymentPaid {
			alreadyPaid = true
			return nil
		}
		if o.Status == model.OrderCancelled {
			return apierror.InvalidStateTransition(o.Status, model.OrderComplete)
		}

		now := time.Now()
		o.Status = model.OrderComplete
		o.PaymentStatus = model.PaymentPaid
		o.Payment.Status = model.PaymentPaid
		o.Payment.PaymentDate = &now
		if err := s.Orders.UpdateStatusTx(ctx, tx, o); err != nil {
			return err
		}
		if err := s.Orders.UpdatePaymentTx(ctx, tx, o.Payment); err != nil {
			return err
		}

		for _, d := range o.Details {
			price := d.UnitPrice
			if _, err := s.Ledger.Record(ctx, tx, AdjustInput{
				ProductID:     d.ProductID,
				ProductName:   productName(d.Product, d.ProductID),
				Quantity:      d.Quantity,
				Type:          model.StockSale,
				ActorID:       &o.AccountID,
				ReferenceType: model.RefOrder,
				ReferenceID:   &o.ID,
				UnitPrice:     &price,
				Note:          "Sold on " + o.OrderNumber,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if alreadyPaid {
		log.Debug().Str("order_id", id.String()).Msg("order already paid, finalize skipped")
	} else {
		log.Info().Str("order_id", id.String()).Msg("order paid")
	}
	return s.GetOrder(ctx, id)
}

func (s *orderService) FinalizePaymentByReference(ctx context.Context, correlationID string) (*dto.OrderResponse, error) {
	p, err := s.paymentByReference(ctx, correlationID)
	if err != nil {
		return nil, err
	}
	return s.FinalizePayment(ctx, p.OrderID)
}

func (s *orderService) paymentByReference(ctx context.Context, correlationID string) (*model.Payment, error) {
	p, err := s.Orders.FindPaymentByReference(ctx, correlationID)
	if repository.IsNotFound(err) {
		return nil, apierror.NotFound("payment", correlationID)
	}
	return p, err
}

// ── CancelOrder ───────────────────────────────────────────────────────────────
//   unpaid: cancel_return per line, points restored (earned back out, redeemed back in)
//   paid:   return per line, earned points reversed, payment refunded

func (s *orderService) CancelOrder(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	if err := s.cancel(ctx, id, false); err != nil {
		return nil, err
	}
	log.Info().Str("order_id", id.String()).Msg("order cancelled")
	return s.GetOrder(ctx, id)
}

// CancelOrderByReference handles a failed gateway payment. Duplicate
// failure callbacks and callbacks for paid orders are ignored.
func (s *orderService) CancelOrderByReference(ctx context.Context, correlationID string) (*dto.OrderResponse, error) {
	p, err := s.paymentByReference(ctx, correlationID)
	if err != nil {
		return nil, err
	}
	if err := s.cancel(ctx, p.OrderID, true); err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, p.OrderID)
}

func (s *orderService) cancel(ctx context.Context, id uuid.UUID, gatewayFailed bool) error {
	return runTx(ctx, s.Orders.DB(), func(tx *gorm.DB) error {
		o, err := s.lockOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if gatewayFailed && (o.Status == model.OrderCancelled || o.PaymentStatus == model.PaymentPaid) {
			log.Warn().Str("order_number", o.OrderNumber).Str("status", o.Status).Msg("payment failure callback ignored")
			return nil
		}
		if o.Status == model.OrderCancelled {
			return apierror.InvalidStateTransition(o.Status, model.OrderCancelled)
		}

		paid := o.PaymentStatus == model.PaymentPaid
		entryType := model.StockCancelReturn
		if paid {
			entryType = model.StockReturn
		}

		details := make([]model.OrderDetail, len(o.Details))
		copy(details, o.Details)
		sort.SliceStable(details, func(i, j int) bool {
			return details[i].ProductID.String() < details[j].ProductID.String()
		})
		for _, d := range details {
			price := d.UnitPrice
			if _, err := s.Ledger.Adjust(ctx, tx, AdjustInput{
				ProductID:     d.ProductID,
				ProductName:   productName(d.Product, d.ProductID),
				Quantity:      d.Quantity,
				Type:          entryType,
				ActorID:       &o.AccountID,
				ReferenceType: model.RefOrder,
				ReferenceID:   &o.ID,
				UnitPrice:     &price,
				Note:          "Cancelled " + o.OrderNumber,
			}); err != nil {
				return err
			}
		}

		if o.CustomerID != model.GuestCustomerID {
			if err := s.reversePoints(ctx, tx, o, paid); err != nil {
				return err
			}
		}

		o.Status = model.OrderCancelled
		switch {
		case paid:
			o.PaymentStatus = model.PaymentRefunded
			o.Payment.Status = model.PaymentRefunded
		case gatewayFailed:
			o.PaymentStatus = model.PaymentFailed
			o.Payment.Status = model.PaymentFailed
		}
		if err := s.Orders.UpdateStatusTx(ctx, tx, o); err != nil {
			return err
		}
		return s.Orders.UpdatePaymentTx(ctx, tx, o.Payment)
	})
}

// reversePoints takes back the points earned on the order. Redeemed points
// are given back only when the customer never paid.
func (s *orderService) reversePoints(ctx context.Context, tx *gorm.DB, o *model.Order, paid bool) error {
	earned := derefInt(o.PointsEarned)
	redeemed := derefInt(o.PointsRedeemed)
	if earned == 0 && (paid || redeemed == 0) {
		return nil
	}
	c, err := s.Customers.LockByIDTx(ctx, tx, o.CustomerID)
	if err != nil {
		return fmt.Errorf("lock customer %s: %w", o.CustomerID, err)
	}
	balance := c.LoyaltyPoints - earned
	if !paid {
		balance += redeemed
	}
	if balance < 0 {
		balance = 0
	}
	return s.Customers.UpdatePointsTx(ctx, tx, c.ID, balance)
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// ── Hold / Complete ───────────────────────────────────────────────────────────

func (s *orderService) HoldOrder(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	err := runTx(ctx, s.Orders.DB(), func(tx *gorm.DB) error {
		o, err := s.lockOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if o.Status != model.OrderAwaitingConfirmation || o.PaymentStatus != model.PaymentUnpaid {
			return apierror.InvalidStateTransition(o.Status, model.OrderPending)
		}
		o.Status = model.OrderPending
		return s.Orders.UpdateStatusTx(ctx, tx, o)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, id)
}

func (s *orderService) CompleteOrder(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	return s.FinalizePayment(ctx, id)
}

// HandlePaymentResult maps a verified gateway callback onto the workflow.
func (s *orderService) HandlePaymentResult(ctx context.Context, correlationID string, succeeded bool) error {
	var err error
	if succeeded {
		_, err = s.FinalizePaymentByReference(ctx, correlationID)
		if apierror.Is(err, apierror.KindInvalidStateTransition) {
			return s.flagCapturedAfterCancel(ctx, correlationID)
		}
	} else {
		_, err = s.CancelOrderByReference(ctx, correlationID)
	}
	return err
}

// flagCapturedAfterCancel records on the payment that the gateway took money
// for an order already cancelled here. The refund is manual.
func (s *orderService) flagCapturedAfterCancel(ctx context.Context, correlationID string) error {
	p, err := s.paymentByReference(ctx, correlationID)
	if err != nil {
		return err
	}
	note := "Captured by gateway after cancellation (" + correlationID + "), refund manually"
	var orderNumber string
	err = runTx(ctx, s.Orders.DB(), func(tx *gorm.DB) error {
		o, err := s.lockOrder(ctx, tx, p.OrderID)
		if err != nil {
			return err
		}
		orderNumber = o.OrderNumber
		if o.Payment == nil || strings.Contains(o.Payment.Notes, note) {
			return nil
		}
		o.Payment.Notes = appendNote(o.Payment.Notes, note)
		return s.Orders.UpdatePaymentTx(ctx, tx, o.Payment)
	})
	if err != nil {
		return err
	}
	log.Error().Str("order_number", orderNumber).Str("transaction_ref", correlationID).
		Str("amount", p.Amount.String()).Msg("payment captured for a cancelled order, refund required")
	return nil
}
