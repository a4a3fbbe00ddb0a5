package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/apierror"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/dto"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/infra"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/model"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/repository"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// emailConcurrency caps simultaneous SMTP sessions in one batch.
const emailConcurrency = 4

type PurchaseOrderService interface {
	Create(ctx context.Context, accountID uuid.UUID, req dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PurchaseOrderResponse, error)
	Approve(ctx context.Context, id, approverID uuid.UUID, notes string) (*dto.PurchaseOrderResponse, error)
	UpdateReceived(ctx context.Context, id uuid.UUID, req dto.UpdateReceivedRequest) (*dto.PurchaseOrderResponse, error)
	Receive(ctx context.Context, id, accountID uuid.UUID, req dto.ReceivePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error)
	Cancel(ctx context.Context, id uuid.UUID, notes string) (*dto.PurchaseOrderResponse, error)
	Revert(ctx context.Context, id uuid.UUID, notes string) (*dto.PurchaseOrderResponse, error)
	SendEmail(ctx context.Context, req dto.SendPurchaseOrderEmailRequest) (*dto.SendPurchaseOrderEmailResponse, error)
}

// PurchaseOrderDeps groups the collaborators of the purchase order workflow.
// Notifier and Mailer may be nil.
type PurchaseOrderDeps struct {
	Repo      repository.PurchaseOrderRepository
	Suppliers repository.SupplierRepository
	Products  repository.ProductRepository
	Inventory repository.InventoryRepository
	Accounts  repository.AccountRepository
	Ledger    StockLedger
	Pricing   PricingResolver
	Notifier  Notifier
	Mailer    Mailer
}

type purchaseOrderService struct {
	PurchaseOrderDeps
}

func NewPurchaseOrderService(deps PurchaseOrderDeps) PurchaseOrderService {
	return &purchaseOrderService{PurchaseOrderDeps: deps}
}

// ── Create ────────────────────────────────────────────────────────────────────
//   1. supplier must exist and be active
//   2. per line: product, quantity, unit price (request or current cost price)
//   3. per product: current + ordered must not pass maximum stock
//   4. planned totals at the requested tax rate
//   5. insert with a fresh daily order number

func (s *purchaseOrderService) Create(ctx context.Context, accountID uuid.UUID, req dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, apierror.InvalidArgument("invalid supplier_id %q", req.SupplierID)
	}
	if !validPercent(req.TaxPercent) {
		return nil, apierror.InvalidArgument("tax percent must be between 0 and 100")
	}
	if len(req.Lines) == 0 {
		return nil, apierror.InvalidArgument("a purchase order needs at least one line")
	}

	supplier, err := s.Suppliers.FindByID(ctx, supplierID)
	if repository.IsNotFound(err) {
		return nil, apierror.NotFound("supplier", supplierID)
	}
	if err != nil {
		return nil, err
	}
	if !supplier.Active {
		return nil, apierror.InvalidArgument("supplier %s is inactive", supplier.Name)
	}

	now := time.Now()
	poID := uuid.New()
	details := make([]model.PurchaseOrderDetail, 0, len(req.Lines))
	ordered := make(map[uuid.UUID]int)
	names := make(map[uuid.UUID]string)
	subtotal := decimal.Zero

	for _, line := range req.Lines {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, apierror.InvalidArgument("invalid product_id %q", line.ProductID)
		}
		if line.Quantity <= 0 {
			return nil, apierror.InvalidArgument("quantity for product %s must be positive", productID)
		}
		p, err := s.Products.FindByID(ctx, productID)
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("product", productID)
		}
		if err != nil {
			return nil, err
		}

		var price decimal.Decimal
		if line.UnitPrice != nil {
			price = *line.UnitPrice
		} else {
			current, err := s.Pricing.EffectivePrice(ctx, productID, now)
			if err != nil {
				return nil, err
			}
			price = current.CostPrice
		}
		if price.IsNegative() {
			return nil, apierror.InvalidArgument("unit price for %s must not be negative", p.Name)
		}
		price = money(price)

		ordered[productID] += line.Quantity
		names[productID] = p.Name
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		details = append(details, model.PurchaseOrderDetail{
			PurchaseOrderID: poID,
			ProductID:       productID,
			Quantity:        line.Quantity,
			UnitPrice:       price,
			Product:         p,
		})
	}

	if err := s.checkMaximumStock(ctx, ordered, names); err != nil {
		return nil, err
	}

	subtotal = money(subtotal)
	tax := percentOf(subtotal, req.TaxPercent)

	var po *model.PurchaseOrder
	err = runTx(ctx, s.Repo.DB(), func(tx *gorm.DB) error {
		number, err := s.Repo.NextOrderNumber(ctx, tx, now)
		if err != nil {
			return err
		}
		po = &model.PurchaseOrder{
			ID:              poID,
			OrderNumber:     number,
			SupplierID:      supplierID,
			AccountID:       accountID,
			Status:          model.POPending,
			TaxPercent:      req.TaxPercent,
			PlannedSubtotal: subtotal,
			Subtotal:        subtotal,
			TaxAmount:       tax,
			TotalAmount:     subtotal.Add(tax),
			Notes:           req.Notes,
			OrderDate:       now,
			Details:         details,
		}
		return s.Repo.CreateTx(ctx, tx, po)
	})
	if err != nil {
		return nil, fmt.Errorf("create purchase order: %w", err)
	}
	po.Supplier = supplier

	log.Info().Str("order_number", po.OrderNumber).Str("total", po.TotalAmount.String()).Msg("purchase order created")
	notify(ctx, s.Notifier, worker.NotificationJob{
		AccountIDs:  accountsWith(ctx, s.Accounts, model.PermPurchaseOrderApprove),
		Type:        worker.NotifyPurchaseOrderCreated,
		Message:     fmt.Sprintf("Purchase order %s awaits approval", po.OrderNumber),
		Description: fmt.Sprintf("Supplier %s, total %s", supplier.Name, po.TotalAmount.StringFixed(2)),
		ReferenceID: &po.ID,
	})
	return purchaseOrderToResponse(po), nil
}

// checkMaximumStock applies only to products whose inventory has both a
// minimum and a maximum configured.
func (s *purchaseOrderService) checkMaximumStock(ctx context.Context, ordered map[uuid.UUID]int, names map[uuid.UUID]string) error {
	for productID, qty := range ordered {
		inv, err := s.Inventory.FindByProduct(ctx, productID)
		if repository.IsNotFound(err) {
			continue
		}
		if err != nil {
			return err
		}
		if inv.MinimumStock == nil || inv.MaximumStock == nil {
			continue
		}
		if after := inv.QuantityInStock + qty; after > *inv.MaximumStock {
			return apierror.InvalidArgument("ordering %d of %s would raise stock to %d, above the maximum of %d",
				qty, names[productID], after, *inv.MaximumStock)
		}
	}
	return nil
}

func (s *purchaseOrderService) Get(ctx context.Context, id uuid.UUID) (*dto.PurchaseOrderResponse, error) {
	po, err := s.Repo.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, apierror.NotFound("purchase order", id)
	}
	if err != nil {
		return nil, err
	}
	return purchaseOrderToResponse(po), nil
}

// mutate locks the purchase order, lets fn change it and persists the
// result in one transaction.
func (s *purchaseOrderService) mutate(ctx context.Context, id uuid.UUID, fn func(tx *gorm.DB, po *model.PurchaseOrder) error) (*model.PurchaseOrder, error) {
	var po *model.PurchaseOrder
	err := runTx(ctx, s.Repo.DB(), func(tx *gorm.DB) error {
		var err error
		po, err = s.Repo.LockByIDTx(ctx, tx, id)
		if repository.IsNotFound(err) {
			return apierror.NotFound("purchase order", id)
		}
		if err != nil {
			return err
		}
		if err := fn(tx, po); err != nil {
			return err
		}
		return s.Repo.UpdateTx(ctx, tx, po)
	})
	return po, err
}

// ── Approve ───────────────────────────────────────────────────────────────────

func (s *purchaseOrderService) Approve(ctx context.Context, id, approverID uuid.UUID, notes string) (*dto.PurchaseOrderResponse, error) {
	po, err := s.mutate(ctx, id, func(_ *gorm.DB, po *model.PurchaseOrder) error {
		if po.Status != model.POPending {
			return apierror.InvalidStateTransition(po.Status, model.POApproved)
		}
		po.Status = model.POApproved
		po.ApprovedBy = &approverID
		po.Notes = appendNote(po.Notes, notes)
		return nil
	})
	if err != nil {
		return nil, err
	}

	notify(ctx, s.Notifier, worker.NotificationJob{
		AccountIDs:  []uuid.UUID{po.AccountID},
		Type:        worker.NotifyPurchaseOrderApproved,
		Message:     fmt.Sprintf("Purchase order %s was approved", po.OrderNumber),
		ReferenceID: &po.ID,
	})
	return s.Get(ctx, po.ID)
}

// ── UpdateReceived ────────────────────────────────────────────────────────────

func (s *purchaseOrderService) UpdateReceived(ctx context.Context, id uuid.UUID, req dto.UpdateReceivedRequest) (*dto.PurchaseOrderResponse, error) {
	if len(req.Lines) == 0 {
		return nil, apierror.InvalidArgument("no received quantities given")
	}
	po, err := s.mutate(ctx, id, func(_ *gorm.DB, po *model.PurchaseOrder) error {
		if po.Status != model.POApproved {
			return apierror.InvalidStateTransition(po.Status, model.POAwaitingConfirmation)
		}
		if err := applyReceivedLines(po, req.Lines); err != nil {
			return err
		}
		po.Status = model.POAwaitingConfirmation
		settleReceived(po)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, po.ID)
}

// applyReceivedLines validates every line before touching any detail.
func applyReceivedLines(po *model.PurchaseOrder, lines []dto.ReceivedLineRequest) error {
	index := make(map[uuid.UUID]int, len(po.Details))
	for i, d := range po.Details {
		index[d.ID] = i
	}

	var violations []string
	updates := make(map[int]int, len(lines))
	for _, line := range lines {
		detailID, err := uuid.Parse(line.DetailID)
		if err != nil {
			violations = append(violations, fmt.Sprintf("invalid detail_id %q", line.DetailID))
			continue
		}
		i, ok := index[detailID]
		if !ok {
			violations = append(violations, fmt.Sprintf("detail %s does not belong to %s", detailID, po.OrderNumber))
			continue
		}
		d := po.Details[i]
		if line.ReceivedQuantity < 0 || line.ReceivedQuantity > d.Quantity {
			violations = append(violations, fmt.Sprintf("%s: received %d, must be between 0 and %d",
				productName(d.Product, d.ProductID), line.ReceivedQuantity, d.Quantity))
			continue
		}
		updates[i] = line.ReceivedQuantity
	}
	if len(violations) > 0 {
		return apierror.InvalidArguments("invalid received quantities", violations)
	}
	for i, q := range updates {
		q := q
		po.Details[i].ReceivedQuantity = &q
	}
	return nil
}

// uncoveredLines names the details no request line refers to.
func uncoveredLines(po *model.PurchaseOrder, lines []dto.ReceivedLineRequest) []string {
	covered := make(map[string]bool, len(lines))
	for _, l := range lines {
		if id, err := uuid.Parse(l.DetailID); err == nil {
			covered[id.String()] = true
		}
	}
	var missing []string
	for _, d := range po.Details {
		if !covered[d.ID.String()] {
			missing = append(missing, productName(d.Product, d.ProductID))
		}
	}
	return missing
}

// settleReceived recomputes amounts from received quantities at the
// persisted tax rate. Unrecorded lines count as zero.
func settleReceived(po *model.PurchaseOrder) {
	subtotal := decimal.Zero
	for _, d := range po.Details {
		if d.ReceivedQuantity != nil {
			subtotal = subtotal.Add(d.UnitPrice.Mul(decimal.NewFromInt(int64(*d.ReceivedQuantity))))
		}
	}
	setTotals(po, money(subtotal))
}

func setTotals(po *model.PurchaseOrder, subtotal decimal.Decimal) {
	po.Subtotal = subtotal
	po.TaxAmount = percentOf(subtotal, po.TaxPercent)
	po.TotalAmount = subtotal.Add(po.TaxAmount)
}

// ── Receive ───────────────────────────────────────────────────────────────────
//   1. awaiting confirmation, or approved with a quantity for every line
//   2. every line must carry a received quantity (0 = supplier out of stock)
//   3. ascending product id: import into the stock ledger
//   4. totals at the persisted tax rate, status received
//   5. received unit prices become the current cost prices

func (s *purchaseOrderService) Receive(ctx context.Context, id, accountID uuid.UUID, req dto.ReceivePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	po, err := s.mutate(ctx, id, func(tx *gorm.DB, po *model.PurchaseOrder) error {
		switch po.Status {
		case model.POAwaitingConfirmation:
		case model.POApproved:
			if len(req.Lines) == 0 {
				return apierror.InvalidStateTransition(po.Status, model.POReceived)
			}
			// quantities left over from a reverted recording do not count
			if missing := uncoveredLines(po, req.Lines); len(missing) > 0 {
				return apierror.InvalidArguments("received quantity missing", missing)
			}
		default:
			return apierror.InvalidStateTransition(po.Status, model.POReceived)
		}
		if len(req.Lines) > 0 {
			if err := applyReceivedLines(po, req.Lines); err != nil {
				return err
			}
		}

		var missing []string
		for _, d := range po.Details {
			if d.ReceivedQuantity == nil {
				missing = append(missing, productName(d.Product, d.ProductID))
			}
		}
		if len(missing) > 0 {
			return apierror.InvalidArguments("received quantity missing", missing)
		}

		now := time.Now()
		lines := make([]model.PurchaseOrderDetail, len(po.Details))
		copy(lines, po.Details)
		sort.SliceStable(lines, func(i, j int) bool {
			return lines[i].ProductID.String() < lines[j].ProductID.String()
		})

		for _, d := range lines {
			qty := *d.ReceivedQuantity
			if qty == 0 {
				continue
			}
			price := d.UnitPrice
			if _, err := s.Ledger.Adjust(ctx, tx, AdjustInput{
				ProductID:     d.ProductID,
				ProductName:   productName(d.Product, d.ProductID),
				Quantity:      qty,
				Type:          model.StockImport,
				ActorID:       &accountID,
				ReferenceType: model.RefPurchaseOrder,
				ReferenceID:   &po.ID,
				UnitPrice:     &price,
				Note:          "Received on " + po.OrderNumber,
			}); err != nil {
				return err
			}
		}

		settleReceived(po)
		po.Status = model.POReceived
		po.ReceivedDate = &now
		po.ReceivedBy = &accountID
		po.Notes = appendNote(po.Notes, req.Notes)

		for _, d := range lines {
			if *d.ReceivedQuantity == 0 || !d.UnitPrice.IsPositive() {
				continue
			}
			if err := s.Pricing.UpdateCostPrice(ctx, tx, d.ProductID, d.UnitPrice, now); err != nil {
				return fmt.Errorf("update cost price: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("order_number", po.OrderNumber).Str("total", po.TotalAmount.String()).Msg("purchase order received")
	notify(ctx, s.Notifier, worker.NotificationJob{
		AccountIDs:  mergeIDs([]uuid.UUID{po.AccountID}, accountsWith(ctx, s.Accounts, model.PermPurchaseOrderApprove)),
		Type:        worker.NotifyPurchaseOrderReceived,
		Message:     fmt.Sprintf("Purchase order %s was received", po.OrderNumber),
		Description: fmt.Sprintf("Received total %s", po.TotalAmount.StringFixed(2)),
		ReferenceID: &po.ID,
	})
	return s.Get(ctx, po.ID)
}

// ── Cancel / Revert ───────────────────────────────────────────────────────────

func (s *purchaseOrderService) Cancel(ctx context.Context, id uuid.UUID, notes string) (*dto.PurchaseOrderResponse, error) {
	po, err := s.mutate(ctx, id, func(_ *gorm.DB, po *model.PurchaseOrder) error {
		if po.Status != model.POPending && po.Status != model.POApproved {
			return apierror.InvalidStateTransition(po.Status, model.POCancelled)
		}
		resetReceived(po)
		po.Subtotal = decimal.Zero
		po.TaxAmount = decimal.Zero
		po.TotalAmount = decimal.Zero
		po.Status = model.POCancelled
		po.Notes = appendNote(po.Notes, notes)
		return nil
	})
	if err != nil {
		return nil, err
	}

	notify(ctx, s.Notifier, worker.NotificationJob{
		AccountIDs:  []uuid.UUID{po.AccountID},
		Type:        worker.NotifyPurchaseOrderCancelled,
		Message:     fmt.Sprintf("Purchase order %s was cancelled", po.OrderNumber),
		ReferenceID: &po.ID,
	})
	return s.Get(ctx, po.ID)
}

// Revert sends an order awaiting confirmation back to approved with the
// planned totals.
func (s *purchaseOrderService) Revert(ctx context.Context, id uuid.UUID, notes string) (*dto.PurchaseOrderResponse, error) {
	po, err := s.mutate(ctx, id, func(_ *gorm.DB, po *model.PurchaseOrder) error {
		if po.Status != model.POAwaitingConfirmation {
			return apierror.InvalidStateTransition(po.Status, model.POApproved)
		}
		resetReceived(po)
		setTotals(po, po.PlannedSubtotal)
		po.Status = model.POApproved
		po.Notes = appendNote(po.Notes, notes)
		return nil
	})
	if err != nil {
		return nil, err
	}

	notify(ctx, s.Notifier, worker.NotificationJob{
		AccountIDs:  []uuid.UUID{po.AccountID},
		Type:        worker.NotifyPurchaseOrderReverted,
		Message:     fmt.Sprintf("Purchase order %s was sent back to approved", po.OrderNumber),
		ReferenceID: &po.ID,
	})
	return s.Get(ctx, po.ID)
}

func resetReceived(po *model.PurchaseOrder) {
	for i := range po.Details {
		zero := 0
		po.Details[i].ReceivedQuantity = &zero
	}
}

func appendNote(existing, note string) string {
	switch {
	case note == "":
		return existing
	case existing == "":
		return note
	default:
		return existing + "\n" + note
	}
}

// ── SendEmail ─────────────────────────────────────────────────────────────────
// The whole batch is validated first; nothing is sent unless every order
// qualifies. Mail goes out once per supplier address with one PDF per order;
// the orders of a failed address are listed in the error details.

func (s *purchaseOrderService) SendEmail(ctx context.Context, req dto.SendPurchaseOrderEmailRequest) (*dto.SendPurchaseOrderEmailResponse, error) {
	var violations []string
	ids := make([]uuid.UUID, 0, len(req.IDs))
	seen := make(map[uuid.UUID]bool, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			violations = append(violations, fmt.Sprintf("invalid id %q", raw))
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 && len(violations) == 0 {
		return nil, apierror.InvalidArgument("no purchase orders given")
	}

	rows, err := s.Repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*model.PurchaseOrder, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}

	var alreadySent []string
	batch := make([]*model.PurchaseOrder, 0, len(ids))
	for _, id := range ids {
		po, ok := byID[id]
		if !ok {
			violations = append(violations, fmt.Sprintf("purchase order %s not found", id))
			continue
		}
		if po.Status != model.POApproved {
			violations = append(violations, fmt.Sprintf("%s: status %s, must be %s", po.OrderNumber, po.Status, model.POApproved))
		}
		if po.Supplier == nil || po.Supplier.Email == nil || *po.Supplier.Email == "" {
			violations = append(violations, fmt.Sprintf("%s: supplier has no email", po.OrderNumber))
		}
		if po.EmailSentAt != nil && !req.ForceResend {
			alreadySent = append(alreadySent, po.OrderNumber)
		}
		batch = append(batch, po)
	}
	if len(violations) > 0 {
		for _, number := range alreadySent {
			violations = append(violations, number+": already emailed")
		}
		return nil, apierror.InvalidArguments("purchase orders cannot be emailed", violations)
	}
	if len(alreadySent) > 0 {
		return nil, apierror.AlreadySent(alreadySent)
	}
	if s.Mailer == nil {
		return nil, apierror.Gateway("mail is not configured", infra.ErrMailerDisabled)
	}

	groups := groupBySupplierEmail(batch)
	results := s.deliver(req, groups)

	// stamp what went out even when another supplier failed
	failed := make(map[uuid.UUID]bool)
	var failedNumbers []string
	var cause error
	for i, group := range groups {
		if results[i] == nil {
			continue
		}
		log.Error().Err(results[i]).Str("to", group.email).Msg("purchase order email failed")
		if cause == nil {
			cause = results[i]
		}
		for _, po := range group.orders {
			failed[po.ID] = true
			failedNumbers = append(failedNumbers, po.OrderNumber)
		}
	}

	sentAt := time.Now()
	sentIDs := make([]uuid.UUID, 0, len(batch))
	sent := make([]string, 0, len(batch))
	for _, po := range batch {
		if !failed[po.ID] {
			sentIDs = append(sentIDs, po.ID)
			sent = append(sent, po.OrderNumber)
		}
	}
	if len(sentIDs) > 0 {
		if err := s.Repo.MarkEmailSent(ctx, sentIDs, sentAt); err != nil {
			return nil, fmt.Errorf("stamp email sent: %w", err)
		}
		log.Info().Strs("orders", sent).Msg("purchase orders emailed")
	}
	if cause != nil {
		e := apierror.Gateway("failed to send purchase order email", cause)
		e.Details = failedNumbers
		return nil, e
	}
	return &dto.SendPurchaseOrderEmailResponse{Sent: sent, SentAt: timeString(sentAt)}, nil
}

type supplierBatch struct {
	email  string
	orders []*model.PurchaseOrder
}

func groupBySupplierEmail(orders []*model.PurchaseOrder) []supplierBatch {
	var groups []supplierBatch
	index := make(map[string]int)
	for _, po := range orders {
		addr := *po.Supplier.Email
		i, ok := index[addr]
		if !ok {
			i = len(groups)
			index[addr] = i
			groups = append(groups, supplierBatch{email: addr})
		}
		groups[i].orders = append(groups[i].orders, po)
	}
	return groups
}

// deliver mails every group, at most emailConcurrency at a time, and returns
// one result per group.
func (s *purchaseOrderService) deliver(req dto.SendPurchaseOrderEmailRequest, groups []supplierBatch) []error {
	results := make([]error, len(groups))
	var g errgroup.Group
	g.SetLimit(emailConcurrency)
	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			results[i] = s.sendGroup(req, group)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *purchaseOrderService) sendGroup(req dto.SendPurchaseOrderEmailRequest, group supplierBatch) error {
	attachments := make([]infra.Attachment, 0, len(group.orders))
	for _, po := range group.orders {
		pdf, err := infra.RenderPurchaseOrderPDF(po)
		if err != nil {
			return fmt.Errorf("render %s: %w", po.OrderNumber, err)
		}
		attachments = append(attachments, infra.Attachment{
			Filename:    po.OrderNumber + ".pdf",
			ContentType: "application/pdf",
			Data:        pdf,
		})
	}
	if err := s.Mailer.SendHTML([]string{group.email}, req.Subject, req.Body, attachments...); err != nil {
		return fmt.Errorf("send to %s: %w", group.email, err)
	}
	return nil
}
