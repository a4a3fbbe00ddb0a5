package service_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/infra"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/model"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/repository"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/service"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Repository stubs ──────────────────────────────────────────────────────────
// Every stub returns gorm.ErrRecordNotFound for missing rows so the services'
// repository.IsNotFound checks behave as they do against PostgreSQL. Locked
// and found rows are copies, mirroring a database round trip.

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) add(name string) *model.Product {
	p := &model.Product{ID: uuid.New(), Code: name, Name: name, Active: true}
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

type stubInventoryRepo struct {
	rows    map[uuid.UUID]*model.Inventory
	lockLog []uuid.UUID
}

func newStubInventoryRepo() *stubInventoryRepo {
	return &stubInventoryRepo{rows: make(map[uuid.UUID]*model.Inventory)}
}

func (r *stubInventoryRepo) set(productID uuid.UUID, qty int) *model.Inventory {
	inv := &model.Inventory{ID: uuid.New(), ProductID: productID, QuantityInStock: qty, LastUpdated: time.Now()}
	r.rows[productID] = inv
	return inv
}

func (r *stubInventoryRepo) qty(productID uuid.UUID) int {
	if inv, ok := r.rows[productID]; ok {
		return inv.QuantityInStock
	}
	return 0
}

func (r *stubInventoryRepo) FindByProduct(_ context.Context, productID uuid.UUID) (*model.Inventory, error) {
	inv, ok := r.rows[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *stubInventoryRepo) LockByProductTx(ctx context.Context, _ *gorm.DB, productID uuid.UUID) (*model.Inventory, error) {
	r.lockLog = append(r.lockLog, productID)
	return r.FindByProduct(ctx, productID)
}

func (r *stubInventoryRepo) CreateIfMissingTx(_ context.Context, _ *gorm.DB, productID uuid.UUID) error {
	if _, ok := r.rows[productID]; !ok {
		r.set(productID, 0)
	}
	return nil
}

func (r *stubInventoryRepo) UpdateQuantityTx(_ context.Context, _ *gorm.DB, inv *model.Inventory) error {
	row, ok := r.rows[inv.ProductID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if inv.QuantityInStock < 0 {
		return errors.New("check constraint chk_inventories_quantity_in_stock violated")
	}
	row.QuantityInStock = inv.QuantityInStock
	row.LastUpdated = inv.LastUpdated
	return nil
}

func (r *stubInventoryRepo) ListLow(_ context.Context) ([]model.Inventory, error) {
	var out []model.Inventory
	for _, inv := range r.rows {
		if inv.IsLow() {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *stubInventoryRepo) DB() *gorm.DB { return nil }

var _ repository.InventoryRepository = (*stubInventoryRepo)(nil)

type stubStockTxRepo struct {
	entries []model.StockTransaction
}

func (r *stubStockTxRepo) CreateTx(_ context.Context, _ *gorm.DB, t *model.StockTransaction) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.entries = append(r.entries, *t)
	return nil
}

func (r *stubStockTxRepo) List(_ context.Context, f repository.StockTransactionFilter) ([]model.StockTransaction, int64, error) {
	var out []model.StockTransaction
	for _, t := range r.entries {
		if f.ProductID != nil && t.ProductID != *f.ProductID {
			continue
		}
		if f.ReferenceID != nil && (t.ReferenceID == nil || *t.ReferenceID != *f.ReferenceID) {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		out = append(out, t)
	}
	return out, int64(len(out)), nil
}

func (r *stubStockTxRepo) SumChange(_ context.Context, productID uuid.UUID) (int, error) {
	sum := 0
	for _, t := range r.entries {
		if t.ProductID == productID {
			sum += t.QuantityChange
		}
	}
	return sum, nil
}

// ofType returns entries of the given type referencing ref.
func (r *stubStockTxRepo) ofType(typ string, ref uuid.UUID) []model.StockTransaction {
	var out []model.StockTransaction
	for _, t := range r.entries {
		if t.Type == typ && t.ReferenceID != nil && *t.ReferenceID == ref {
			out = append(out, t)
		}
	}
	return out
}

var _ repository.StockTransactionRepository = (*stubStockTxRepo)(nil)

type stubPriceRepo struct {
	rows []model.ProductPrice
}

func (r *stubPriceRepo) add(productID uuid.UUID, unit, cost string, validFrom time.Time) *model.ProductPrice {
	p := model.ProductPrice{
		ID:          uuid.New(),
		ProductID:   productID,
		UnitPrice:   decimal.RequireFromString(unit),
		CostPrice:   decimal.RequireFromString(cost),
		ValidFrom:   validFrom,
		CreatedDate: time.Now(),
	}
	r.rows = append(r.rows, p)
	return &r.rows[len(r.rows)-1]
}

func (r *stubPriceRepo) sorted(productID uuid.UUID) []model.ProductPrice {
	var out []model.ProductPrice
	for _, p := range r.rows {
		if p.ProductID == productID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ValidFrom.Equal(out[j].ValidFrom) {
			return out[i].ValidFrom.After(out[j].ValidFrom)
		}
		return out[i].CreatedDate.After(out[j].CreatedDate)
	})
	return out
}

func (r *stubPriceRepo) FindEffective(_ context.Context, _ *gorm.DB, productID uuid.UUID, asOf time.Time) (*model.ProductPrice, error) {
	for _, p := range r.sorted(productID) {
		if !p.ValidFrom.After(asOf) {
			cp := p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPriceRepo) CreateTx(_ context.Context, _ *gorm.DB, p *model.ProductPrice) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedDate.IsZero() {
		p.CreatedDate = time.Now()
	}
	r.rows = append(r.rows, *p)
	return nil
}

func (r *stubPriceRepo) UpdateCostTx(_ context.Context, _ *gorm.DB, id uuid.UUID, cost decimal.Decimal) error {
	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows[i].CostPrice = cost
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubPriceRepo) ListByProduct(_ context.Context, productID uuid.UUID) ([]model.ProductPrice, error) {
	return r.sorted(productID), nil
}

var _ repository.PriceRepository = (*stubPriceRepo)(nil)

type stubPromotionRepo struct {
	byProduct map[uuid.UUID][]model.Promotion
	calls     int
}

func newStubPromotionRepo() *stubPromotionRepo {
	return &stubPromotionRepo{byProduct: make(map[uuid.UUID][]model.Promotion)}
}

func (r *stubPromotionRepo) add(productID uuid.UUID, typ, value string, start, end time.Time) {
	r.byProduct[productID] = append(r.byProduct[productID], model.Promotion{
		ID:            uuid.New(),
		Name:          typ + " " + value,
		DiscountType:  typ,
		DiscountValue: decimal.RequireFromString(value),
		StartDate:     start,
		EndDate:       end,
		Active:        true,
	})
}

func (r *stubPromotionRepo) ListActiveByProduct(_ context.Context, productID uuid.UUID) ([]model.Promotion, error) {
	r.calls++
	var out []model.Promotion
	for _, p := range r.byProduct[productID] {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubPromotionRepo) DeactivateExpired(_ context.Context, now time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for productID, promos := range r.byProduct {
		touched := false
		for i := range promos {
			if promos[i].Active && !promos[i].EndDate.After(now) {
				promos[i].Active = false
				touched = true
			}
		}
		if touched {
			ids = append(ids, productID)
		}
	}
	return ids, nil
}

var _ repository.PromotionRepository = (*stubPromotionRepo)(nil)

type stubSupplierRepo struct {
	suppliers map[uuid.UUID]*model.Supplier
}

func newStubSupplierRepo() *stubSupplierRepo {
	return &stubSupplierRepo{suppliers: make(map[uuid.UUID]*model.Supplier)}
}

func (r *stubSupplierRepo) add(name, email string) *model.Supplier {
	s := &model.Supplier{ID: uuid.New(), Name: name, Active: true}
	if email != "" {
		s.Email = &email
	}
	r.suppliers[s.ID] = s
	return s
}

func (r *stubSupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

var _ repository.SupplierRepository = (*stubSupplierRepo)(nil)

type stubAccountRepo struct {
	accounts []model.Account
}

func (r *stubAccountRepo) add(permission string) uuid.UUID {
	id := uuid.New()
	r.accounts = append(r.accounts, model.Account{
		ID:          id,
		Username:    id.String()[:8],
		Active:      true,
		Permissions: []model.AccountPermission{{AccountID: id, Permission: permission}},
	})
	return id
}

func (r *stubAccountRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Account, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Account
	for _, a := range r.accounts {
		if want[a.ID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubAccountRepo) ListByPermission(_ context.Context, permission string) ([]model.Account, error) {
	var out []model.Account
	for _, a := range r.accounts {
		for _, p := range a.Permissions {
			if p.Permission == permission && a.Active {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

var _ repository.AccountRepository = (*stubAccountRepo)(nil)

type stubCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *stubCustomerRepo) add(phone string, points int) *model.Customer {
	c := &model.Customer{ID: uuid.New(), Code: "KH" + phone, Name: "Customer " + phone, Phone: &phone, LoyaltyPoints: points}
	r.customers[c.ID] = c
	return c
}

func (r *stubCustomerRepo) FindByPhone(_ context.Context, phone string) (*model.Customer, error) {
	for _, c := range r.customers {
		if c.Phone != nil && *c.Phone == phone {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCustomerRepo) LockByIDTx(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCustomerRepo) UpdatePointsTx(_ context.Context, _ *gorm.DB, id uuid.UUID, points int) error {
	c, ok := r.customers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.LoyaltyPoints = points
	return nil
}

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)

type stubPurchaseOrderRepo struct {
	orders    map[uuid.UUID]*model.PurchaseOrder
	suppliers *stubSupplierRepo
	products  *stubProductRepo
	seq       int
}

func newStubPurchaseOrderRepo(suppliers *stubSupplierRepo, products *stubProductRepo) *stubPurchaseOrderRepo {
	return &stubPurchaseOrderRepo{orders: make(map[uuid.UUID]*model.PurchaseOrder), suppliers: suppliers, products: products}
}

func clonePurchaseOrder(po *model.PurchaseOrder) *model.PurchaseOrder {
	cp := *po
	cp.Details = make([]model.PurchaseOrderDetail, len(po.Details))
	for i, d := range po.Details {
		if d.ReceivedQuantity != nil {
			q := *d.ReceivedQuantity
			d.ReceivedQuantity = &q
		}
		cp.Details[i] = d
	}
	return &cp
}

func (r *stubPurchaseOrderRepo) load(po *model.PurchaseOrder) *model.PurchaseOrder {
	cp := clonePurchaseOrder(po)
	if s, ok := r.suppliers.suppliers[cp.SupplierID]; ok {
		sc := *s
		cp.Supplier = &sc
	}
	for i := range cp.Details {
		if p, ok := r.products.products[cp.Details[i].ProductID]; ok {
			cp.Details[i].Product = p
		}
	}
	return cp
}

func (r *stubPurchaseOrderRepo) CreateTx(_ context.Context, _ *gorm.DB, po *model.PurchaseOrder) error {
	if po.ID == uuid.Nil {
		po.ID = uuid.New()
	}
	for i := range po.Details {
		if po.Details[i].ID == uuid.Nil {
			po.Details[i].ID = uuid.New()
		}
		po.Details[i].PurchaseOrderID = po.ID
	}
	po.CreatedAt = time.Now()
	r.orders[po.ID] = clonePurchaseOrder(po)
	return nil
}

func (r *stubPurchaseOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	po, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.load(po), nil
}

func (r *stubPurchaseOrderRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.PurchaseOrder, error) {
	var out []model.PurchaseOrder
	for _, id := range ids {
		if po, ok := r.orders[id]; ok {
			out = append(out, *r.load(po))
		}
	}
	return out, nil
}

func (r *stubPurchaseOrderRepo) LockByIDTx(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error) {
	po, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	po.Supplier = nil
	return po, nil
}

func (r *stubPurchaseOrderRepo) UpdateTx(_ context.Context, _ *gorm.DB, po *model.PurchaseOrder) error {
	if _, ok := r.orders[po.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := clonePurchaseOrder(po)
	stored.Supplier = nil
	r.orders[po.ID] = stored
	return nil
}

func (r *stubPurchaseOrderRepo) MarkEmailSent(_ context.Context, ids []uuid.UUID, at time.Time) error {
	for _, id := range ids {
		if po, ok := r.orders[id]; ok {
			t := at
			po.EmailSentAt = &t
		}
	}
	return nil
}

func (r *stubPurchaseOrderRepo) NextOrderNumber(_ context.Context, _ *gorm.DB, day time.Time) (string, error) {
	r.seq++
	return fmt.Sprintf("PO%s-%04d", day.Format("20060102"), r.seq), nil
}

func (r *stubPurchaseOrderRepo) DB() *gorm.DB { return nil }

var _ repository.PurchaseOrderRepository = (*stubPurchaseOrderRepo)(nil)

type stubOrderRepo struct {
	orders   map[uuid.UUID]*model.Order
	products *stubProductRepo
	seq      int
}

func newStubOrderRepo(products *stubProductRepo) *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]*model.Order), products: products}
}

func cloneOrder(o *model.Order) *model.Order {
	cp := *o
	cp.Details = append([]model.OrderDetail(nil), o.Details...)
	if o.Payment != nil {
		p := *o.Payment
		cp.Payment = &p
	}
	return &cp
}

func (r *stubOrderRepo) CreateTx(_ context.Context, _ *gorm.DB, o *model.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Details {
		if o.Details[i].ID == uuid.Nil {
			o.Details[i].ID = uuid.New()
		}
	}
	if o.Payment != nil && o.Payment.ID == uuid.Nil {
		o.Payment.ID = uuid.New()
	}
	r.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := cloneOrder(o)
	for i := range cp.Details {
		cp.Details[i].Product = r.products.products[cp.Details[i].ProductID]
	}
	return cp, nil
}

func (r *stubOrderRepo) LockByIDTx(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *stubOrderRepo) UpdateStatusTx(_ context.Context, _ *gorm.DB, o *model.Order) error {
	stored, ok := r.orders[o.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Status = o.Status
	stored.PaymentStatus = o.PaymentStatus
	return nil
}

func (r *stubOrderRepo) UpdatePaymentTx(_ context.Context, _ *gorm.DB, p *model.Payment) error {
	stored, ok := r.orders[p.OrderID]
	if !ok || stored.Payment == nil {
		return gorm.ErrRecordNotFound
	}
	stored.Payment.Status = p.Status
	stored.Payment.PaymentDate = p.PaymentDate
	stored.Payment.Notes = p.Notes
	return nil
}

func (r *stubOrderRepo) FindPaymentByReference(_ context.Context, ref string) (*model.Payment, error) {
	for _, o := range r.orders {
		if o.Payment != nil && o.Payment.TransactionRef != nil && *o.Payment.TransactionRef == ref {
			cp := *o.Payment
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubOrderRepo) SetPaymentIntent(_ context.Context, paymentID uuid.UUID, ref, url string) error {
	for _, o := range r.orders {
		if o.Payment != nil && o.Payment.ID == paymentID {
			o.Payment.TransactionRef = &ref
			o.Payment.PaymentURL = &url
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubOrderRepo) NextOrderNumber(_ context.Context, _ *gorm.DB, day time.Time) (string, error) {
	r.seq++
	return fmt.Sprintf("HD%s-%04d", day.Format("20060102"), r.seq), nil
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

// ── Collaborator stubs ────────────────────────────────────────────────────────

type stubNotifier struct {
	jobs []worker.NotificationJob
	err  error
}

func (n *stubNotifier) EnqueueNotification(_ context.Context, job worker.NotificationJob) error {
	n.jobs = append(n.jobs, job)
	return n.err
}

func (n *stubNotifier) ofType(typ string) []worker.NotificationJob {
	var out []worker.NotificationJob
	for _, j := range n.jobs {
		if j.Type == typ {
			out = append(out, j)
		}
	}
	return out
}

var _ service.Notifier = (*stubNotifier)(nil)

type sentMail struct {
	to          []string
	subject     string
	attachments []string
}

type stubMailer struct {
	mu     sync.Mutex
	sent   []sentMail
	err    error
	failTo map[string]error
}

func (m *stubMailer) SendHTML(to []string, subject, _ string, attachments ...infra.Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if err := m.failTo[to[0]]; err != nil {
		return err
	}
	names := make([]string, 0, len(attachments))
	for _, a := range attachments {
		names = append(names, a.Filename)
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, attachments: names})
	return nil
}

var _ service.Mailer = (*stubMailer)(nil)

type stubGateway struct {
	requests []infra.PaymentIntentRequest
	err      error
}

func (g *stubGateway) CreatePaymentIntent(_ context.Context, req infra.PaymentIntentRequest) (*infra.PaymentIntent, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return &infra.PaymentIntent{
		CorrelationID: req.OrderNumber + "-1",
		RedirectURL:   "https://pay.example/" + req.OrderNumber,
	}, nil
}

var _ service.PaymentGateway = (*stubGateway)(nil)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
