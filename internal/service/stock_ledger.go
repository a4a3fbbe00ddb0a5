package service

import (
	"context"
	"fmt"
	"time"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/apierror"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/dto"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/model"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AdjustInput describes one stock movement. Quantity is signed: positive
// adds units to the shelf, negative takes them away.
type AdjustInput struct {
	ProductID     uuid.UUID
	ProductName   string // used in error messages only
	Quantity      int
	Type          string
	ActorID       *uuid.UUID
	ReferenceType string
	ReferenceID   *uuid.UUID
	UnitPrice     *decimal.Decimal
	Note          string
}

// StockLedger owns Inventory.QuantityInStock and its append-only log.
// Adjust and Record must run inside the caller's transaction.
type StockLedger interface {
	Adjust(ctx context.Context, tx *gorm.DB, in AdjustInput) (*model.StockTransaction, error)
	// Record appends an audit-only entry that leaves the counter untouched.
	Record(ctx context.Context, tx *gorm.DB, in AdjustInput) (*model.StockTransaction, error)
	Available(ctx context.Context, productID uuid.UUID) (int, error)

	GetInventory(ctx context.Context, productID uuid.UUID) (*dto.InventoryResponse, error)
	AdjustStock(ctx context.Context, actorID uuid.UUID, req dto.StockAdjustmentRequest) (*dto.StockTransactionResponse, error)
	ListTransactions(ctx context.Context, filter dto.StockTransactionFilter) (*dto.StockTransactionListResponse, error)
	Reconcile(ctx context.Context, productID uuid.UUID) (*dto.ReconcileResponse, error)
	LowStock(ctx context.Context) ([]dto.InventoryResponse, error)
}

type stockLedger struct {
	inventory    repository.InventoryRepository
	transactions repository.StockTransactionRepository
	products     repository.ProductRepository
}

func NewStockLedger(
	inventory repository.InventoryRepository,
	transactions repository.StockTransactionRepository,
	products repository.ProductRepository,
) StockLedger {
	return &stockLedger{inventory: inventory, transactions: transactions, products: products}
}

// ── Adjust ────────────────────────────────────────────────────────────────────
//   1. SELECT ... FOR UPDATE the inventory row
//   2. missing row: decrements fail, increments insert it at 0 and re-lock
//   3. reject a negative result
//   4. write the counter, append the entry

func (s *stockLedger) Adjust(ctx context.Context, tx *gorm.DB, in AdjustInput) (*model.StockTransaction, error) {
	if in.Quantity == 0 {
		return nil, apierror.InvalidArgument("stock adjustment quantity must not be zero")
	}

	inv, err := s.inventory.LockByProductTx(ctx, tx, in.ProductID)
	if repository.IsNotFound(err) {
		if in.Quantity < 0 {
			return nil, apierror.InventoryNotFound(in.ProductID)
		}
		if err := s.inventory.CreateIfMissingTx(ctx, tx, in.ProductID); err != nil {
			return nil, fmt.Errorf("create inventory for %s: %w", in.ProductID, err)
		}
		inv, err = s.inventory.LockByProductTx(ctx, tx, in.ProductID)
	}
	if err != nil {
		return nil, fmt.Errorf("lock inventory for %s: %w", in.ProductID, err)
	}

	next := inv.QuantityInStock + in.Quantity
	if next < 0 {
		name := in.ProductName
		if name == "" {
			name = in.ProductID.String()
		}
		return nil, apierror.InsufficientStock(name, inv.QuantityInStock, -in.Quantity)
	}

	inv.QuantityInStock = next
	inv.LastUpdated = time.Now()
	if err := s.inventory.UpdateQuantityTx(ctx, tx, inv); err != nil {
		return nil, fmt.Errorf("update inventory for %s: %w", in.ProductID, err)
	}

	entry := newEntry(in)
	entry.QuantityChange = in.Quantity
	if err := s.transactions.CreateTx(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("append stock transaction: %w", err)
	}
	return entry, nil
}

func (s *stockLedger) Record(ctx context.Context, tx *gorm.DB, in AdjustInput) (*model.StockTransaction, error) {
	if in.Quantity <= 0 {
		return nil, apierror.InvalidArgument("recorded quantity must be positive")
	}
	entry := newEntry(in)
	if err := s.transactions.CreateTx(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("append stock transaction: %w", err)
	}
	return entry, nil
}

func newEntry(in AdjustInput) *model.StockTransaction {
	qty := in.Quantity
	if qty < 0 {
		qty = -qty
	}
	return &model.StockTransaction{
		ProductID:     in.ProductID,
		AccountID:     in.ActorID,
		Type:          in.Type,
		Quantity:      qty,
		UnitPrice:     in.UnitPrice,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Note:          in.Note,
		CreatedAt:     time.Now(),
	}
}

// Available returns 0 for products that never had stock.
func (s *stockLedger) Available(ctx context.Context, productID uuid.UUID) (int, error) {
	inv, err := s.inventory.FindByProduct(ctx, productID)
	if repository.IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return inv.QuantityInStock, nil
}

// ── Administration ────────────────────────────────────────────────────────────

func (s *stockLedger) GetInventory(ctx context.Context, productID uuid.UUID) (*dto.InventoryResponse, error) {
	inv, err := s.inventory.FindByProduct(ctx, productID)
	if repository.IsNotFound(err) {
		return nil, apierror.InventoryNotFound(productID)
	}
	if err != nil {
		return nil, err
	}
	resp := inventoryToResponse(inv)
	return &resp, nil
}

// AdjustStock applies a manual correction in its own transaction.
func (s *stockLedger) AdjustStock(ctx context.Context, actorID uuid.UUID, req dto.StockAdjustmentRequest) (*dto.StockTransactionResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apierror.InvalidArgument("invalid product_id %q", req.ProductID)
	}
	switch req.Type {
	case model.StockAdjustment:
	case model.StockWriteOff:
		if req.Delta >= 0 {
			return nil, apierror.InvalidArgument("write-off delta must be negative")
		}
	default:
		return nil, apierror.InvalidArgument("unsupported adjustment type %q", req.Type)
	}

	p, err := s.products.FindByID(ctx, productID)
	if repository.IsNotFound(err) {
		return nil, apierror.NotFound("product", productID)
	}
	if err != nil {
		return nil, err
	}

	var entry *model.StockTransaction
	err = runTx(ctx, s.inventory.DB(), func(tx *gorm.DB) error {
		var err error
		entry, err = s.Adjust(ctx, tx, AdjustInput{
			ProductID:     productID,
			ProductName:   p.Name,
			Quantity:      req.Delta,
			Type:          req.Type,
			ActorID:       &actorID,
			ReferenceType: model.RefManual,
			Note:          req.Note,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	entry.Product = p
	resp := stockTransactionToResponse(*entry)
	return &resp, nil
}

func (s *stockLedger) ListTransactions(ctx context.Context, filter dto.StockTransactionFilter) (*dto.StockTransactionListResponse, error) {
	f := repository.StockTransactionFilter{Type: filter.Type, Page: filter.Page, Limit: filter.Limit}
	if filter.ProductID != "" {
		id, err := uuid.Parse(filter.ProductID)
		if err != nil {
			return nil, apierror.InvalidArgument("invalid product_id %q", filter.ProductID)
		}
		f.ProductID = &id
	}
	if filter.ReferenceID != "" {
		id, err := uuid.Parse(filter.ReferenceID)
		if err != nil {
			return nil, apierror.InvalidArgument("invalid reference_id %q", filter.ReferenceID)
		}
		f.ReferenceID = &id
	}

	rows, total, err := s.transactions.List(ctx, f)
	if err != nil {
		return nil, err
	}
	data := make([]dto.StockTransactionResponse, 0, len(rows))
	for _, t := range rows {
		data = append(data, stockTransactionToResponse(t))
	}
	return &dto.StockTransactionListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Reconcile compares the counter against the sum of its ledger entries.
func (s *stockLedger) Reconcile(ctx context.Context, productID uuid.UUID) (*dto.ReconcileResponse, error) {
	qty, err := s.Available(ctx, productID)
	if err != nil {
		return nil, err
	}
	sum, err := s.transactions.SumChange(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &dto.ReconcileResponse{
		ProductID:       productID.String(),
		QuantityInStock: qty,
		LedgerSum:       sum,
		Consistent:      qty == sum,
	}, nil
}

func (s *stockLedger) LowStock(ctx context.Context) ([]dto.InventoryResponse, error) {
	rows, err := s.inventory.ListLow(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InventoryResponse, 0, len(rows))
	for i := range rows {
		out = append(out, inventoryToResponse(&rows[i]))
	}
	return out, nil
}
