package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseOrderRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, po *model.PurchaseOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.PurchaseOrder, error)
	// LockByIDTx reads the order row FOR UPDATE together with its details.
	LockByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error)
	// UpdateTx persists header amounts/status and every detail's received quantity.
	UpdateTx(ctx context.Context, tx *gorm.DB, po *model.PurchaseOrder) error
	MarkEmailSent(ctx context.Context, ids []uuid.UUID, at time.Time) error
	NextOrderNumber(ctx context.Context, tx *gorm.DB, day time.Time) (string, error)
	DB() *gorm.DB
}

type purchaseOrderRepo struct{ db *gorm.DB }

func NewPurchaseOrderRepository(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepo{db: db}
}

func (r *purchaseOrderRepo) DB() *gorm.DB { return r.db }

func (r *purchaseOrderRepo) CreateTx(ctx context.Context, tx *gorm.DB, po *model.PurchaseOrder) error {
	db := conn(ctx, r.db, tx)
	if err := db.Omit(clause.Associations).Create(po).Error; err != nil {
		return err
	}
	if len(po.Details) == 0 {
		return nil
	}
	return db.Omit(clause.Associations).Create(&po.Details).Error
}

func (r *purchaseOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Details.Product").
		First(&po, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *purchaseOrderRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.PurchaseOrder, error) {
	var rows []model.PurchaseOrder
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Details.Product").
		Where("id IN ?", ids).
		Find(&rows).Error
	return rows, err
}

func (r *purchaseOrderRepo) LockByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	db := conn(ctx, r.db, tx)
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&po, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := db.Preload("Product").
		Where("purchase_order_id = ?", id).
		Order("id").
		Find(&po.Details).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *purchaseOrderRepo) UpdateTx(ctx context.Context, tx *gorm.DB, po *model.PurchaseOrder) error {
	db := conn(ctx, r.db, tx)
	if err := db.Model(&model.PurchaseOrder{}).Where("id = ?", po.ID).Updates(map[string]interface{}{
		"status":        po.Status,
		"subtotal":      po.Subtotal,
		"tax_amount":    po.TaxAmount,
		"total_amount":  po.TotalAmount,
		"notes":         po.Notes,
		"approved_by":   po.ApprovedBy,
		"received_by":   po.ReceivedBy,
		"received_date": po.ReceivedDate,
		"updated_at":    time.Now(),
	}).Error; err != nil {
		return err
	}
	for _, d := range po.Details {
		if err := db.Model(&model.PurchaseOrderDetail{}).
			Where("id = ?", d.ID).
			Update("received_quantity", d.ReceivedQuantity).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *purchaseOrderRepo) MarkEmailSent(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.PurchaseOrder{}).
		Where("id IN ?", ids).
		Update("email_sent_at", at).Error
}

// NextOrderNumber builds PO<yyyyMMdd>-<seq> from the daily counter.
func (r *purchaseOrderRepo) NextOrderNumber(ctx context.Context, tx *gorm.DB, day time.Time) (string, error) {
	n, err := nextDailyValue(ctx, r.db, tx, "purchase_order", day)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PO%s-%04d", day.Format("20060102"), n), nil
}
