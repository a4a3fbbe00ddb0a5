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

type OrderRepository interface {
	// CreateTx inserts the order with its details and payment.
	CreateTx(ctx context.Context, tx *gorm.DB, o *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	// LockByIDTx reads the order row FOR UPDATE with its details and payment.
	LockByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Order, error)
	UpdateStatusTx(ctx context.Context, tx *gorm.DB, o *model.Order) error
	UpdatePaymentTx(ctx context.Context, tx *gorm.DB, p *model.Payment) error
	FindPaymentByReference(ctx context.Context, ref string) (*model.Payment, error)
	SetPaymentIntent(ctx context.Context, paymentID uuid.UUID, ref, url string) error
	NextOrderNumber(ctx context.Context, tx *gorm.DB, day time.Time) (string, error)
	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) CreateTx(ctx context.Context, tx *gorm.DB, o *model.Order) error {
	db := conn(ctx, r.db, tx)
	if err := db.Omit(clause.Associations).Create(o).Error; err != nil {
		return err
	}
	if len(o.Details) > 0 {
		if err := db.Omit(clause.Associations).Create(&o.Details).Error; err != nil {
			return err
		}
	}
	if o.Payment != nil {
		return db.Create(o.Payment).Error
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Details.Product").
		Preload("Payment").
		Preload("Customer").
		First(&o, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) LockByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	db := conn(ctx, r.db, tx)
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := db.Preload("Product").Where("order_id = ?", id).Order("id").Find(&o.Details).Error; err != nil {
		return nil, err
	}
	var p model.Payment
	if err := db.Where("order_id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	o.Payment = &p
	return &o, nil
}

func (r *orderRepo) UpdateStatusTx(ctx context.Context, tx *gorm.DB, o *model.Order) error {
	return conn(ctx, r.db, tx).Model(&model.Order{}).Where("id = ?", o.ID).Updates(map[string]interface{}{
		"status":         o.Status,
		"payment_status": o.PaymentStatus,
		"updated_at":     time.Now(),
	}).Error
}

func (r *orderRepo) UpdatePaymentTx(ctx context.Context, tx *gorm.DB, p *model.Payment) error {
	return conn(ctx, r.db, tx).Model(&model.Payment{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"status":       p.Status,
		"payment_date": p.PaymentDate,
		"notes":        p.Notes,
		"updated_at":   time.Now(),
	}).Error
}

func (r *orderRepo) FindPaymentByReference(ctx context.Context, ref string) (*model.Payment, error) {
	var p model.Payment
	if err := r.db.WithContext(ctx).Where("transaction_ref = ?", ref).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *orderRepo) SetPaymentIntent(ctx context.Context, paymentID uuid.UUID, ref, url string) error {
	return r.db.WithContext(ctx).Model(&model.Payment{}).Where("id = ?", paymentID).Updates(map[string]interface{}{
		"transaction_ref": ref,
		"payment_url":     url,
	}).Error
}

// NextOrderNumber builds HD<yyyyMMdd>-<seq> from the daily counter.
func (r *orderRepo) NextOrderNumber(ctx context.Context, tx *gorm.DB, day time.Time) (string, error) {
	n, err := nextDailyValue(ctx, r.db, tx, "order", day)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("HD%s-%04d", day.Format("20060102"), n), nil
}
