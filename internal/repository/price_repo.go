package repository

import (
	"context"
	"time"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PriceRepository interface {
	// FindEffective returns the latest row with valid_from <= asOf; ties go
	// to the most recently created row.
	FindEffective(ctx context.Context, tx *gorm.DB, productID uuid.UUID, asOf time.Time) (*model.ProductPrice, error)
	CreateTx(ctx context.Context, tx *gorm.DB, p *model.ProductPrice) error
	UpdateCostTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, cost decimal.Decimal) error
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.ProductPrice, error)
}

type priceRepo struct{ db *gorm.DB }

func NewPriceRepository(db *gorm.DB) PriceRepository { return &priceRepo{db: db} }

func (r *priceRepo) FindEffective(ctx context.Context, tx *gorm.DB, productID uuid.UUID, asOf time.Time) (*model.ProductPrice, error) {
	var p model.ProductPrice
	err := conn(ctx, r.db, tx).
		Where("product_id = ? AND valid_from <= ?", productID, asOf).
		Order("valid_from DESC, created_date DESC").
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *priceRepo) CreateTx(ctx context.Context, tx *gorm.DB, p *model.ProductPrice) error {
	return conn(ctx, r.db, tx).Create(p).Error
}

func (r *priceRepo) UpdateCostTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, cost decimal.Decimal) error {
	return conn(ctx, r.db, tx).Model(&model.ProductPrice{}).
		Where("id = ?", id).
		Update("cost_price", cost).Error
}

func (r *priceRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.ProductPrice, error) {
	var rows []model.ProductPrice
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("valid_from DESC, created_date DESC").
		Find(&rows).Error
	return rows, err
}
