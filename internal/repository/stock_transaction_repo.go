package repository

import (
	"context"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockTransactionFilter defines filters for listing ledger entries.
type StockTransactionFilter struct {
	ProductID   *uuid.UUID
	ReferenceID *uuid.UUID
	Type        string
	Page        int
	Limit       int
}

type StockTransactionRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, t *model.StockTransaction) error
	List(ctx context.Context, filter StockTransactionFilter) ([]model.StockTransaction, int64, error)
	// SumChange returns the signed total of all entries for a product.
	SumChange(ctx context.Context, productID uuid.UUID) (int, error)
}

type stockTransactionRepo struct{ db *gorm.DB }

func NewStockTransactionRepository(db *gorm.DB) StockTransactionRepository {
	return &stockTransactionRepo{db: db}
}

func (r *stockTransactionRepo) CreateTx(ctx context.Context, tx *gorm.DB, t *model.StockTransaction) error {
	return conn(ctx, r.db, tx).Create(t).Error
}

func (r *stockTransactionRepo) List(ctx context.Context, filter StockTransactionFilter) ([]model.StockTransaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockTransaction{})
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.ReferenceID != nil {
		q = q.Where("reference_id = ?", *filter.ReferenceID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var rows []model.StockTransaction
	err := q.Preload("Product").Order("created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}

func (r *stockTransactionRepo) SumChange(ctx context.Context, productID uuid.UUID) (int, error) {
	var sum int
	err := r.db.WithContext(ctx).Model(&model.StockTransaction{}).
		Select("COALESCE(SUM(quantity_change), 0)").
		Where("product_id = ?", productID).
		Scan(&sum).Error
	return sum, err
}
