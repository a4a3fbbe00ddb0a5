package repository

import (
	"context"
	"time"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PromotionRepository interface {
	// ListActiveByProduct returns active promotions containing the product.
	// Callers check the date window themselves.
	ListActiveByProduct(ctx context.Context, productID uuid.UUID) ([]model.Promotion, error)
	// DeactivateExpired flips active promotions ended by now and returns the
	// ids of the products they covered.
	DeactivateExpired(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

type promotionRepo struct{ db *gorm.DB }

func NewPromotionRepository(db *gorm.DB) PromotionRepository { return &promotionRepo{db: db} }

func (r *promotionRepo) ListActiveByProduct(ctx context.Context, productID uuid.UUID) ([]model.Promotion, error) {
	var promos []model.Promotion
	err := r.db.WithContext(ctx).
		Joins("JOIN promotion_products pp ON pp.promotion_id = promotions.id").
		Where("pp.product_id = ? AND promotions.active = true", productID).
		Find(&promos).Error
	return promos, err
}

func (r *promotionRepo) DeactivateExpired(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	var productIDs []uuid.UUID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID
		if err := tx.Model(&model.Promotion{}).
			Where("active = true AND end_date <= ?", now).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Table("promotion_products").
			Where("promotion_id IN ?", ids).
			Distinct().
			Pluck("product_id", &productIDs).Error; err != nil {
			return err
		}
		return tx.Model(&model.Promotion{}).Where("id IN ?", ids).Update("active", false).Error
	})
	return productIDs, err
}
