package repository

import (
	"context"
	"time"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository interface {
	FindByProduct(ctx context.Context, productID uuid.UUID) (*model.Inventory, error)
	// LockByProductTx reads the row with SELECT ... FOR UPDATE. Callers locking
	// several products must do so in ascending product id order.
	LockByProductTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*model.Inventory, error)
	// CreateIfMissingTx inserts a zero-quantity row; a concurrent insert wins silently.
	CreateIfMissingTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID) error
	UpdateQuantityTx(ctx context.Context, tx *gorm.DB, inv *model.Inventory) error
	ListLow(ctx context.Context) ([]model.Inventory, error)
	DB() *gorm.DB
}

type inventoryRepo struct{ db *gorm.DB }

func NewInventoryRepository(db *gorm.DB) InventoryRepository { return &inventoryRepo{db: db} }

func (r *inventoryRepo) DB() *gorm.DB { return r.db }

func (r *inventoryRepo) FindByProduct(ctx context.Context, productID uuid.UUID) (*model.Inventory, error) {
	var inv model.Inventory
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *inventoryRepo) LockByProductTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*model.Inventory, error) {
	var inv model.Inventory
	err := conn(ctx, r.db, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", productID).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *inventoryRepo) CreateIfMissingTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID) error {
	inv := model.Inventory{ProductID: productID, LastUpdated: time.Now()}
	return conn(ctx, r.db, tx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "product_id"}}, DoNothing: true}).
		Create(&inv).Error
}

func (r *inventoryRepo) UpdateQuantityTx(ctx context.Context, tx *gorm.DB, inv *model.Inventory) error {
	return conn(ctx, r.db, tx).Model(&model.Inventory{}).
		Where("id = ?", inv.ID).
		Updates(map[string]interface{}{
			"quantity_in_stock": inv.QuantityInStock,
			"last_updated":      inv.LastUpdated,
		}).Error
}

func (r *inventoryRepo) ListLow(ctx context.Context) ([]model.Inventory, error) {
	var rows []model.Inventory
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("(reorder_point IS NOT NULL AND quantity_in_stock <= reorder_point) OR " +
			"(reorder_point IS NULL AND minimum_stock IS NOT NULL AND quantity_in_stock <= minimum_stock)").
		Order("quantity_in_stock ASC").
		Find(&rows).Error
	return rows, err
}
