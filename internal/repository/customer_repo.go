package repository

import (
	"context"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerRepository interface {
	FindByPhone(ctx context.Context, phone string) (*model.Customer, error)
	// LockByIDTx reads the customer with FOR UPDATE so concurrent orders
	// cannot interleave point updates.
	LockByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Customer, error)
	UpdatePointsTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, points int) error
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) FindByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	var c model.Customer
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepo) LockByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := conn(ctx, r.db, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepo) UpdatePointsTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, points int) error {
	return conn(ctx, r.db, tx).Model(&model.Customer{}).
		Where("id = ?", id).
		Update("loyalty_points", points).Error
}
