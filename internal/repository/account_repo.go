package repository

import (
	"context"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountRepository interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Account, error)
	// ListByPermission returns active accounts holding the capability.
	ListByPermission(ctx context.Context, permission string) ([]model.Account, error)
}

type accountRepo struct{ db *gorm.DB }

func NewAccountRepository(db *gorm.DB) AccountRepository { return &accountRepo{db: db} }

func (r *accountRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Account, error) {
	var accounts []model.Account
	if len(ids) == 0 {
		return accounts, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&accounts).Error
	return accounts, err
}

func (r *accountRepo) ListByPermission(ctx context.Context, permission string) ([]model.Account, error) {
	var accounts []model.Account
	err := r.db.WithContext(ctx).
		Joins("JOIN account_permissions ap ON ap.account_id = accounts.id").
		Where("ap.permission = ? AND accounts.active = true", permission).
		Find(&accounts).Error
	return accounts, err
}
