package repository

import (
	"context"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	CreateBatch(ctx context.Context, rows []model.Notification) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]model.Notification, error)
}

type notificationRepo struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) CreateBatch(ctx context.Context, rows []model.Notification) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *notificationRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]model.Notification, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	var rows []model.Notification
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
