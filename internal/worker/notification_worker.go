package worker

// notification_worker.go
// Persists staff notifications from QueueNotification and, when asked,
// mirrors them by email to the target accounts.

import (
	"context"
	"encoding/json"
	"fmt"
	"html"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/infra"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/model"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Notification types.
const (
	NotifyPurchaseOrderCreated   = "purchase_order_created"
	NotifyPurchaseOrderApproved  = "purchase_order_approved"
	NotifyPurchaseOrderReceived  = "purchase_order_received"
	NotifyPurchaseOrderCancelled = "purchase_order_cancelled"
	NotifyPurchaseOrderReverted  = "purchase_order_reverted"
	NotifyLowStock               = "low_stock"
)

// NotificationJob is the payload sent to QueueNotification.
type NotificationJob struct {
	AccountIDs  []uuid.UUID `json:"account_ids"`
	Type        string      `json:"type"`
	Message     string      `json:"message"`
	Description string      `json:"description"`
	ReferenceID *uuid.UUID  `json:"reference_id,omitempty"`
	Email       bool        `json:"email"`
}

// Mailer is the subset of infra.Mailer the worker needs.
type Mailer interface {
	SendHTML(to []string, subject, body string, attachments ...infra.Attachment) error
}

// NotificationWorker processes jobs from QueueNotification.
type NotificationWorker struct {
	repo     repository.NotificationRepository
	accounts repository.AccountRepository
	mailer   Mailer
}

// NewNotificationWorker creates a NotificationWorker. mailer may be nil.
func NewNotificationWorker(repo repository.NotificationRepository, accounts repository.AccountRepository, mailer Mailer) *NotificationWorker {
	return &NotificationWorker{repo: repo, accounts: accounts, mailer: mailer}
}

// Process stores one notification row per target account.
func (w *NotificationWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var job NotificationJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return fmt.Errorf("notification_worker: invalid payload: %w", err)
	}
	if len(job.AccountIDs) == 0 {
		log.Warn().Str("type", job.Type).Msg("notification_worker: no recipients, skipping")
		return nil
	}

	rows := make([]model.Notification, 0, len(job.AccountIDs))
	for _, id := range job.AccountIDs {
		rows = append(rows, model.Notification{
			AccountID:   id,
			Type:        job.Type,
			Message:     job.Message,
			Description: job.Description,
			ReferenceID: job.ReferenceID,
		})
	}
	if err := w.repo.CreateBatch(ctx, rows); err != nil {
		return fmt.Errorf("notification_worker: persist: %w", err)
	}

	if job.Email && w.mailer != nil {
		w.mirrorByEmail(ctx, job)
	}
	return nil
}

// mirrorByEmail is best effort; the rows are already stored so a retry
// would duplicate them.
func (w *NotificationWorker) mirrorByEmail(ctx context.Context, job NotificationJob) {
	accounts, err := w.accounts.FindByIDs(ctx, job.AccountIDs)
	if err != nil {
		log.Error().Err(err).Msg("notification_worker: failed to load recipients")
		return
	}
	var to []string
	for _, a := range accounts {
		if a.Email != nil && *a.Email != "" {
			to = append(to, *a.Email)
		}
	}
	if len(to) == 0 {
		return
	}
	body := "<p>" + html.EscapeString(job.Description) + "</p>"
	if err := w.mailer.SendHTML(to, job.Message, body); err != nil {
		log.Error().Err(err).Str("type", job.Type).Msg("notification_worker: failed to send email")
		return
	}
	log.Info().Str("type", job.Type).Int("recipients", len(to)).Msg("notification_worker: email sent")
}
