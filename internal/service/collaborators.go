package service

import (
	"context"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/infra"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/model"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/repository"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Notifier accepts staff notifications. *worker.Dispatcher implements it.
type Notifier interface {
	EnqueueNotification(ctx context.Context, job worker.NotificationJob) error
}

// Mailer sends HTML mail. *infra.Mailer implements it.
type Mailer interface {
	SendHTML(to []string, subject, body string, attachments ...infra.Attachment) error
}

// PaymentGateway registers e-wallet payments. *infra.MomoClient implements it.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, req infra.PaymentIntentRequest) (*infra.PaymentIntent, error)
}

// notify is fire-and-forget: a failed enqueue is logged and never reaches
// the caller.
func notify(ctx context.Context, n Notifier, job worker.NotificationJob) {
	if n == nil || len(job.AccountIDs) == 0 {
		return
	}
	if err := n.EnqueueNotification(ctx, job); err != nil {
		log.Warn().Err(err).Str("type", job.Type).Msg("failed to enqueue notification")
	}
}

// accountsWith returns the ids of active accounts holding permission.
// Lookup failures are logged and yield no recipients.
func accountsWith(ctx context.Context, accounts repository.AccountRepository, permission string) []uuid.UUID {
	if accounts == nil {
		return nil
	}
	rows, err := accounts.ListByPermission(ctx, permission)
	if err != nil {
		log.Warn().Err(err).Str("permission", permission).Msg("failed to load notification targets")
		return nil
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, a := range rows {
		ids = append(ids, a.ID)
	}
	return ids
}

// mergeIDs returns the union of its arguments, preserving first-seen order.
func mergeIDs(groups ...[]uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, g := range groups {
		for _, id := range g {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

func productName(p *model.Product, id uuid.UUID) string {
	if p != nil && p.Name != "" {
		return p.Name
	}
	return id.String()
}
