package worker

// scheduler.go
// Background goroutine that periodically checks for low stock and retires
// expired promotions. Runs outside the transactional core and only reads
// through the same service APIs the HTTP layer uses.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/dto"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/model"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const defaultSchedulerInterval = time.Hour

// LowStockSource lists inventories at or below their reorder threshold.
type LowStockSource interface {
	LowStock(ctx context.Context) ([]dto.InventoryResponse, error)
}

// PromotionExpirer retires promotions whose window has ended.
type PromotionExpirer interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int, error)
}

// Enqueuer accepts notification jobs.
type Enqueuer interface {
	EnqueueNotification(ctx context.Context, job NotificationJob) error
}

// SchedulerConfig holds all dependencies for the scheduler goroutine.
type SchedulerConfig struct {
	Inventory  LowStockSource
	Promotions PromotionExpirer
	Accounts   repository.AccountRepository
	Notifier   Enqueuer
	Interval   time.Duration
}

// StartScheduler launches the ticker goroutine. It respects the context for
// graceful shutdown.
func StartScheduler(ctx context.Context, cfg SchedulerConfig) {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultSchedulerInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("scheduler: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("scheduler: shutting down")
				return
			case <-ticker.C:
				RunScheduledChecks(ctx, cfg)
			}
		}
	}()
}

// RunScheduledChecks performs one tick of every periodic job.
func RunScheduledChecks(ctx context.Context, cfg SchedulerConfig) {
	if cfg.Promotions != nil {
		n, err := cfg.Promotions.DeactivateExpired(ctx, time.Now())
		if err != nil {
			log.Error().Err(err).Msg("scheduler: promotion expiry failed")
		} else if n > 0 {
			log.Info().Int("products", n).Msg("scheduler: expired promotions deactivated")
		}
	}
	if cfg.Inventory != nil {
		checkLowStock(ctx, cfg)
	}
}

func checkLowStock(ctx context.Context, cfg SchedulerConfig) {
	items, err := cfg.Inventory.LowStock(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduler: low stock query failed")
		return
	}
	if len(items) == 0 {
		return
	}

	managers, err := cfg.Accounts.ListByPermission(ctx, model.PermInventoryManage)
	if err != nil {
		log.Error().Err(err).Msg("scheduler: failed to load inventory managers")
		return
	}
	if len(managers) == 0 || cfg.Notifier == nil {
		log.Warn().Int("products", len(items)).Msg("scheduler: low stock but nobody to notify")
		return
	}

	ids := make([]uuid.UUID, 0, len(managers))
	for _, m := range managers {
		ids = append(ids, m.ID)
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		name := it.ProductName
		if name == "" {
			name = it.ProductID
		}
		lines = append(lines, fmt.Sprintf("%s: %d in stock", name, it.QuantityInStock))
	}

	job := NotificationJob{
		AccountIDs:  ids,
		Type:        NotifyLowStock,
		Message:     fmt.Sprintf("%d products are low on stock", len(items)),
		Description: strings.Join(lines, "; "),
		Email:       true,
	}
	if err := cfg.Notifier.EnqueueNotification(ctx, job); err != nil {
		log.Error().Err(err).Msg("scheduler: failed to enqueue low stock notification")
	}
}
