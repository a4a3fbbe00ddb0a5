package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/model"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const promotionCachePrefix = "promo:product:"

// PromotionResolver picks the best discount a product qualifies for.
type PromotionResolver interface {
	BestDiscountPercent(ctx context.Context, productID uuid.UUID, unitPrice decimal.Decimal, asOf time.Time) (decimal.Decimal, error)
	// DeactivateExpired retires ended promotions and returns how many
	// products were affected.
	DeactivateExpired(ctx context.Context, now time.Time) (int, error)
}

type promotionResolver struct {
	repo repository.PromotionRepository
	rdb  *redis.Client
	ttl  time.Duration
}

// NewPromotionResolver creates a resolver. rdb may be nil, which disables
// the candidate cache.
func NewPromotionResolver(repo repository.PromotionRepository, rdb *redis.Client, ttl time.Duration) PromotionResolver {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &promotionResolver{repo: repo, rdb: rdb, ttl: ttl}
}

// ── BestDiscountPercent ───────────────────────────────────────────────────────
// percent promotions count as-is, fixed amounts convert to value/price×100;
// the maximum wins, clamped to [0,100] and rounded to 2 places.

func (s *promotionResolver) BestDiscountPercent(ctx context.Context, productID uuid.UUID, unitPrice decimal.Decimal, asOf time.Time) (decimal.Decimal, error) {
	promos, err := s.candidates(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}

	best := decimal.Zero
	for i := range promos {
		p := &promos[i]
		if !p.Active || !p.Covers(asOf) {
			continue
		}
		var pct decimal.Decimal
		switch p.DiscountType {
		case model.DiscountPercent:
			pct = p.DiscountValue
		case model.DiscountFixedAmount:
			if !unitPrice.IsPositive() {
				continue
			}
			pct = p.DiscountValue.Div(unitPrice).Mul(hundred)
		default:
			continue
		}
		if pct.GreaterThan(best) {
			best = pct
		}
	}

	if best.GreaterThan(hundred) {
		best = hundred
	}
	if best.IsNegative() {
		best = decimal.Zero
	}
	return best.Round(2), nil
}

// candidates returns the active promotions of a product, from Redis when
// cached. Cache errors fall through to the database.
func (s *promotionResolver) candidates(ctx context.Context, productID uuid.UUID) ([]model.Promotion, error) {
	key := promotionCachePrefix + productID.String()
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var cached []model.Promotion
			if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
				return cached, nil
			}
		} else if err != redis.Nil {
			log.Debug().Err(err).Str("key", key).Msg("promotion cache read failed")
		}
	}

	promos, err := s.repo.ListActiveByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(promos); err == nil {
			if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
				log.Debug().Err(err).Str("key", key).Msg("promotion cache write failed")
			}
		}
	}
	return promos, nil
}

func (s *promotionResolver) DeactivateExpired(ctx context.Context, now time.Time) (int, error) {
	productIDs, err := s.repo.DeactivateExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	if s.rdb != nil && len(productIDs) > 0 {
		keys := make([]string, 0, len(productIDs))
		for _, id := range productIDs {
			keys = append(keys, promotionCachePrefix+id.String())
		}
		if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
			log.Warn().Err(err).Msg("failed to drop promotion cache keys")
		}
	}
	return len(productIDs), nil
}
