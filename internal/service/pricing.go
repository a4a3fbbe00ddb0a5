package service

import (
	"context"
	"fmt"
	"time"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/apierror"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/dto"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/model"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PricingResolver reads and maintains the time-windowed price history.
type PricingResolver interface {
	EffectivePrice(ctx context.Context, productID uuid.UUID, asOf time.Time) (*model.ProductPrice, error)
	GetEffectivePrice(ctx context.Context, productID uuid.UUID, asOf time.Time) (*dto.EffectivePriceResponse, error)
	// UpdateCostPrice patches the row effective at asOf, or appends one with
	// unit and cost price both set to cost.
	UpdateCostPrice(ctx context.Context, tx *gorm.DB, productID uuid.UUID, cost decimal.Decimal, asOf time.Time) error
	History(ctx context.Context, productID uuid.UUID) ([]dto.EffectivePriceResponse, error)
}

type pricingResolver struct {
	repo repository.PriceRepository
}

func NewPricingResolver(repo repository.PriceRepository) PricingResolver {
	return &pricingResolver{repo: repo}
}

func (s *pricingResolver) EffectivePrice(ctx context.Context, productID uuid.UUID, asOf time.Time) (*model.ProductPrice, error) {
	p, err := s.repo.FindEffective(ctx, nil, productID, asOf)
	if repository.IsNotFound(err) {
		return nil, apierror.NoEffectivePrice(productID)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve price for %s: %w", productID, err)
	}
	return p, nil
}

func (s *pricingResolver) GetEffectivePrice(ctx context.Context, productID uuid.UUID, asOf time.Time) (*dto.EffectivePriceResponse, error) {
	p, err := s.EffectivePrice(ctx, productID, asOf)
	if err != nil {
		return nil, err
	}
	resp := priceToResponse(p)
	return &resp, nil
}

func (s *pricingResolver) UpdateCostPrice(ctx context.Context, tx *gorm.DB, productID uuid.UUID, cost decimal.Decimal, asOf time.Time) error {
	cost = money(cost)
	current, err := s.repo.FindEffective(ctx, tx, productID, asOf)
	switch {
	case err == nil:
		return s.repo.UpdateCostTx(ctx, tx, current.ID, cost)
	case repository.IsNotFound(err):
		return s.repo.CreateTx(ctx, tx, &model.ProductPrice{
			ProductID: productID,
			UnitPrice: cost,
			CostPrice: cost,
			ValidFrom: asOf,
		})
	default:
		return fmt.Errorf("resolve price for %s: %w", productID, err)
	}
}

func (s *pricingResolver) History(ctx context.Context, productID uuid.UUID) ([]dto.EffectivePriceResponse, error) {
	rows, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EffectivePriceResponse, 0, len(rows))
	for i := range rows {
		out = append(out, priceToResponse(&rows[i]))
	}
	return out, nil
}
