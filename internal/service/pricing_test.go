package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/apierror"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectivePrice_LatestValidRowWins(t *testing.T) {
	repo := &stubPriceRepo{}
	pricing := service.NewPricingResolver(repo)
	pid := uuid.New()
	now := time.Now()

	repo.add(pid, "900", "600", now.Add(-48*time.Hour))
	repo.add(pid, "1000", "700", now.Add(-time.Hour))
	repo.add(pid, "1200", "800", now.Add(time.Hour)) // not yet valid

	p, err := pricing.EffectivePrice(context.Background(), pid, now)
	require.NoError(t, err)
	assert.True(t, p.UnitPrice.Equal(dec("1000")))
	assert.True(t, p.CostPrice.Equal(dec("700")))

	p, err = pricing.EffectivePrice(context.Background(), pid, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, p.UnitPrice.Equal(dec("1200")))
}

func TestEffectivePrice_NoneValid(t *testing.T) {
	repo := &stubPriceRepo{}
	pricing := service.NewPricingResolver(repo)
	pid := uuid.New()
	repo.add(pid, "1000", "700", time.Now().Add(time.Hour))

	_, err := pricing.EffectivePrice(context.Background(), pid, time.Now())
	assert.True(t, apierror.Is(err, apierror.KindNoEffectivePrice))
}

func TestUpdateCostPrice_PatchesCurrentRow(t *testing.T) {
	repo := &stubPriceRepo{}
	pricing := service.NewPricingResolver(repo)
	pid := uuid.New()
	now := time.Now()
	repo.add(pid, "1000", "700", now.Add(-time.Hour))

	require.NoError(t, pricing.UpdateCostPrice(context.Background(), nil, pid, dec("750"), now))

	require.Len(t, repo.rows, 1)
	assert.True(t, repo.rows[0].CostPrice.Equal(dec("750")))
	assert.True(t, repo.rows[0].UnitPrice.Equal(dec("1000")))
}

func TestUpdateCostPrice_AppendsWhenNoCurrentRow(t *testing.T) {
	repo := &stubPriceRepo{}
	pricing := service.NewPricingResolver(repo)
	pid := uuid.New()
	now := time.Now()

	require.NoError(t, pricing.UpdateCostPrice(context.Background(), nil, pid, dec("750"), now))

	require.Len(t, repo.rows, 1)
	row := repo.rows[0]
	assert.True(t, row.UnitPrice.Equal(dec("750")))
	assert.True(t, row.CostPrice.Equal(dec("750")))
	assert.True(t, row.ValidFrom.Equal(now))
}

func TestHistory_NewestFirst(t *testing.T) {
	repo := &stubPriceRepo{}
	pricing := service.NewPricingResolver(repo)
	pid := uuid.New()
	now := time.Now()
	repo.add(pid, "900", "600", now.Add(-48*time.Hour))
	repo.add(pid, "1000", "700", now.Add(-time.Hour))

	rows, err := pricing.History(context.Background(), pid)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].UnitPrice.Equal(dec("1000")))
}

