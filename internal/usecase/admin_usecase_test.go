package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ScoreFuse/internal/domain/models"
)

func TestAdminSetCondition(t *testing.T) {
	ambient := &fakeAmbient{condition: models.ConditionNormal}
	u := NewAdminUsecase(ambient, testLogger(t))
	ctx := context.Background()

	cond, err := u.SetCondition(ctx, "HIGH_VOLATILITY")
	require.NoError(t, err)
	assert.Equal(t, models.ConditionHighVolatility, cond)

	got, err := u.Condition(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ConditionHighVolatility, got)
}

func TestAdminSetConditionRejectsUnknown(t *testing.T) {
	u := NewAdminUsecase(&fakeAmbient{condition: models.ConditionNormal}, testLogger(t))

	_, err := u.SetCondition(context.Background(), "MOONSHOT")
	assert.Error(t, err)
}

func TestAdminSetPrior(t *testing.T) {
	ambient := &fakeAmbient{}
	u := NewAdminUsecase(ambient, testLogger(t))
	ctx := context.Background()

	p, err := u.SetPrior(ctx, "LIQUIDATION", 0.8)
	require.NoError(t, err)
	assert.Equal(t, models.SourceLiquidation, p.Kind)
	assert.Equal(t, 0.8, p.Prior)
	assert.False(t, p.UpdatedAt.IsZero())

	priors, err := u.Priors(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.8, priors[models.SourceLiquidation].Prior)
}

func TestAdminSetPriorValidation(t *testing.T) {
	u := NewAdminUsecase(&fakeAmbient{}, testLogger(t))
	ctx := context.Background()

	_, err := u.SetPrior(ctx, "SENTIMENT", 0.5)
	assert.Error(t, err)

	_, err = u.SetPrior(ctx, "RISK", 1.5)
	assert.Error(t, err)

	_, err = u.SetPrior(ctx, "RISK", -0.1)
	assert.Error(t, err)
}

func TestHistoryUsecaseNormalizesSymbol(t *testing.T) {
	h := &fakeHistory{}
	u := NewHistoryUsecase(h)

	stats, err := u.Stats(context.Background(), " btc-usdt ", 10)
	require.NoError(t, err)
	assert.Equal(t, "BTC-USDT", stats.Symbol)
}
