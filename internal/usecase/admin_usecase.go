package usecase

import (
	"context"
	"fmt"
	"time"

	"ScoreFuse/internal/domain/models"
	domrepo "ScoreFuse/internal/domain/repository"
	applogger "ScoreFuse/pkg/logger"
)

// AdminUsecase owns the externally-mutable ambient state: the market
// condition and the per-source reliability priors.
type AdminUsecase struct {
	ambient domrepo.AmbientStore
	l       *applogger.Logger
}

// NewAdminUsecase creates a new AdminUsecase.
func NewAdminUsecase(ambient domrepo.AmbientStore, l *applogger.Logger) *AdminUsecase {
	return &AdminUsecase{ambient: ambient, l: l}
}

// Condition returns the current market condition.
func (u *AdminUsecase) Condition(ctx context.Context) (models.MarketCondition, error) {
	return u.ambient.Condition(ctx)
}

// SetCondition validates and stores the market condition. It applies to
// computations that start after it returns; in-flight computations keep
// their snapshot.
func (u *AdminUsecase) SetCondition(ctx context.Context, raw string) (models.MarketCondition, error) {
	cond, err := models.ParseMarketCondition(raw)
	if err != nil {
		return "", err
	}
	if err := u.ambient.SetCondition(ctx, cond); err != nil {
		return "", err
	}
	u.l.Info("market condition updated", applogger.String("condition", string(cond)))
	return cond, nil
}

// Priors returns the stored reliability priors. Kinds without a stored
// prior are absent; the engine substitutes its default.
func (u *AdminUsecase) Priors(ctx context.Context) (map[models.SourceKind]models.ReliabilityPrior, error) {
	return u.ambient.Priors(ctx)
}

// SetPrior validates and stores one source's reliability prior.
func (u *AdminUsecase) SetPrior(ctx context.Context, kind string, prior float64) (models.ReliabilityPrior, error) {
	k, err := models.ParseSourceKind(kind)
	if err != nil {
		return models.ReliabilityPrior{}, err
	}
	if prior < 0 || prior > 1 {
		return models.ReliabilityPrior{}, fmt.Errorf("prior must be in [0,1], got %v", prior)
	}
	p := models.ReliabilityPrior{Kind: k, Prior: prior, UpdatedAt: time.Now()}
	if err := u.ambient.SetPrior(ctx, p); err != nil {
		return models.ReliabilityPrior{}, err
	}
	u.l.Info("reliability prior updated",
		applogger.String("kind", string(k)),
		applogger.Float64("prior", prior),
	)
	return p, nil
}
