package usecase

import (
	"context"
	"time"

	"ScoreFuse/internal/domain/models"
	domrepo "ScoreFuse/internal/domain/repository"
	"ScoreFuse/pkg/util"
)

// HistoryUsecase serves read queries over the append-only score history.
type HistoryUsecase struct {
	history domrepo.HistoryStore
}

// NewHistoryUsecase creates a new HistoryUsecase.
func NewHistoryUsecase(history domrepo.HistoryStore) *HistoryUsecase {
	return &HistoryUsecase{history: history}
}

// Stats returns rolling statistics over the last n records for a symbol.
func (u *HistoryUsecase) Stats(ctx context.Context, symbol string, lastN int) (models.HistoryStats, error) {
	return u.history.Stats(ctx, util.NormalizeSymbol(symbol), lastN)
}

// PatternCounts returns how often each pattern fired for a symbol.
func (u *HistoryUsecase) PatternCounts(ctx context.Context, symbol string) (map[string]int, error) {
	return u.history.PatternCounts(ctx, util.NormalizeSymbol(symbol))
}

// Range returns records in [from, to], newest first, capped at limit.
// Empty bounds default to the last 24 hours.
func (u *HistoryUsecase) Range(ctx context.Context, symbol, fromRaw, toRaw string, limit int) ([]models.HistoryRecord, error) {
	now := time.Now()
	to := util.ParseTimeDefault(toRaw, now)
	from := util.ParseTimeDefault(fromRaw, to.Add(-24*time.Hour))
	return u.history.Range(ctx, util.NormalizeSymbol(symbol), from, to, limit)
}
