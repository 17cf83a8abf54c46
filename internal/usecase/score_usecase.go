package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ScoreFuse/internal/domain/models"
	domrepo "ScoreFuse/internal/domain/repository"
	"ScoreFuse/internal/engine"
	applogger "ScoreFuse/pkg/logger"
	"ScoreFuse/pkg/util"
)

// ErrInsufficientData is re-exported so transport code does not import the
// engine package directly.
var ErrInsufficientData = engine.ErrInsufficientData

// ScoreUsecase runs one aggregation pass end to end: ambient snapshot,
// engine computation, history append, downstream publish.
type ScoreUsecase struct {
	engine    *engine.Engine
	ambient   domrepo.AmbientStore
	history   domrepo.HistoryStore
	publisher domrepo.ResultPublisher
	metrics   domrepo.Metrics
	l         *applogger.Logger
}

// NewScoreUsecase creates a new ScoreUsecase.
func NewScoreUsecase(
	eng *engine.Engine,
	ambient domrepo.AmbientStore,
	history domrepo.HistoryStore,
	publisher domrepo.ResultPublisher,
	metrics domrepo.Metrics,
	l *applogger.Logger,
) *ScoreUsecase {
	return &ScoreUsecase{
		engine:    eng,
		ambient:   ambient,
		history:   history,
		publisher: publisher,
		metrics:   metrics,
		l:         l,
	}
}

// Compute aggregates the given source scores for a symbol. The ambient
// state is read once up front; the record is appended and published before
// returning.
func (u *ScoreUsecase) Compute(ctx context.Context, symbol string, scores []models.SourceScore) (models.AggregationResult, error) {
	start := time.Now()
	symbol = util.NormalizeSymbol(symbol)

	condition, priors, err := u.ambient.Snapshot(ctx)
	if err != nil {
		return models.AggregationResult{}, fmt.Errorf("ambient snapshot: %w", err)
	}

	res, err := u.engine.Compute(
		engine.Input{Symbol: symbol, Scores: scores, Now: time.Now()},
		engine.Snapshot{Condition: condition, Priors: priors},
	)
	if err != nil {
		if errors.Is(err, engine.ErrInsufficientData) {
			u.metrics.RecordInsufficientData(symbol)
		}
		return models.AggregationResult{}, err
	}

	for _, d := range res.DroppedSources {
		kind, reason, ok := strings.Cut(d, ": ")
		if !ok {
			kind, reason = d, "unknown"
		}
		u.metrics.RecordSourceDrop(kind, reason)
	}
	u.metrics.RecordComputation(symbol, string(res.Recommendation), res.FinalScore)

	rec := models.HistoryRecord{
		Symbol:     symbol,
		Result:     res,
		Inputs:     scores,
		Condition:  condition,
		Priors:     priors,
		RecordedAt: res.Timestamp,
	}
	if err := u.history.Append(ctx, rec); err != nil {
		// History is an audit trail, not part of the computation contract.
		u.l.Error("history append failed",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
	}

	if err := u.publisher.Publish(ctx, res); err != nil {
		u.metrics.RecordPublishError("kafka")
		u.l.Error("result publish failed",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
	}

	u.metrics.RecordLatency("compute", time.Since(start).Seconds())
	u.l.Info("score computed",
		applogger.String("symbol", symbol),
		applogger.Float64("final_score", res.FinalScore),
		applogger.String("recommendation", string(res.Recommendation)),
		applogger.Float64("confidence", res.Confidence),
	)
	return res, nil
}

// ComputeRequest converts an HTTP request payload, runs the computation and
// applies the legacy scale at the boundary when asked for.
func (u *ScoreUsecase) ComputeRequest(ctx context.Context, req models.ScoreRequest) (models.AggregationResult, error) {
	scores := make([]models.SourceScore, 0, len(req.Scores))
	now := time.Now()
	for _, in := range req.Scores {
		s := models.SourceScore{
			Kind:         models.SourceKind(in.Kind),
			Value:        in.Value,
			Confidence:   in.Confidence,
			ObservedAt:   util.ParseTimeDefault(in.ObservedAt, now),
			Completeness: in.Completeness,
			LongWinRate:  in.LongWinRate,
			ShortWinRate: in.ShortWinRate,
		}
		if req.Legacy {
			s.Value = engine.FromLegacyScale(s.Value)
		}
		for _, p := range in.Patterns {
			s.Patterns = append(s.Patterns, models.PatternFlag{
				Name:      p.Name,
				Direction: models.PatternDirection(p.Direction),
				Strength:  p.Strength,
			})
		}
		scores = append(scores, s)
	}

	res, err := u.Compute(ctx, req.Symbol, scores)
	if err != nil {
		return models.AggregationResult{}, err
	}

	if req.Legacy {
		res.FinalScore = engine.ToLegacyScale(res.FinalScore)
	}
	return res, nil
}

// ComputeFromCollected scores a symbol from already-canonical source scores
// (the collector's latest stream state), applying the legacy scale on the
// way out when asked for.
func (u *ScoreUsecase) ComputeFromCollected(ctx context.Context, symbol string, scores []models.SourceScore, legacy bool) (models.AggregationResult, error) {
	res, err := u.Compute(ctx, symbol, scores)
	if err != nil {
		return models.AggregationResult{}, err
	}
	if legacy {
		res.FinalScore = engine.ToLegacyScale(res.FinalScore)
	}
	return res, nil
}

// Close releases downstream resources owned by the usecase.
func (u *ScoreUsecase) Close() {
	if err := u.publisher.Close(); err != nil {
		u.l.Warn("publisher close error", applogger.Error(err))
	}
	if err := u.history.Close(); err != nil {
		u.l.Warn("history close error", applogger.Error(err))
	}
}
