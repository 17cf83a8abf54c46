package repository

import (
	"context"
	"time"

	"ScoreFuse/internal/domain/models"
)

// AmbientStore holds the externally-mutable shared configuration: the
// market condition and the per-source reliability priors. Snapshot returns
// one consistent view read at the start of a computation; the engine never
// re-reads mid-computation.
type AmbientStore interface {
	Snapshot(ctx context.Context) (models.MarketCondition, map[models.SourceKind]models.ReliabilityPrior, error)
	Condition(ctx context.Context) (models.MarketCondition, error)
	SetCondition(ctx context.Context, c models.MarketCondition) error
	Priors(ctx context.Context) (map[models.SourceKind]models.ReliabilityPrior, error)
	SetPrior(ctx context.Context, p models.ReliabilityPrior) error
}

// HistoryStore is the append-only audit log. Records are immutable once
// written; appends for the same symbol are serialized, different symbols
// never contend.
type HistoryStore interface {
	Append(ctx context.Context, rec models.HistoryRecord) error
	Stats(ctx context.Context, symbol string, lastN int) (models.HistoryStats, error)
	PatternCounts(ctx context.Context, symbol string) (map[string]int, error)
	Range(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.HistoryRecord, error)
	Close() error
}

// ResultPublisher pushes finished aggregation results to downstream
// consumers.
type ResultPublisher interface {
	Publish(ctx context.Context, res models.AggregationResult) error
	Close() error
}

// ScoreStream is a push feed of source-score updates from the upstream
// analyzers.
type ScoreStream interface {
	Connect(ctx context.Context) error
	Read(ctx context.Context) (<-chan models.ScoreEvent, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Metrics abstracts the operational counters so use cases stay free of the
// Prometheus client.
type Metrics interface {
	RecordComputation(symbol, recommendation string, finalScore float64)
	RecordSourceDrop(kind, reason string)
	RecordInsufficientData(symbol string)
	RecordPublishError(target string)
	RecordLatency(op string, seconds float64)
}
