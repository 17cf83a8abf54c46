package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"ScoreFuse/internal/domain/models"
	drepo "ScoreFuse/internal/domain/repository"
	icache "ScoreFuse/internal/service/cache"
	applogger "ScoreFuse/pkg/logger"
	"ScoreFuse/pkg/util"
)

// ScoreCollector consumes the upstream score feed, remembers the latest
// score per symbol and kind, and recomputes a symbol's aggregation whenever
// one of its sources updates. Cached scores expire after ttl so a silent
// provider drops out of the fusion naturally.
type ScoreCollector struct {
	stream  drepo.ScoreStream
	scores  *ScoreUsecase
	latest  *icache.TTLCache
	ttl     time.Duration
	closing atomic.Bool
	l       *applogger.Logger
}

// NewScoreCollector creates a new ScoreCollector.
func NewScoreCollector(stream drepo.ScoreStream, scores *ScoreUsecase, ttl time.Duration, l *applogger.Logger) *ScoreCollector {
	return &ScoreCollector{
		stream: stream,
		scores: scores,
		latest: icache.NewTTLCache(),
		ttl:    ttl,
		l:      l,
	}
}

// IsConnected returns true if the score stream is connected.
func (c *ScoreCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Start connects the stream and begins consuming events.
func (c *ScoreCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	go c.consume(ctx)
	return nil
}

func (c *ScoreCollector) consume(ctx context.Context) {
	evCh, errCh := c.stream.Read(ctx)
	for {
		if evCh == nil && errCh == nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err == nil {
				continue
			}
			if c.closing.Load() {
				// Shutdown closed the stream; the read error is expected
				return
			}
			c.l.Warn("score stream error, reconnecting", applogger.Error(err))
			if rerr := c.stream.Reconnect(ctx); rerr != nil {
				c.l.Error("score stream reconnect failed", applogger.Error(rerr))
				return
			}
			// the old read loop is gone, pick up fresh channels
			evCh, errCh = c.stream.Read(ctx)
		case ev, ok := <-evCh:
			if !ok {
				evCh = nil
				continue
			}
			c.handle(ctx, ev)
		}
	}
}

func (c *ScoreCollector) handle(ctx context.Context, ev models.ScoreEvent) {
	c.latest.Set(c.key(ev.Symbol, ev.Score.Kind), ev.Score, c.ttl)

	scores := c.Latest(ev.Symbol)
	if len(scores) == 0 {
		return
	}

	if _, err := c.scores.Compute(ctx, ev.Symbol, scores); err != nil {
		if errors.Is(err, ErrInsufficientData) {
			return
		}
		c.l.Error("feed-triggered computation failed",
			applogger.String("symbol", ev.Symbol),
			applogger.Error(err),
		)
	}
}

// Latest returns the unexpired cached scores for a symbol in canonical
// kind order.
func (c *ScoreCollector) Latest(symbol string) []models.SourceScore {
	out := make([]models.SourceScore, 0, 3)
	for _, k := range models.SourceKinds() {
		if v, ok := c.latest.Get(c.key(symbol, k)); ok {
			if s, ok2 := v.(models.SourceScore); ok2 {
				out = append(out, s)
			}
		}
	}
	return out
}

func (c *ScoreCollector) key(symbol string, kind models.SourceKind) string {
	return fmt.Sprintf("scores:%s:%s", util.NormalizeSymbol(symbol), kind)
}

// Shutdown closes the stream. The closing flag is raised first so consume
// does not treat the resulting read error as a lost connection.
func (c *ScoreCollector) Shutdown(ctx context.Context) error {
	c.closing.Store(true)
	return c.stream.Close()
}
