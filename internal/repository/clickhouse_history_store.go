package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"ScoreFuse/internal/domain/models"
	domrepo "ScoreFuse/internal/domain/repository"
	pkgch "ScoreFuse/pkg/clickhouse"
	applogger "ScoreFuse/pkg/logger"
)

// HistorySchema holds the idempotent DDL for the score history table. Passed
// to pkg/clickhouse InitSchema at startup.
var HistorySchema = []string{
	`CREATE TABLE IF NOT EXISTS score_history (
        recorded_at     DateTime64(3),
        symbol          String,
        final_score     Float64,
        recommendation  String,
        condition       String,
        active_patterns Array(String),
        payload         String
    ) ENGINE = MergeTree()
    ORDER BY (symbol, recorded_at)`,
}

// CHHistoryStore implements HistoryStore backed by ClickHouse. The full
// record is stored as a JSON payload next to the queryable columns.
type CHHistoryStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewCHHistoryStore creates a ClickHouse history store.
func NewCHHistoryStore(ch *pkgch.Client) *CHHistoryStore {
	return &CHHistoryStore{db: ch.DB(), table: "score_history"}
}

// SetLogger injects a structured logger.
func (s *CHHistoryStore) SetLogger(l *applogger.Logger) { s.l = l }

var _ domrepo.HistoryStore = (*CHHistoryStore)(nil)

func (s *CHHistoryStore) Append(ctx context.Context, rec models.HistoryRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal history record: %w", err)
	}

	q := fmt.Sprintf(
		"INSERT INTO %s (recorded_at, symbol, final_score, recommendation, condition, active_patterns, payload) VALUES (?, ?, ?, ?, ?, ?, ?)",
		s.table,
	)
	_, err = s.db.ExecContext(ctx, q,
		rec.RecordedAt,
		rec.Symbol,
		rec.Result.FinalScore,
		string(rec.Result.Recommendation),
		string(rec.Condition),
		rec.Result.ActivePatterns,
		string(payload),
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse history append error",
				applogger.String("symbol", rec.Symbol),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (s *CHHistoryStore) Stats(ctx context.Context, symbol string, lastN int) (models.HistoryStats, error) {
	const qtpl = `
        SELECT count(), avg(final_score), min(final_score), max(final_score)
        FROM (
            SELECT final_score FROM %s
            WHERE symbol = ?
            ORDER BY recorded_at DESC
            LIMIT ?
        )
    `
	q := fmt.Sprintf(qtpl, s.table)

	var (
		count uint64
		avg   sql.NullFloat64
		mn    sql.NullFloat64
		mx    sql.NullFloat64
	)
	if err := s.db.QueryRowContext(ctx, q, symbol, lastN).Scan(&count, &avg, &mn, &mx); err != nil {
		return models.HistoryStats{}, fmt.Errorf("history stats: %w", err)
	}

	stats := models.HistoryStats{Symbol: symbol, Records: int(count)}
	if count > 0 {
		stats.AverageScore = avg.Float64
		stats.MinScore = mn.Float64
		stats.MaxScore = mx.Float64
	}
	return stats, nil
}

func (s *CHHistoryStore) PatternCounts(ctx context.Context, symbol string) (map[string]int, error) {
	const qtpl = `
        SELECT pattern, count()
        FROM %s
        ARRAY JOIN active_patterns AS pattern
        WHERE symbol = ?
        GROUP BY pattern
    `
	q := fmt.Sprintf(qtpl, s.table)

	rows, err := s.db.QueryContext(ctx, q, symbol)
	if err != nil {
		return nil, fmt.Errorf("pattern counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			name string
			n    uint64
		)
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan pattern count: %w", err)
		}
		counts[name] = int(n)
	}
	return counts, rows.Err()
}

func (s *CHHistoryStore) Range(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.HistoryRecord, error) {
	start := time.Now()
	const qtpl = `
        SELECT payload FROM %s
        WHERE symbol = ? AND recorded_at >= ? AND recorded_at <= ?
        ORDER BY recorded_at DESC
        LIMIT ?
    `
	q := fmt.Sprintf(qtpl, s.table)

	rows, err := s.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse history range query error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("history range: %w", err)
	}
	defer rows.Close()

	out := make([]models.HistoryRecord, 0, 64)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan history payload: %w", err)
		}
		var rec models.HistoryRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			if s.l != nil {
				s.l.Warn("skipping corrupt history payload",
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
			continue
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse history range ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

// Close is a no-op; the underlying client pool is managed by pkg/clickhouse.
func (s *CHHistoryStore) Close() error {
	return nil
}
