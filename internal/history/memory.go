package history

import (
	"context"
	"sync"
	"time"

	"ScoreFuse/internal/domain/models"
	domrepo "ScoreFuse/internal/domain/repository"
)

// MemoryStore is an in-process append-only history tracker. Each symbol owns
// its log and its lock, so appends for different symbols never contend.
type MemoryStore struct {
	mu   sync.RWMutex
	logs map[string]*symbolLog

	// MaxPerSymbol bounds the retained records per symbol; 0 means
	// unbounded. Trimming drops the oldest records only; written records
	// are never modified.
	MaxPerSymbol int
}

type symbolLog struct {
	mu      sync.Mutex
	records []models.HistoryRecord
}

func NewMemoryStore(maxPerSymbol int) *MemoryStore {
	return &MemoryStore{logs: make(map[string]*symbolLog), MaxPerSymbol: maxPerSymbol}
}

var _ domrepo.HistoryStore = (*MemoryStore)(nil)

func (s *MemoryStore) log(symbol string) *symbolLog {
	s.mu.RLock()
	l, ok := s.logs[symbol]
	s.mu.RUnlock()
	if ok {
		return l
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok = s.logs[symbol]; ok {
		return l
	}
	l = &symbolLog{}
	s.logs[symbol] = l
	return l
}

func (s *MemoryStore) Append(_ context.Context, rec models.HistoryRecord) error {
	l := s.log(rec.Symbol)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	if s.MaxPerSymbol > 0 && len(l.records) > s.MaxPerSymbol {
		over := len(l.records) - s.MaxPerSymbol
		l.records = append([]models.HistoryRecord(nil), l.records[over:]...)
	}
	return nil
}

// Stats returns the rolling average/min/max over the last N records.
func (s *MemoryStore) Stats(_ context.Context, symbol string, lastN int) (models.HistoryStats, error) {
	l := s.log(symbol)
	l.mu.Lock()
	defer l.mu.Unlock()

	recs := l.records
	if lastN > 0 && len(recs) > lastN {
		recs = recs[len(recs)-lastN:]
	}
	stats := models.HistoryStats{Symbol: symbol, Records: len(recs)}
	if len(recs) == 0 {
		return stats, nil
	}
	stats.MinScore = recs[0].Result.FinalScore
	stats.MaxScore = recs[0].Result.FinalScore
	var sum float64
	for _, r := range recs {
		f := r.Result.FinalScore
		sum += f
		if f < stats.MinScore {
			stats.MinScore = f
		}
		if f > stats.MaxScore {
			stats.MaxScore = f
		}
	}
	stats.AverageScore = sum / float64(len(recs))
	return stats, nil
}

// PatternCounts counts how often each pattern was active across the
// symbol's entire log.
func (s *MemoryStore) PatternCounts(_ context.Context, symbol string) (map[string]int, error) {
	l := s.log(symbol)
	l.mu.Lock()
	defer l.mu.Unlock()

	counts := make(map[string]int)
	for _, r := range l.records {
		for _, p := range r.Result.ActivePatterns {
			counts[p]++
		}
	}
	return counts, nil
}

// Range returns records within [from, to], newest first, capped at limit.
// Zero bounds are open.
func (s *MemoryStore) Range(_ context.Context, symbol string, from, to time.Time, limit int) ([]models.HistoryRecord, error) {
	l := s.log(symbol)
	l.mu.Lock()
	defer l.mu.Unlock()

	// walk backwards so a limit keeps the newest matches
	out := make([]models.HistoryRecord, 0, len(l.records))
	for i := len(l.records) - 1; i >= 0; i-- {
		r := l.records[i]
		if !from.IsZero() && r.RecordedAt.Before(from) {
			continue
		}
		if !to.IsZero() && r.RecordedAt.After(to) {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
