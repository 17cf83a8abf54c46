package engine

import (
	"fmt"
	"math"
	"time"

	"ScoreFuse/internal/domain/models"
)

// NormalizedScore is a validated source score with its computed quality
// attached. Quality = freshness × completeness, both in (0,1].
type NormalizedScore struct {
	models.SourceScore
	Quality float64
}

// DroppedSource records why a candidate score was excluded. Drops are
// non-fatal; the rest of the pipeline proceeds without the source.
type DroppedSource struct {
	Kind   models.SourceKind
	Reason string
}

func (d DroppedSource) String() string {
	return fmt.Sprintf("%s: %s", d.Kind, d.Reason)
}

// Normalizer validates and quality-scores incoming source scores.
type Normalizer struct {
	cfg *Config
}

func NewNormalizer(cfg *Config) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// Normalize clamps values, computes quality, and drops malformed candidates.
// At most one score per source kind survives; duplicates after the first are
// dropped so a misbehaving caller cannot double-weight a source.
func (n *Normalizer) Normalize(scores []models.SourceScore, now time.Time) ([]NormalizedScore, []DroppedSource) {
	out := make([]NormalizedScore, 0, len(scores))
	var dropped []DroppedSource
	seen := make(map[models.SourceKind]bool, len(scores))

	for _, s := range scores {
		if !s.Kind.Valid() {
			dropped = append(dropped, DroppedSource{Kind: s.Kind, Reason: "unknown source kind"})
			continue
		}
		if seen[s.Kind] {
			dropped = append(dropped, DroppedSource{Kind: s.Kind, Reason: "duplicate source"})
			continue
		}
		if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
			dropped = append(dropped, DroppedSource{Kind: s.Kind, Reason: "non-finite value"})
			continue
		}
		if math.IsNaN(s.Confidence) || s.Confidence < 0 || s.Confidence > 1 {
			dropped = append(dropped, DroppedSource{Kind: s.Kind,
				Reason: fmt.Sprintf("confidence %.3f outside [0,1]", s.Confidence)})
			continue
		}
		seen[s.Kind] = true

		s.Value = clamp(s.Value, 0, 100)
		q := n.freshnessFactor(now.Sub(s.ObservedAt)) * n.completenessFactor(s.Kind, s.Completeness)
		out = append(out, NormalizedScore{SourceScore: s, Quality: q})
	}
	return out, dropped
}

// freshnessFactor is 1.0 up to FreshFor, decays linearly to StaleFactor at
// StaleAfter, keeps the same slope beyond, floored at FloorFactor. Future
// timestamps count as fresh.
func (n *Normalizer) freshnessFactor(age time.Duration) float64 {
	f := n.cfg.Freshness
	if age <= f.FreshFor {
		return 1.0
	}
	span := f.StaleAfter - f.FreshFor
	slope := (1.0 - f.StaleFactor) / span.Seconds()
	factor := 1.0 - slope*(age-f.FreshFor).Seconds()
	if factor < f.FloorFactor {
		return f.FloorFactor
	}
	return factor
}

// completenessFactor is the fraction of the source's expected fields that
// the provider actually populated. Sources without a schema, and providers
// that do not report completeness at all, score 1.0.
func (n *Normalizer) completenessFactor(kind models.SourceKind, present []string) float64 {
	expected := n.cfg.ExpectedFields[kind]
	if len(expected) == 0 || len(present) == 0 {
		return 1.0
	}
	have := make(map[string]bool, len(present))
	for _, f := range present {
		have[f] = true
	}
	hits := 0
	for _, f := range expected {
		if have[f] {
			hits++
		}
	}
	return float64(hits) / float64(len(expected))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
