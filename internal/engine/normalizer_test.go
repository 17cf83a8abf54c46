package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ScoreFuse/internal/domain/models"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	require.NoError(t, cfg.Finalize())
	return cfg
}

func TestNormalizeDrops(t *testing.T) {
	cfg := testConfig(t)
	n := NewNormalizer(&cfg)
	now := time.Now()

	tests := []struct {
		name   string
		score  models.SourceScore
		reason string
	}{
		{
			name:   "unknown kind",
			score:  models.SourceScore{Kind: "SENTIMENT", Value: 50, Confidence: 0.5, ObservedAt: now},
			reason: "unknown source kind",
		},
		{
			name:   "nan value",
			score:  models.SourceScore{Kind: models.SourceTechnical, Value: math.NaN(), Confidence: 0.5, ObservedAt: now},
			reason: "non-finite value",
		},
		{
			name:   "inf value",
			score:  models.SourceScore{Kind: models.SourceTechnical, Value: math.Inf(1), Confidence: 0.5, ObservedAt: now},
			reason: "non-finite value",
		},
		{
			name:  "confidence above one",
			score: models.SourceScore{Kind: models.SourceRisk, Value: 50, Confidence: 1.5, ObservedAt: now},
		},
		{
			name:  "negative confidence",
			score: models.SourceScore{Kind: models.SourceRisk, Value: 50, Confidence: -0.1, ObservedAt: now},
		},
		{
			name:  "nan confidence",
			score: models.SourceScore{Kind: models.SourceRisk, Value: 50, Confidence: math.NaN(), ObservedAt: now},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, dropped := n.Normalize([]models.SourceScore{tt.score}, now)
			assert.Empty(t, out)
			require.Len(t, dropped, 1)
			if tt.reason != "" {
				assert.Equal(t, tt.reason, dropped[0].Reason)
			}
		})
	}
}

func TestNormalizeDuplicateKind(t *testing.T) {
	cfg := testConfig(t)
	n := NewNormalizer(&cfg)
	now := time.Now()

	out, dropped := n.Normalize([]models.SourceScore{
		{Kind: models.SourceTechnical, Value: 60, Confidence: 0.8, ObservedAt: now},
		{Kind: models.SourceTechnical, Value: 90, Confidence: 0.9, ObservedAt: now},
	}, now)

	require.Len(t, out, 1)
	assert.Equal(t, 60.0, out[0].Value) // first occurrence wins
	require.Len(t, dropped, 1)
	assert.Equal(t, "duplicate source", dropped[0].Reason)
}

func TestNormalizeClampsValue(t *testing.T) {
	cfg := testConfig(t)
	n := NewNormalizer(&cfg)
	now := time.Now()

	out, dropped := n.Normalize([]models.SourceScore{
		{Kind: models.SourceTechnical, Value: 120, Confidence: 0.8, ObservedAt: now},
		{Kind: models.SourceRisk, Value: -5, Confidence: 0.8, ObservedAt: now},
	}, now)

	require.Empty(t, dropped)
	require.Len(t, out, 2)
	assert.Equal(t, 100.0, out[0].Value)
	assert.Equal(t, 0.0, out[1].Value)
}

func TestFreshnessFactor(t *testing.T) {
	cfg := testConfig(t)
	n := NewNormalizer(&cfg)

	tests := []struct {
		name string
		age  time.Duration
		want float64
	}{
		{"future timestamp", -time.Minute, 1.0},
		{"fresh", 2 * time.Minute, 1.0},
		{"at fresh boundary", 5 * time.Minute, 1.0},
		{"halfway to stale", 17*time.Minute + 30*time.Second, 0.75},
		{"at stale boundary", 30 * time.Minute, 0.5},
		{"past stale, same slope", 40 * time.Minute, 0.3},
		{"very old floors", 3 * time.Hour, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, n.freshnessFactor(tt.age), 1e-9)
		})
	}
}

func TestCompletenessFactor(t *testing.T) {
	cfg := testConfig(t)
	n := NewNormalizer(&cfg)

	// TECHNICAL expects trend, momentum, volume, volatility
	tests := []struct {
		name    string
		present []string
		want    float64
	}{
		{"unreported", nil, 1.0},
		{"all fields", []string{"trend", "momentum", "volume", "volatility"}, 1.0},
		{"half", []string{"trend", "momentum"}, 0.5},
		{"unknown fields only", []string{"bogus"}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.completenessFactor(models.SourceTechnical, tt.present)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestNormalizeQualityCombines(t *testing.T) {
	cfg := testConfig(t)
	n := NewNormalizer(&cfg)
	now := time.Now()

	// 30 minutes old (freshness 0.5) with half completeness gives quality 0.25
	out, _ := n.Normalize([]models.SourceScore{{
		Kind:         models.SourceTechnical,
		Value:        60,
		Confidence:   0.8,
		ObservedAt:   now.Add(-30 * time.Minute),
		Completeness: []string{"trend", "momentum"},
	}}, now)

	require.Len(t, out, 1)
	assert.InDelta(t, 0.25, out[0].Quality, 1e-9)
}
