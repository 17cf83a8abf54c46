package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ScoreFuse/internal/domain/models"
)

func normScore(kind models.SourceKind, value, conf, quality float64) NormalizedScore {
	return NormalizedScore{
		SourceScore: models.SourceScore{Kind: kind, Value: value, Confidence: conf},
		Quality:     quality,
	}
}

func TestWeightsSumToOne(t *testing.T) {
	cfg := testConfig(t)
	w := NewWeightCalculator(&cfg)

	tests := []struct {
		name   string
		scores []NormalizedScore
		cond   models.MarketCondition
	}{
		{
			name: "two sources",
			scores: []NormalizedScore{
				normScore(models.SourceLiquidation, 80, 0.9, 1.0),
				normScore(models.SourceTechnical, 60, 0.7, 0.8),
			},
			cond: models.ConditionNormal,
		},
		{
			name: "three sources high volatility",
			scores: []NormalizedScore{
				normScore(models.SourceLiquidation, 75, 0.85, 0.95),
				normScore(models.SourceTechnical, 82, 0.80, 0.88),
				normScore(models.SourceRisk, 68, 0.90, 0.98),
			},
			cond: models.ConditionHighVolatility,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := w.Calculate(tt.scores, nil, tt.cond)
			var sum float64
			for _, wv := range ws.Weights {
				sum += wv
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
		})
	}
}

func TestSingleSourceWeightExactlyOne(t *testing.T) {
	cfg := testConfig(t)
	w := NewWeightCalculator(&cfg)

	ws := w.Calculate([]NormalizedScore{
		normScore(models.SourceTechnical, 50, 0.5, 0.5),
	}, nil, models.ConditionNormal)

	require.Len(t, ws.Weights, 1)
	assert.Equal(t, 1.0, ws.Weights[models.SourceTechnical])
	assert.Equal(t, 0.6, ws.Confidence)
}

func TestWeightConfidenceBySourceCount(t *testing.T) {
	cfg := testConfig(t)
	w := NewWeightCalculator(&cfg)

	all := []NormalizedScore{
		normScore(models.SourceLiquidation, 70, 0.8, 1.0),
		normScore(models.SourceTechnical, 70, 0.8, 1.0),
		normScore(models.SourceRisk, 70, 0.8, 1.0),
	}

	for n, want := range map[int]float64{1: 0.6, 2: 0.8, 3: 0.95} {
		ws := w.Calculate(all[:n], nil, models.ConditionNormal)
		assert.Equal(t, want, ws.Confidence, "sources=%d", n)
	}
}

func TestConditionMultiplierFavorsSource(t *testing.T) {
	cfg := testConfig(t)
	w := NewWeightCalculator(&cfg)

	// Equal confidence and quality everywhere; HIGH_VOLATILITY multiplies
	// LIQUIDATION raw weight by 1.5, so it takes 1.5/(1.5+1+1).
	scores := []NormalizedScore{
		normScore(models.SourceLiquidation, 70, 0.8, 1.0),
		normScore(models.SourceTechnical, 70, 0.8, 1.0),
		normScore(models.SourceRisk, 70, 0.8, 1.0),
	}
	ws := w.Calculate(scores, nil, models.ConditionHighVolatility)

	assert.InDelta(t, 1.5/3.5, ws.Weights[models.SourceLiquidation], 1e-9)
	assert.InDelta(t, 1.0/3.5, ws.Weights[models.SourceTechnical], 1e-9)
	assert.Contains(t, ws.Reasoning, string(models.SourceLiquidation))
	assert.Contains(t, ws.Reasoning, string(models.ConditionHighVolatility))
}

func TestStoredPriorOverridesDefault(t *testing.T) {
	cfg := testConfig(t)
	w := NewWeightCalculator(&cfg)

	priors := map[models.SourceKind]models.ReliabilityPrior{
		models.SourceTechnical: {Kind: models.SourceTechnical, Prior: 1.0},
	}
	scores := []NormalizedScore{
		normScore(models.SourceLiquidation, 70, 0.8, 1.0),
		normScore(models.SourceTechnical, 70, 0.8, 1.0),
	}
	ws := w.Calculate(scores, priors, models.ConditionNormal)

	// TECHNICAL prior 1.0 against the LIQUIDATION default 0.5 gives a 2:1 split.
	assert.InDelta(t, 2.0/3.0, ws.Weights[models.SourceTechnical], 1e-9)
	assert.InDelta(t, 1.0/3.0, ws.Weights[models.SourceLiquidation], 1e-9)
}

func TestZeroRawWeightsFallBackToEqualSplit(t *testing.T) {
	cfg := testConfig(t)
	w := NewWeightCalculator(&cfg)

	priors := map[models.SourceKind]models.ReliabilityPrior{
		models.SourceLiquidation: {Kind: models.SourceLiquidation, Prior: 0},
		models.SourceTechnical:   {Kind: models.SourceTechnical, Prior: 0},
	}
	scores := []NormalizedScore{
		normScore(models.SourceLiquidation, 70, 0.8, 1.0),
		normScore(models.SourceTechnical, 70, 0.8, 1.0),
	}
	ws := w.Calculate(scores, priors, models.ConditionNormal)

	assert.InDelta(t, 0.5, ws.Weights[models.SourceLiquidation], 1e-9)
	assert.InDelta(t, 0.5, ws.Weights[models.SourceTechnical], 1e-9)
	assert.Contains(t, ws.Reasoning, "weighted equally")
}

func TestWeightsDeterministic(t *testing.T) {
	cfg := testConfig(t)
	w := NewWeightCalculator(&cfg)

	scores := []NormalizedScore{
		normScore(models.SourceLiquidation, 75, 0.85, 0.95),
		normScore(models.SourceTechnical, 82, 0.80, 0.88),
		normScore(models.SourceRisk, 68, 0.90, 0.98),
	}
	first := w.Calculate(scores, nil, models.ConditionHighVolatility)
	for i := 0; i < 50; i++ {
		again := w.Calculate(scores, nil, models.ConditionHighVolatility)
		assert.Equal(t, first.Weights, again.Weights)
		assert.Equal(t, first.Reasoning, again.Reasoning)
	}
}
