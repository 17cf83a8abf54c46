package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ScoreFuse/internal/domain/models"
)

// The first scenario from the calibration sheet: three healthy sources in a
// high-volatility regime, liquidation data dominant.
func TestThreeSourceHighVolatilityFusion(t *testing.T) {
	cfg := testConfig(t)
	w := NewWeightCalculator(&cfg)
	a := NewAggregator(&cfg)
	r := NewRecommender(&cfg)

	scores := []NormalizedScore{
		normScore(models.SourceLiquidation, 75, 0.85, 0.95),
		normScore(models.SourceTechnical, 82, 0.80, 0.88),
		normScore(models.SourceRisk, 68, 0.90, 0.98),
	}

	ws := w.Calculate(scores, nil, models.ConditionHighVolatility)
	assert.InDelta(t, 0.433, ws.Weights[models.SourceLiquidation], 0.005)

	agg, err := a.Combine(scores, ws, PatternOutcome{Coefficient: 1.0})
	require.NoError(t, err)
	assert.InDelta(t, 74.55, agg.BaseScore, 0.05)
	assert.InDelta(t, 71.27, agg.FinalScore, 0.05)

	plan := r.Decide(agg, PatternOutcome{Coefficient: 1.0}, models.ConditionHighVolatility, 100-68)
	assert.Equal(t, models.RecLong, plan.Recommendation)
}

// A lone mediocre source: full weight, but the confidence gate keeps the
// call neutral.
func TestSingleWeakSourceStaysNeutral(t *testing.T) {
	cfg := testConfig(t)
	w := NewWeightCalculator(&cfg)
	a := NewAggregator(&cfg)
	r := NewRecommender(&cfg)

	scores := []NormalizedScore{normScore(models.SourceTechnical, 50, 0.5, 0.5)}

	ws := w.Calculate(scores, nil, models.ConditionNormal)
	assert.Equal(t, 1.0, ws.Weights[models.SourceTechnical])
	assert.Equal(t, 0.6, ws.Confidence)

	agg, err := a.Combine(scores, ws, PatternOutcome{Coefficient: 1.0})
	require.NoError(t, err)
	assert.InDelta(t, 42.5, agg.FinalScore, 1e-9)
	assert.InDelta(t, 0.3, agg.Confidence, 1e-9)

	plan := r.Decide(agg, PatternOutcome{Coefficient: 1.0}, models.ConditionNormal, 50)
	assert.Equal(t, models.RecNeutral, plan.Recommendation)
}

func TestComputeInsufficientData(t *testing.T) {
	eng, err := NewEngine(DefaultConfig())
	require.NoError(t, err)

	tests := []struct {
		name   string
		scores []models.SourceScore
	}{
		{"no scores", nil},
		{"only invalid scores", []models.SourceScore{
			{Kind: "SENTIMENT", Value: 50, Confidence: 0.5},
			{Kind: models.SourceTechnical, Value: 50, Confidence: 2.0},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.Compute(
				Input{Symbol: "BTC-USDT", Scores: tt.scores, Now: time.Now()},
				Snapshot{Condition: models.ConditionNormal},
			)
			assert.ErrorIs(t, err, ErrInsufficientData)
		})
	}
}

func TestComputeFullPipeline(t *testing.T) {
	eng, err := NewEngine(DefaultConfig())
	require.NoError(t, err)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	long := 68.0
	in := Input{
		Symbol: "BTC-USDT",
		Now:    now,
		Scores: []models.SourceScore{
			{
				Kind: models.SourceLiquidation, Value: 78, Confidence: 0.9,
				ObservedAt: now.Add(-time.Minute), LongWinRate: &long,
				Patterns: []models.PatternFlag{
					{Name: "golden_cross", Direction: models.PatternBullish, Strength: 1.0},
				},
			},
			{Kind: models.SourceTechnical, Value: 70, Confidence: 0.8, ObservedAt: now.Add(-2 * time.Minute)},
			{Kind: models.SourceRisk, Value: 65, Confidence: 0.85, ObservedAt: now.Add(-time.Minute)},
			{Kind: "SENTIMENT", Value: 99, Confidence: 0.9, ObservedAt: now},
		},
	}
	snap := Snapshot{Condition: models.ConditionBull}

	res, err := eng.Compute(in, snap)
	require.NoError(t, err)

	assert.Equal(t, "BTC-USDT", res.Symbol)
	assert.Equal(t, now, res.Timestamp)
	assert.Equal(t, models.ConditionBull, res.Condition)

	var wsum float64
	for _, w := range res.Weights {
		wsum += w
	}
	assert.InDelta(t, 1.0, wsum, 1e-9)
	assert.Len(t, res.Contributions, 3)
	assert.Equal(t, []string{"golden_cross (BULLISH)"}, res.ActivePatterns)
	assert.Equal(t, []string{"SENTIMENT: unknown source kind"}, res.DroppedSources)
	assert.InDelta(t, 100-65, res.RiskScore, 1e-9)
	assert.Greater(t, res.FinalScore, 55.0)
	assert.NotEmpty(t, res.Narrative)
	assert.NotEmpty(t, res.WeightReasoning)
	assert.Contains(t, []models.Recommendation{models.RecLong, models.RecStrongLong}, res.Recommendation)
}

func TestComputeNeutralRiskWithoutRiskSource(t *testing.T) {
	eng, err := NewEngine(DefaultConfig())
	require.NoError(t, err)

	now := time.Now()
	res, err := eng.Compute(Input{
		Symbol: "ETH-USDT",
		Now:    now,
		Scores: []models.SourceScore{
			{Kind: models.SourceTechnical, Value: 60, Confidence: 0.8, ObservedAt: now},
		},
	}, Snapshot{Condition: models.ConditionNormal})
	require.NoError(t, err)
	assert.Equal(t, 50.0, res.RiskScore)
}

func TestComputeDeterministic(t *testing.T) {
	eng, err := NewEngine(DefaultConfig())
	require.NoError(t, err)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	in := Input{
		Symbol: "BTC-USDT",
		Now:    now,
		Scores: []models.SourceScore{
			{Kind: models.SourceRisk, Value: 40, Confidence: 0.7, ObservedAt: now.Add(-10 * time.Minute)},
			{Kind: models.SourceLiquidation, Value: 55, Confidence: 0.6, ObservedAt: now.Add(-3 * time.Minute)},
		},
	}
	snap := Snapshot{
		Condition: models.ConditionBear,
		Priors: map[models.SourceKind]models.ReliabilityPrior{
			models.SourceRisk: {Kind: models.SourceRisk, Prior: 0.8},
		},
	}

	first, err := eng.Compute(in, snap)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		again, err := eng.Compute(in, snap)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
