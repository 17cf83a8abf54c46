package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ScoreFuse/internal/domain/models"
)

func withPatterns(kind models.SourceKind, flags ...models.PatternFlag) NormalizedScore {
	s := normScore(kind, 70, 0.8, 1.0)
	s.Patterns = flags
	return s
}

func TestPatternCoefficient(t *testing.T) {
	cfg := testConfig(t)
	p := NewPatternDetector(&cfg)

	tests := []struct {
		name   string
		scores []NormalizedScore
		want   float64
	}{
		{
			name:   "no flags",
			scores: []NormalizedScore{normScore(models.SourceTechnical, 70, 0.8, 1.0)},
			want:   1.0,
		},
		{
			name: "golden cross full strength",
			scores: []NormalizedScore{withPatterns(models.SourceTechnical,
				models.PatternFlag{Name: "golden_cross", Direction: models.PatternBullish, Strength: 1.0},
			)},
			want: 1.15,
		},
		{
			name: "cascade plus golden cross",
			scores: []NormalizedScore{withPatterns(models.SourceLiquidation,
				models.PatternFlag{Name: "liquidation_cascade", Direction: models.PatternBearish, Strength: 1.0},
				models.PatternFlag{Name: "golden_cross", Direction: models.PatternBullish, Strength: 1.0},
			)},
			want: 0.75 * 1.15, // 0.8625
		},
		{
			name: "bearish direction flips a positive magnitude",
			scores: []NormalizedScore{withPatterns(models.SourceTechnical,
				models.PatternFlag{Name: "volume_breakout", Direction: models.PatternBearish, Strength: 1.0},
			)},
			want: 0.8,
		},
		{
			name: "half strength halves the contribution",
			scores: []NormalizedScore{withPatterns(models.SourceTechnical,
				models.PatternFlag{Name: "golden_cross", Direction: models.PatternBullish, Strength: 0.5},
			)},
			want: 1.075,
		},
		{
			name: "unknown pattern ignored",
			scores: []NormalizedScore{withPatterns(models.SourceTechnical,
				models.PatternFlag{Name: "mystery_wedge", Direction: models.PatternBullish, Strength: 1.0},
			)},
			want: 1.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := p.Aggregate(tt.scores)
			assert.InDelta(t, tt.want, out.Coefficient, 1e-9)
		})
	}
}

func TestPatternDuplicateKeepsStrongest(t *testing.T) {
	cfg := testConfig(t)
	p := NewPatternDetector(&cfg)

	out := p.Aggregate([]NormalizedScore{
		withPatterns(models.SourceTechnical,
			models.PatternFlag{Name: "golden_cross", Direction: models.PatternBullish, Strength: 0.5}),
		withPatterns(models.SourceLiquidation,
			models.PatternFlag{Name: "golden_cross", Direction: models.PatternBullish, Strength: 0.8}),
	})

	assert.InDelta(t, 1.0+0.8*0.15, out.Coefficient, 1e-9)
	assert.Equal(t, []string{"golden_cross (BULLISH)"}, out.Active)
}

func TestPatternCoefficientClamped(t *testing.T) {
	cfg := testConfig(t)
	p := NewPatternDetector(&cfg)

	bearish := withPatterns(models.SourceLiquidation,
		models.PatternFlag{Name: "golden_cross", Direction: models.PatternBearish, Strength: 1.0},
		models.PatternFlag{Name: "death_cross", Direction: models.PatternBearish, Strength: 1.0},
		models.PatternFlag{Name: "liquidation_cascade", Direction: models.PatternBearish, Strength: 1.0},
		models.PatternFlag{Name: "volume_breakout", Direction: models.PatternBearish, Strength: 1.0},
	)
	out := p.Aggregate([]NormalizedScore{bearish})
	assert.Equal(t, cfg.CompositeMin, out.Coefficient)

	bullish := withPatterns(models.SourceTechnical,
		models.PatternFlag{Name: "golden_cross", Direction: models.PatternBullish, Strength: 1.0},
		models.PatternFlag{Name: "death_cross", Direction: models.PatternBullish, Strength: 1.0},
		models.PatternFlag{Name: "liquidation_cascade", Direction: models.PatternBullish, Strength: 1.0},
		models.PatternFlag{Name: "volume_breakout", Direction: models.PatternBullish, Strength: 1.0},
	)
	out = p.Aggregate([]NormalizedScore{bullish})
	assert.Equal(t, cfg.CompositeMax, out.Coefficient)
}

func TestPatternActiveSorted(t *testing.T) {
	cfg := testConfig(t)
	p := NewPatternDetector(&cfg)

	out := p.Aggregate([]NormalizedScore{withPatterns(models.SourceTechnical,
		models.PatternFlag{Name: "volume_breakout", Direction: models.PatternBullish, Strength: 0.4},
		models.PatternFlag{Name: "golden_cross", Direction: models.PatternBullish, Strength: 0.4},
	)})

	assert.Equal(t, []string{"golden_cross (BULLISH)", "volume_breakout (BULLISH)"}, out.Active)
}
