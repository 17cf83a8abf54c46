package engine

import (
	"fmt"
	"time"

	"ScoreFuse/internal/domain/models"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FreshnessConfig controls the age-based quality decay. Factor is 1.0 up to
// FreshFor, decays linearly to StaleFactor at StaleAfter, keeps the same
// slope beyond and never drops below FloorFactor.
type FreshnessConfig struct {
	FreshFor    time.Duration `yaml:"fresh_for" default:"5m" validate:"gt=0"`
	StaleAfter  time.Duration `yaml:"stale_after" default:"30m" validate:"gt=0"`
	StaleFactor float64       `yaml:"stale_factor" default:"0.5" validate:"gt=0,lte=1"`
	FloorFactor float64       `yaml:"floor_factor" default:"0.3" validate:"gt=0,lte=1"`
}

// DecisionConfig holds the ordered decision-table thresholds. Scores are on
// the 0-100 scale, win rates in percent.
type DecisionConfig struct {
	StrongLongScore    float64 `yaml:"strong_long_score" default:"70" validate:"gte=0,lte=100"`
	StrongLongWinRate  float64 `yaml:"strong_long_win_rate" default:"65" validate:"gte=0,lte=100"`
	LongScore          float64 `yaml:"long_score" default:"55" validate:"gte=0,lte=100"`
	LongWinRate        float64 `yaml:"long_win_rate" default:"55" validate:"gte=0,lte=100"`
	StrongShortScore   float64 `yaml:"strong_short_score" default:"30" validate:"gte=0,lte=100"`
	StrongShortWinRate float64 `yaml:"strong_short_win_rate" default:"65" validate:"gte=0,lte=100"`
	ShortScore         float64 `yaml:"short_score" default:"45" validate:"gte=0,lte=100"`
	ShortWinRate       float64 `yaml:"short_win_rate" default:"55" validate:"gte=0,lte=100"`
	// MinConfidence gates directional calls: below it the recommendation
	// is forced to NEUTRAL regardless of score.
	MinConfidence float64 `yaml:"min_confidence" default:"0.4" validate:"gte=0,lte=1"`
}

// RiskConfig holds position sizing and protective-level parameters, all in
// percent of account / entry price.
type RiskConfig struct {
	StrongSizeMin      float64   `yaml:"strong_size_min" default:"2" validate:"gt=0"`
	StrongSizeMax      float64   `yaml:"strong_size_max" default:"3" validate:"gt=0"`
	DirectionalSizeMin float64   `yaml:"directional_size_min" default:"1" validate:"gt=0"`
	DirectionalSizeMax float64   `yaml:"directional_size_max" default:"2" validate:"gt=0"`
	HighRiskSizeMin    float64   `yaml:"high_risk_size_min" default:"0.5" validate:"gt=0"`
	HighRiskSizeMax    float64   `yaml:"high_risk_size_max" default:"1" validate:"gt=0"`
	HighRiskScore      float64   `yaml:"high_risk_score" default:"70" validate:"gte=0,lte=100"`
	VeryHighRiskScore  float64   `yaml:"very_high_risk_score" default:"85" validate:"gte=0,lte=100"`
	StopLossBase       float64   `yaml:"stop_loss_base" default:"3" validate:"gt=0"`
	StopLossVolBump    float64   `yaml:"stop_loss_vol_bump" default:"1" validate:"gte=0"`
	StopLossExtremeAdd float64   `yaml:"stop_loss_extreme_add" default:"2" validate:"gte=0"`
	StopLossTighten    float64   `yaml:"stop_loss_tighten" default:"1" validate:"gte=0"`
	StopLossFloor      float64   `yaml:"stop_loss_floor" default:"2" validate:"gt=0"`
	TakeProfitStrong   []float64 `yaml:"take_profit_strong"`
	TakeProfitDir      []float64 `yaml:"take_profit_directional"`
	TakeProfitNeutral  []float64 `yaml:"take_profit_neutral"`
}

// Config is the full engine configuration. Zero value is unusable; build via
// DefaultConfig or validate an override with Finalize before constructing an
// Engine.
type Config struct {
	Freshness FreshnessConfig `yaml:"freshness"`

	// ExpectedFields is the per-source completeness schema: the fields an
	// upstream provider is expected to have populated.
	ExpectedFields map[models.SourceKind][]string `yaml:"expected_fields"`

	// ConditionMultipliers bias source trust per market condition.
	// Missing entries default to 1.0.
	ConditionMultipliers map[models.MarketCondition]map[models.SourceKind]float64 `yaml:"condition_multipliers"`

	// Magnitudes is the signed per-pattern contribution table.
	Magnitudes map[string]float64 `yaml:"magnitudes"`

	// CompositeMin/Max bound the pattern multiplier so no combination of
	// rare patterns can overwhelm the base score.
	CompositeMin float64 `yaml:"composite_min" default:"0.5" validate:"gt=0"`
	CompositeMax float64 `yaml:"composite_max" default:"1.5" validate:"gt=0"`

	// WeightConfidence maps the number of surviving sources to trust in
	// the weight assignment itself.
	WeightConfidence map[int]float64 `yaml:"weight_confidence"`

	// DefaultPrior is used when no reliability prior is stored for a source.
	DefaultPrior float64 `yaml:"default_prior" default:"0.5" validate:"gt=0,lte=1"`

	// ConfidenceFloor keeps low-confidence inputs from crushing the score
	// below that share of its adjusted value.
	ConfidenceFloor float64 `yaml:"confidence_floor" default:"0.7" validate:"gte=0,lte=1"`

	Decision DecisionConfig `yaml:"decision"`
	Risk     RiskConfig     `yaml:"risk"`
}

// DefaultConfig returns the fully-populated default configuration.
func DefaultConfig() Config {
	var c Config
	// defaults tags cover scalars; error impossible on a fresh struct
	_ = defaults.Set(&c)
	c.ExpectedFields = map[models.SourceKind][]string{
		models.SourceLiquidation: {"heatmap", "clusters", "leverage_zones", "win_rates"},
		models.SourceTechnical:   {"trend", "momentum", "volume", "volatility"},
		models.SourceRisk:        {"risk_bands", "regression", "historical_fit"},
	}
	c.ConditionMultipliers = map[models.MarketCondition]map[models.SourceKind]float64{
		models.ConditionHighVolatility: {models.SourceLiquidation: 1.5},
		models.ConditionBull:           {models.SourceTechnical: 1.3},
		models.ConditionBear:           {models.SourceRisk: 1.4},
		models.ConditionSideways:       {models.SourceRisk: 1.1},
	}
	c.Magnitudes = map[string]float64{
		"golden_cross":        0.15,
		"death_cross":         -0.15,
		"liquidation_cascade": -0.25,
		"volume_breakout":     0.20,
		"rsi_divergence":      0.10,
		"support_bounce":      0.08,
		"resistance_break":    0.12,
		"extreme_volatility":  -0.10,
	}
	c.WeightConfidence = map[int]float64{1: 0.6, 2: 0.8, 3: 0.95}
	c.Risk.TakeProfitStrong = []float64{3, 6, 10}
	c.Risk.TakeProfitDir = []float64{2, 4, 7}
	c.Risk.TakeProfitNeutral = []float64{1.5, 3, 5}
	return c
}

// Finalize applies defaults and validates the configuration. It must be
// called (directly or via NewEngine) before the config is used; a non-nil
// error wraps ErrConfig and the service must refuse to start.
func (c *Config) Finalize() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("%w: set defaults: %v", ErrConfig, err)
	}
	def := DefaultConfig()
	if len(c.ExpectedFields) == 0 {
		c.ExpectedFields = def.ExpectedFields
	}
	if len(c.ConditionMultipliers) == 0 {
		c.ConditionMultipliers = def.ConditionMultipliers
	}
	if len(c.Magnitudes) == 0 {
		c.Magnitudes = def.Magnitudes
	}
	if len(c.WeightConfidence) == 0 {
		c.WeightConfidence = def.WeightConfidence
	}
	if len(c.Risk.TakeProfitStrong) == 0 {
		c.Risk.TakeProfitStrong = def.Risk.TakeProfitStrong
	}
	if len(c.Risk.TakeProfitDir) == 0 {
		c.Risk.TakeProfitDir = def.Risk.TakeProfitDir
	}
	if len(c.Risk.TakeProfitNeutral) == 0 {
		c.Risk.TakeProfitNeutral = def.Risk.TakeProfitNeutral
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return c.check()
}

// check covers the structural constraints validator tags cannot express.
func (c *Config) check() error {
	if c.Freshness.StaleAfter <= c.Freshness.FreshFor {
		return fmt.Errorf("%w: freshness stale_after (%s) must exceed fresh_for (%s)",
			ErrConfig, c.Freshness.StaleAfter, c.Freshness.FreshFor)
	}
	if c.Freshness.FloorFactor > c.Freshness.StaleFactor {
		return fmt.Errorf("%w: freshness floor_factor above stale_factor", ErrConfig)
	}
	if c.CompositeMin >= c.CompositeMax {
		return fmt.Errorf("%w: composite bounds inverted [%g, %g]", ErrConfig, c.CompositeMin, c.CompositeMax)
	}
	for n := 1; n <= len(models.SourceKinds()); n++ {
		wc, ok := c.WeightConfidence[n]
		if !ok {
			return fmt.Errorf("%w: weight_confidence missing entry for %d sources", ErrConfig, n)
		}
		if wc <= 0 || wc > 1 {
			return fmt.Errorf("%w: weight_confidence[%d]=%g outside (0,1]", ErrConfig, n, wc)
		}
		if prev, ok := c.WeightConfidence[n-1]; ok && wc < prev {
			return fmt.Errorf("%w: weight_confidence must be monotonic", ErrConfig)
		}
	}
	for name, m := range c.Magnitudes {
		if name == "" {
			return fmt.Errorf("%w: magnitude table has empty pattern name", ErrConfig)
		}
		if m < -1 || m > 1 {
			return fmt.Errorf("%w: magnitude[%s]=%g outside [-1,1]", ErrConfig, name, m)
		}
	}
	for cond, row := range c.ConditionMultipliers {
		if !cond.Valid() {
			return fmt.Errorf("%w: condition multiplier for unknown condition %q", ErrConfig, cond)
		}
		for kind, mult := range row {
			if !kind.Valid() {
				return fmt.Errorf("%w: condition multiplier for unknown source %q", ErrConfig, kind)
			}
			if mult <= 0 {
				return fmt.Errorf("%w: condition multiplier %s/%s must be positive", ErrConfig, cond, kind)
			}
		}
	}
	for kind := range c.ExpectedFields {
		if !kind.Valid() {
			return fmt.Errorf("%w: expected fields for unknown source %q", ErrConfig, kind)
		}
	}
	d := c.Decision
	if d.StrongLongScore < d.LongScore {
		return fmt.Errorf("%w: decision strong_long_score below long_score", ErrConfig)
	}
	if d.StrongShortScore > d.ShortScore {
		return fmt.Errorf("%w: decision strong_short_score above short_score", ErrConfig)
	}
	if len(c.Risk.TakeProfitStrong) == 0 || len(c.Risk.TakeProfitDir) == 0 || len(c.Risk.TakeProfitNeutral) == 0 {
		return fmt.Errorf("%w: take-profit ladders must be non-empty", ErrConfig)
	}
	if c.Risk.StrongSizeMax < c.Risk.StrongSizeMin ||
		c.Risk.DirectionalSizeMax < c.Risk.DirectionalSizeMin ||
		c.Risk.HighRiskSizeMax < c.Risk.HighRiskSizeMin {
		return fmt.Errorf("%w: position size range inverted", ErrConfig)
	}
	return nil
}
