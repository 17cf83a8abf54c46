package engine

import (
	"time"

	"ScoreFuse/internal/domain/models"
)

// Snapshot is the ambient state read once at the start of a computation.
// Holding it by value means a concurrent administrative update can never
// produce an internally inconsistent result.
type Snapshot struct {
	Condition models.MarketCondition
	Priors    map[models.SourceKind]models.ReliabilityPrior
}

// Input carries everything a single computation needs. Now is the caller's
// clock so the engine stays a pure function of its arguments.
type Input struct {
	Symbol string
	Scores []models.SourceScore
	Now    time.Time
}

// Engine fuses up to three source scores into one calibrated result. It is
// stateless: every invocation is independent and deterministic for
// identical inputs.
type Engine struct {
	cfg        Config
	normalizer *Normalizer
	weights    *WeightCalculator
	patterns   *PatternDetector
	aggregator *Aggregator
	recommend  *Recommender
}

// NewEngine validates the configuration and builds the pipeline. A config
// error here is fatal; the engine must not serve with a broken table.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg}
	e.normalizer = NewNormalizer(&e.cfg)
	e.weights = NewWeightCalculator(&e.cfg)
	e.patterns = NewPatternDetector(&e.cfg)
	e.aggregator = NewAggregator(&e.cfg)
	e.recommend = NewRecommender(&e.cfg)
	return e, nil
}

// Config returns a copy of the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Compute runs the full pipeline: normalize, weight, detect patterns,
// aggregate, recommend. Returns ErrInsufficientData when no source survives
// normalization.
func (e *Engine) Compute(in Input, snap Snapshot) (models.AggregationResult, error) {
	scores, dropped := e.normalizer.Normalize(in.Scores, in.Now)

	ws := e.weights.Calculate(scores, snap.Priors, snap.Condition)
	patterns := e.patterns.Aggregate(scores)

	agg, err := e.aggregator.Combine(scores, ws, patterns)
	if err != nil {
		return models.AggregationResult{}, err
	}

	riskScore := e.riskScore(scores)
	plan := e.recommend.Decide(agg, patterns, snap.Condition, riskScore)

	droppedNotes := make([]string, len(dropped))
	for i, d := range dropped {
		droppedNotes[i] = d.String()
	}

	return models.AggregationResult{
		Symbol:          in.Symbol,
		FinalScore:      agg.FinalScore,
		Weights:         ws.Weights,
		WeightReasoning: ws.Reasoning,
		Confidence:      agg.Confidence,
		Recommendation:  plan.Recommendation,
		PositionSizePct: plan.PositionSizePct,
		StopLossPct:     plan.StopLossPct,
		TakeProfitPcts:  plan.TakeProfitPcts,
		RiskScore:       riskScore,
		ActivePatterns:  patterns.Active,
		Contributions:   agg.Contributions,
		DroppedSources:  droppedNotes,
		LongWinRate:     agg.LongWinRate,
		ShortWinRate:    agg.ShortWinRate,
		Condition:       snap.Condition,
		Narrative:       e.recommend.Narrative(agg, ws, patterns, plan, dropped),
		Timestamp:       in.Now,
	}, nil
}

// riskScore inverts the RISK source's band score: a high band score means a
// benign risk environment. Without a RISK source the risk level is unknown
// and reported as the neutral midpoint.
const neutralRiskScore = 50.0

func (e *Engine) riskScore(scores []NormalizedScore) float64 {
	for _, s := range scores {
		if s.Kind == models.SourceRisk {
			return 100.0 - s.Value
		}
	}
	return neutralRiskScore
}
