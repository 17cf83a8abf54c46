package models

import "time"

// Recommendation is the directional trading decision produced by the
// decision table.
type Recommendation string

const (
	RecStrongLong  Recommendation = "STRONG_LONG"
	RecLong        Recommendation = "LONG"
	RecNeutral     Recommendation = "NEUTRAL"
	RecShort       Recommendation = "SHORT"
	RecStrongShort Recommendation = "STRONG_SHORT"
)

// SourceContribution is the per-source breakdown of the final score, kept
// for the audit trail.
type SourceContribution struct {
	Kind         SourceKind `json:"kind"`
	Value        float64    `json:"value"`
	Quality      float64    `json:"quality"`
	Confidence   float64    `json:"confidence"`
	Weight       float64    `json:"weight"`
	Contribution float64    `json:"contribution"` // value × weight
}

// AggregationResult is the full, serializable output of one scoring pass.
// It is created once per invocation and never updated.
type AggregationResult struct {
	Symbol          string                 `json:"symbol"`
	FinalScore      float64                `json:"final_score"`
	Weights         map[SourceKind]float64 `json:"weights"`
	WeightReasoning string                 `json:"weight_reasoning"`
	Confidence      float64                `json:"confidence"`
	Recommendation  Recommendation         `json:"recommendation"`
	PositionSizePct float64                `json:"position_size_pct"`
	StopLossPct     float64                `json:"stop_loss_pct"`
	TakeProfitPcts  []float64              `json:"take_profit_pcts"`
	RiskScore       float64                `json:"risk_score"`
	ActivePatterns  []string               `json:"active_patterns,omitempty"`
	Contributions   []SourceContribution   `json:"contributions"`
	DroppedSources  []string               `json:"dropped_sources,omitempty"`
	LongWinRate     float64                `json:"long_win_rate"`
	ShortWinRate    float64                `json:"short_win_rate"`
	Condition       MarketCondition        `json:"market_condition"`
	Narrative       string                 `json:"narrative"`
	Timestamp       time.Time              `json:"timestamp"`
}
