package models

// Requests for the scoring and admin HTTP endpoints. Defined in domain for
// consistency and reuse.

// SourceScoreInput mirrors SourceScore for request binding with validation
// tags. ObservedAt accepts RFC3339 or unix seconds; empty means "now".
type SourceScoreInput struct {
	Kind         string             `json:"kind" validate:"required,oneof=LIQUIDATION TECHNICAL RISK"`
	Value        float64            `json:"value"`
	Confidence   float64            `json:"confidence"`
	ObservedAt   string             `json:"observed_at,omitempty"`
	Completeness []string           `json:"completeness,omitempty"`
	LongWinRate  *float64           `json:"long_win_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	ShortWinRate *float64           `json:"short_win_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	Patterns     []PatternFlagInput `json:"patterns,omitempty" validate:"dive"`
}

type PatternFlagInput struct {
	Name      string  `json:"name" validate:"required"`
	Direction string  `json:"direction" default:"BULLISH" validate:"oneof=BULLISH BEARISH"`
	Strength  float64 `json:"strength" default:"1" validate:"gte=0,lte=1"`
}

type ScoreRequest struct {
	Symbol string             `json:"symbol" validate:"required"`
	Scores []SourceScoreInput `json:"scores,omitempty" validate:"max=3,dive"`
	// Legacy marks incoming values as being on the historical 0-25 scale.
	Legacy bool `json:"legacy,omitempty"`
}

type ConditionRequest struct {
	Condition string `json:"condition" validate:"required,oneof=NORMAL HIGH_VOLATILITY BULL BEAR SIDEWAYS LOW_VOLATILITY"`
}

type PriorRequest struct {
	Prior float64 `json:"prior" validate:"gte=0,lte=1"`
}

type HistoryStatsRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"20" validate:"gte=1,lte=1000"`
}

type HistoryRangeRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required"`
	From   string `query:"from" json:"from,omitempty"`
	To     string `query:"to" json:"to,omitempty"`
	Limit  int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=10000"`
}
