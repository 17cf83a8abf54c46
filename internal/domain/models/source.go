package models

import (
	"fmt"
	"time"
)

// SourceKind identifies one of the three analysis providers feeding the
// aggregation engine. The set is closed: adding a provider is a code change,
// not a configuration change.
type SourceKind string

const (
	SourceLiquidation SourceKind = "LIQUIDATION"
	SourceTechnical   SourceKind = "TECHNICAL"
	SourceRisk        SourceKind = "RISK"
)

// SourceKinds lists all valid kinds in canonical order.
func SourceKinds() []SourceKind {
	return []SourceKind{SourceLiquidation, SourceTechnical, SourceRisk}
}

func (k SourceKind) Valid() bool {
	switch k {
	case SourceLiquidation, SourceTechnical, SourceRisk:
		return true
	}
	return false
}

// ParseSourceKind converts a string into a SourceKind.
func ParseSourceKind(s string) (SourceKind, error) {
	k := SourceKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown source kind: %q", s)
	}
	return k, nil
}

// PatternDirection is the side a pattern flag argues for.
type PatternDirection string

const (
	PatternBullish PatternDirection = "BULLISH"
	PatternBearish PatternDirection = "BEARISH"
)

// PatternFlag is a discrete market-structure signal detected upstream and
// passed through as metadata. Strength is in [0,1].
type PatternFlag struct {
	Name      string           `json:"name"`
	Direction PatternDirection `json:"direction"`
	Strength  float64          `json:"strength"`
}

// MarketCondition is the coarse volatility/trend regime that biases source
// trust during weighting.
type MarketCondition string

const (
	ConditionNormal         MarketCondition = "NORMAL"
	ConditionHighVolatility MarketCondition = "HIGH_VOLATILITY"
	ConditionBull           MarketCondition = "BULL"
	ConditionBear           MarketCondition = "BEAR"
	ConditionSideways       MarketCondition = "SIDEWAYS"
	ConditionLowVolatility  MarketCondition = "LOW_VOLATILITY"
)

func (c MarketCondition) Valid() bool {
	switch c {
	case ConditionNormal, ConditionHighVolatility, ConditionBull,
		ConditionBear, ConditionSideways, ConditionLowVolatility:
		return true
	}
	return false
}

// ParseMarketCondition converts a string into a MarketCondition.
func ParseMarketCondition(s string) (MarketCondition, error) {
	c := MarketCondition(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown market condition: %q", s)
	}
	return c, nil
}

// SourceScore is one provider's opinion about a symbol. Value is on the
// 0-100 scale, Confidence in [0,1]. Win rates are optional 0-100 estimates
// of directional trade profitability. Completeness lists the provider fields
// that were actually populated upstream.
type SourceScore struct {
	Kind         SourceKind    `json:"kind"`
	Value        float64       `json:"value"`
	Confidence   float64       `json:"confidence"`
	ObservedAt   time.Time     `json:"observed_at"`
	Completeness []string      `json:"completeness,omitempty"`
	LongWinRate  *float64      `json:"long_win_rate,omitempty"`
	ShortWinRate *float64      `json:"short_win_rate,omitempty"`
	Patterns     []PatternFlag `json:"patterns,omitempty"`
}

// ReliabilityPrior is the slowly-updated external trust score for a source.
// It is read-only inside the engine; only the admin/learning path writes it.
type ReliabilityPrior struct {
	Kind      SourceKind `json:"kind"`
	Prior     float64    `json:"prior"`
	UpdatedAt time.Time  `json:"updated_at"`
}
