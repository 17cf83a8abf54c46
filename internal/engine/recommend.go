package engine

import (
	"fmt"
	"strings"

	"ScoreFuse/internal/domain/models"
)

// TradePlan is the decision-table output: the directional call plus its
// risk-adjusted trade parameters.
type TradePlan struct {
	Recommendation  models.Recommendation
	PositionSizePct float64
	StopLossPct     float64
	TakeProfitPcts  []float64
}

// Recommender maps the final score and win rates onto the fixed, ordered
// decision table and derives trade parameters.
type Recommender struct {
	cfg *Config
}

func NewRecommender(cfg *Config) *Recommender {
	return &Recommender{cfg: cfg}
}

// Decide evaluates the five-branch table in order; the first match wins.
// STRONG calls require actual win-rate evidence; plain LONG/SHORT waive the
// win-rate condition when no source supplied one. Results below the
// confidence gate are forced to NEUTRAL.
func (r *Recommender) Decide(agg Aggregate, patterns PatternOutcome, cond models.MarketCondition, riskScore float64) TradePlan {
	d := r.cfg.Decision
	rec := models.RecNeutral
	if agg.Confidence >= d.MinConfidence {
		switch {
		case agg.FinalScore >= d.StrongLongScore && agg.HasLongRate && agg.LongWinRate > d.StrongLongWinRate:
			rec = models.RecStrongLong
		case agg.FinalScore >= d.LongScore && (!agg.HasLongRate || agg.LongWinRate > d.LongWinRate):
			rec = models.RecLong
		case agg.FinalScore <= d.StrongShortScore && agg.HasShortRate && agg.ShortWinRate > d.StrongShortWinRate:
			rec = models.RecStrongShort
		case agg.FinalScore <= d.ShortScore && (!agg.HasShortRate || agg.ShortWinRate > d.ShortWinRate):
			rec = models.RecShort
		}
	}

	return TradePlan{
		Recommendation:  rec,
		PositionSizePct: r.positionSize(rec, agg.Confidence, riskScore),
		StopLossPct:     r.stopLoss(cond, patterns, riskScore),
		TakeProfitPcts:  r.takeProfits(rec),
	}
}

// positionSize picks the range for the signal class and scales within it by
// confidence. Elevated risk compresses the range regardless of signal
// strength; NEUTRAL sizes to zero.
func (r *Recommender) positionSize(rec models.Recommendation, confidence, riskScore float64) float64 {
	if rec == models.RecNeutral {
		return 0
	}
	rk := r.cfg.Risk
	lo, hi := rk.DirectionalSizeMin, rk.DirectionalSizeMax
	if rec == models.RecStrongLong || rec == models.RecStrongShort {
		lo, hi = rk.StrongSizeMin, rk.StrongSizeMax
	}
	if riskScore >= rk.HighRiskScore {
		lo, hi = rk.HighRiskSizeMin, rk.HighRiskSizeMax
	}
	return lo + (hi-lo)*clamp(confidence, 0, 1)
}

func (r *Recommender) stopLoss(cond models.MarketCondition, patterns PatternOutcome, riskScore float64) float64 {
	rk := r.cfg.Risk
	sl := rk.StopLossBase
	if cond == models.ConditionHighVolatility {
		sl += rk.StopLossVolBump
	}
	if patternActive(patterns, "extreme_volatility") {
		sl += rk.StopLossExtremeAdd
	}
	if riskScore >= rk.VeryHighRiskScore {
		sl -= rk.StopLossTighten
	}
	if sl < rk.StopLossFloor {
		sl = rk.StopLossFloor
	}
	return sl
}

func (r *Recommender) takeProfits(rec models.Recommendation) []float64 {
	rk := r.cfg.Risk
	var src []float64
	switch rec {
	case models.RecStrongLong, models.RecStrongShort:
		src = rk.TakeProfitStrong
	case models.RecLong, models.RecShort:
		src = rk.TakeProfitDir
	default:
		src = rk.TakeProfitNeutral
	}
	out := make([]float64, len(src))
	copy(out, src)
	return out
}

// Narrative builds the free-text rationale from the weight reasoning, the
// active patterns, and the win-rate summary.
func (r *Recommender) Narrative(agg Aggregate, ws WeightSet, patterns PatternOutcome, plan TradePlan, dropped []DroppedSource) string {
	var b strings.Builder
	b.WriteString(ws.Reasoning)
	b.WriteString(". ")
	if len(patterns.Active) > 0 {
		fmt.Fprintf(&b, "Active patterns: %s (×%.4f). ", strings.Join(patterns.Active, ", "), patterns.Coefficient)
	} else {
		b.WriteString("No pattern triggers. ")
	}
	switch {
	case agg.HasLongRate && agg.HasShortRate:
		fmt.Fprintf(&b, "Win rates: long %.1f%%, short %.1f%%. ", agg.LongWinRate, agg.ShortWinRate)
	case agg.HasLongRate:
		fmt.Fprintf(&b, "Win rates: long %.1f%%. ", agg.LongWinRate)
	case agg.HasShortRate:
		fmt.Fprintf(&b, "Win rates: short %.1f%%. ", agg.ShortWinRate)
	default:
		b.WriteString("No win-rate data. ")
	}
	if len(dropped) > 0 {
		parts := make([]string, len(dropped))
		for i, d := range dropped {
			parts[i] = d.String()
		}
		fmt.Fprintf(&b, "Excluded sources: %s. ", strings.Join(parts, "; "))
	}
	fmt.Fprintf(&b, "Final score %.1f/100 with confidence %.2f: %s.",
		agg.FinalScore, agg.Confidence, plan.Recommendation)
	return b.String()
}

func patternActive(p PatternOutcome, name string) bool {
	prefix := name + " ("
	for _, a := range p.Active {
		if strings.HasPrefix(a, prefix) {
			return true
		}
	}
	return false
}
