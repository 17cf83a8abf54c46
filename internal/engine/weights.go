package engine

import (
	"fmt"
	"strings"

	"ScoreFuse/internal/domain/models"
)

// WeightSet is the output of the weight calculator.
type WeightSet struct {
	// Weights sum to 1.0 over the present sources.
	Weights map[models.SourceKind]float64
	// Confidence measures trust in the weight assignment itself (driven by
	// source count), distinct from the final result confidence.
	Confidence float64
	// Reasoning names the dominant source and the condition that favored it.
	Reasoning string
}

// WeightCalculator turns reliability priors, per-source quality, and the
// market condition into normalized per-source weights.
type WeightCalculator struct {
	cfg *Config
}

func NewWeightCalculator(cfg *Config) *WeightCalculator {
	return &WeightCalculator{cfg: cfg}
}

// Calculate computes normalized weights for the surviving sources. Iteration
// follows the canonical source order so identical inputs always produce
// bit-identical sums.
func (w *WeightCalculator) Calculate(
	scores []NormalizedScore,
	priors map[models.SourceKind]models.ReliabilityPrior,
	cond models.MarketCondition,
) WeightSet {
	byKind := make(map[models.SourceKind]NormalizedScore, len(scores))
	for _, s := range scores {
		byKind[s.Kind] = s
	}

	raw := make(map[models.SourceKind]float64, len(scores))
	var sum float64
	for _, kind := range models.SourceKinds() {
		s, ok := byKind[kind]
		if !ok {
			continue
		}
		prior := w.cfg.DefaultPrior
		if p, ok := priors[kind]; ok {
			prior = p.Prior
		}
		rw := prior * s.Confidence * s.Quality * w.conditionMultiplier(cond, kind)
		raw[kind] = rw
		sum += rw
	}

	weights := make(map[models.SourceKind]float64, len(raw))
	switch {
	case len(raw) == 1:
		// single source is weighted exactly 1.0; the low weight confidence
		// carries the penalty downstream instead
		for kind := range raw {
			weights[kind] = 1.0
		}
	case sum == 0:
		// all raw weights vanished (e.g. zero priors); fall back to an
		// equal split across present sources
		eq := 1.0 / float64(len(raw))
		for kind := range raw {
			weights[kind] = eq
		}
	default:
		for kind, rw := range raw {
			weights[kind] = rw / sum
		}
	}

	return WeightSet{
		Weights:    weights,
		Confidence: w.cfg.WeightConfidence[len(raw)],
		Reasoning:  w.reasoning(weights, cond, sum == 0),
	}
}

func (w *WeightCalculator) conditionMultiplier(cond models.MarketCondition, kind models.SourceKind) float64 {
	if row, ok := w.cfg.ConditionMultipliers[cond]; ok {
		if m, ok := row[kind]; ok {
			return m
		}
	}
	return 1.0
}

func (w *WeightCalculator) reasoning(weights map[models.SourceKind]float64, cond models.MarketCondition, equalSplit bool) string {
	if len(weights) == 0 {
		return "no sources available"
	}
	if equalSplit && len(weights) > 1 {
		return fmt.Sprintf("all raw weights were zero; %d sources weighted equally under %s", len(weights), cond)
	}

	var dominant models.SourceKind
	best := -1.0
	for _, kind := range models.SourceKinds() {
		if wv, ok := weights[kind]; ok && wv > best {
			best = wv
			dominant = kind
		}
	}

	var b strings.Builder
	if len(weights) == 1 {
		fmt.Fprintf(&b, "%s is the only source and carries full weight", dominant)
	} else {
		fmt.Fprintf(&b, "%s carries the largest weight (%.2f)", dominant, best)
	}
	if m := w.conditionMultiplier(cond, dominant); m != 1.0 {
		fmt.Fprintf(&b, "; %s condition favors %s (×%.2f)", cond, dominant, m)
	} else if cond != models.ConditionNormal {
		fmt.Fprintf(&b, " under %s conditions", cond)
	}
	return b.String()
}
