package engine

import (
	"fmt"
	"sort"

	"ScoreFuse/internal/domain/models"
)

// PatternOutcome is the aggregated effect of all active pattern flags.
type PatternOutcome struct {
	// Coefficient multiplies the base score, clamped to the configured
	// [CompositeMin, CompositeMax] bound.
	Coefficient float64
	// Active lists the recognized patterns as "name (DIRECTION)" for the
	// rationale, sorted for stable output.
	Active []string
}

// PatternDetector folds the discrete pattern flags from all sources into a
// single bounded multiplier. Flag detection itself happens upstream; this
// only aggregates already-identified flags.
type PatternDetector struct {
	cfg *Config
}

func NewPatternDetector(cfg *Config) *PatternDetector {
	return &PatternDetector{cfg: cfg}
}

// Aggregate multiplies (1 + contribution) over every recognized flag, where
// contribution = direction sign × strength × |magnitude|. Flags without a
// magnitude table entry are ignored. Duplicate flag names keep the strongest
// occurrence so two sources reporting the same pattern do not compound it.
func (p *PatternDetector) Aggregate(scores []NormalizedScore) PatternOutcome {
	strongest := make(map[string]models.PatternFlag)
	for _, s := range scores {
		for _, f := range s.Patterns {
			if _, known := p.cfg.Magnitudes[f.Name]; !known {
				continue
			}
			if cur, ok := strongest[f.Name]; !ok || f.Strength > cur.Strength {
				strongest[f.Name] = f
			}
		}
	}

	names := make([]string, 0, len(strongest))
	for name := range strongest {
		names = append(names, name)
	}
	sort.Strings(names)

	coeff := 1.0
	active := make([]string, 0, len(names))
	for _, name := range names {
		f := strongest[name]
		mag := p.cfg.Magnitudes[name]
		if mag < 0 {
			mag = -mag
		}
		sign := 1.0
		if f.Direction == models.PatternBearish {
			sign = -1.0
		}
		strength := clamp(f.Strength, 0, 1)
		coeff *= 1.0 + sign*strength*mag
		active = append(active, fmt.Sprintf("%s (%s)", name, f.Direction))
	}

	return PatternOutcome{
		Coefficient: clamp(coeff, p.cfg.CompositeMin, p.cfg.CompositeMax),
		Active:      active,
	}
}
