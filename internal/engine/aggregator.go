package engine

import (
	"ScoreFuse/internal/domain/models"
)

// Aggregate is the combined score before the recommendation stage.
type Aggregate struct {
	BaseScore     float64
	AdjustedScore float64
	FinalScore    float64
	// Confidence = weight confidence × weighted average source confidence.
	Confidence    float64
	Contributions []models.SourceContribution
	// Weighted win rates over the sources that supplied them; HasLong /
	// HasShort say whether any did.
	LongWinRate  float64
	ShortWinRate float64
	HasLongRate  bool
	HasShortRate bool
}

// Aggregator combines normalized scores, weights, and the pattern
// coefficient into a final calibrated score.
type Aggregator struct {
	cfg *Config
}

func NewAggregator(cfg *Config) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Combine computes the weighted base score, applies the pattern coefficient
// and the confidence factor, and clamps into [0,100]. Returns
// ErrInsufficientData when no sources survived normalization.
func (a *Aggregator) Combine(scores []NormalizedScore, ws WeightSet, patterns PatternOutcome) (Aggregate, error) {
	if len(scores) == 0 {
		return Aggregate{}, ErrInsufficientData
	}

	byKind := make(map[models.SourceKind]NormalizedScore, len(scores))
	for _, s := range scores {
		byKind[s.Kind] = s
	}

	var (
		base          float64
		weightedConf  float64
		contributions = make([]models.SourceContribution, 0, len(scores))
		longSum       float64
		longWeight    float64
		shortSum      float64
		shortWeight   float64
	)
	for _, kind := range models.SourceKinds() {
		s, ok := byKind[kind]
		if !ok {
			continue
		}
		w := ws.Weights[kind]
		contrib := s.Value * w
		base += contrib
		weightedConf += s.Confidence * w
		contributions = append(contributions, models.SourceContribution{
			Kind:         kind,
			Value:        s.Value,
			Quality:      s.Quality,
			Confidence:   s.Confidence,
			Weight:       w,
			Contribution: contrib,
		})
		if s.LongWinRate != nil {
			longSum += *s.LongWinRate * w
			longWeight += w
		}
		if s.ShortWinRate != nil {
			shortSum += *s.ShortWinRate * w
			shortWeight += w
		}
	}

	adjusted := base * patterns.Coefficient
	confidenceFactor := a.cfg.ConfidenceFloor + (1.0-a.cfg.ConfidenceFloor)*weightedConf
	final := clamp(adjusted*confidenceFactor, 0, 100)

	agg := Aggregate{
		BaseScore:     base,
		AdjustedScore: adjusted,
		FinalScore:    final,
		Confidence:    ws.Confidence * weightedConf,
		Contributions: contributions,
		HasLongRate:   longWeight > 0,
		HasShortRate:  shortWeight > 0,
	}
	if longWeight > 0 {
		agg.LongWinRate = longSum / longWeight
	}
	if shortWeight > 0 {
		agg.ShortWinRate = shortSum / shortWeight
	}
	return agg, nil
}
