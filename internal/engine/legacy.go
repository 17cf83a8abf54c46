package engine

// Boundary adapters for the historical 0-25 scoring scale. Conversion stays
// outside the aggregation path: callers translate at the edge and the core
// only ever sees 0-100 values.

const legacyScaleMax = 25.0

// FromLegacyScale converts a 0-25 score to the 0-100 scale.
func FromLegacyScale(v float64) float64 {
	return clamp(v, 0, legacyScaleMax) * (100.0 / legacyScaleMax)
}

// ToLegacyScale converts a 0-100 score back to the 0-25 scale.
func ToLegacyScale(v float64) float64 {
	return clamp(v, 0, 100) / (100.0 / legacyScaleMax)
}
