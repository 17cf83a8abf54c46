package models

import "time"

// HistoryRecord snapshots one aggregation together with the inputs that
// produced it. Records are append-only and immutable once written.
type HistoryRecord struct {
	Symbol     string                          `json:"symbol"`
	Result     AggregationResult               `json:"result"`
	Inputs     []SourceScore                   `json:"inputs"`
	Condition  MarketCondition                 `json:"condition"`
	Priors     map[SourceKind]ReliabilityPrior `json:"priors"`
	RecordedAt time.Time                       `json:"recorded_at"`
}

// HistoryStats is the rolling view served by the history tracker.
type HistoryStats struct {
	Symbol       string  `json:"symbol"`
	Records      int     `json:"records"`
	AverageScore float64 `json:"average_score"`
	MinScore     float64 `json:"min_score"`
	MaxScore     float64 `json:"max_score"`
}
