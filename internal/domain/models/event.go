package models

// ScoreEvent is one source-score update pushed over the score feed.
type ScoreEvent struct {
	Symbol string      `json:"symbol"`
	Score  SourceScore `json:"score"`
}
