package models

import "time"

// Direction is the vote a single indicator signal casts.
type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
	DirectionNeutral Direction = "neutral"
)

// Category groups indicator signals into the fixed consensus weight buckets.
type Category string

const (
	CategoryOscillator Category = "oscillator"
	CategoryCrossover  Category = "crossover"
	CategoryAlignment  Category = "alignment"
	CategoryVolatility Category = "volatility"
	CategoryVolume     Category = "volume"
	CategorySentiment  Category = "sentiment"
)

// IndicatorSignal is one directional vote emitted by a processor.
// Weight is the signal's strength within its processor, in (0, 1].
type IndicatorSignal struct {
	Label     string    `json:"label"`
	Direction Direction `json:"direction"`
	Category  Category  `json:"category"`
	Weight    float64   `json:"weight"`
	Value     float64   `json:"value,omitempty"`
}

// ProcessorStatus describes how a processor run ended.
type ProcessorStatus string

const (
	StatusOK               ProcessorStatus = "ok"
	StatusInsufficientData ProcessorStatus = "insufficient_data"
	StatusError            ProcessorStatus = "error"
)

// ProcessorResult is the self-describing output of one processor run.
// Confidence reflects data sufficiency and is meaningful only for StatusOK.
type ProcessorResult struct {
	Processor  string             `json:"processor"`
	Status     ProcessorStatus    `json:"status"`
	Indicators map[string]float64 `json:"indicators,omitempty"`
	Signals    []IndicatorSignal  `json:"signals,omitempty"`
	Confidence float64            `json:"confidence"`
	Error      string             `json:"error,omitempty"`
}

// CategoryScore holds the raw directional evidence collected for one
// weight category before weighting. Active is false when every processor
// feeding the category was excluded.
type CategoryScore struct {
	BuyRaw  float64 `json:"buy_raw"`
	SellRaw float64 `json:"sell_raw"`
	Active  bool    `json:"active"`
}

// ConsensusReport is the deterministic merged output of one orchestrator
// run. Results preserve configured processor order. BuyScore and SellScore
// exclude sentiment, which the signal generator folds in separately.
type ConsensusReport struct {
	Market       string                     `json:"market"`
	BuyScore     float64                    `json:"buy_score"`
	SellScore    float64                    `json:"sell_score"`
	Results      []ProcessorResult          `json:"results"`
	Categories   map[Category]CategoryScore `json:"categories"`
	Contributing []string                   `json:"contributing_processors"`
	Excluded     map[string]string          `json:"excluded_processors,omitempty"`
	EvaluatedAt  time.Time                  `json:"evaluated_at"`
}
