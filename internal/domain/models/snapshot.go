package models

import "time"

// TrendLabel classifies a short-window price direction.
type TrendLabel string

const (
	TrendUp       TrendLabel = "up"
	TrendDown     TrendLabel = "down"
	TrendSideways TrendLabel = "sideways"
)

// MarketSnapshot is the enriched market state produced by the preprocessor
// and consumed by every processor. Support and Resistance are nil when the
// history is too short to derive them.
type MarketSnapshot struct {
	Market            string     `json:"market"`
	CurrentPrice      float64    `json:"current_price"`
	PriceChange24hPct float64    `json:"price_change_24h_pct"`
	PriceChange24hAbs float64    `json:"price_change_24h_abs"`
	High24h           float64    `json:"high_24h"`
	Low24h            float64    `json:"low_24h"`
	VolatilityPct     float64    `json:"volatility_pct"`
	BaseVolume24h     float64    `json:"volume_24h_base"`
	QuoteVolume24h    float64    `json:"quote_volume_24h"`
	VolumeAverage     float64    `json:"volume_average"`
	VolumeRatio       float64    `json:"volume_ratio"`
	Support           *float64   `json:"support,omitempty"`
	Resistance        *float64   `json:"resistance,omitempty"`
	Trend1h           TrendLabel `json:"trend_1h"`
	Trend24h          TrendLabel `json:"trend_24h"`
	GeneratedAt       time.Time  `json:"generated_at"`
}
