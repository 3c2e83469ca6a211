package models

import "time"

// SignalType is the final trading stance.
type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
	SignalHold SignalType = "HOLD"
)

// Signal is the end product of one evaluation cycle. Strength is in [0, 1].
// Degraded marks signals produced while one or more processors were
// excluded or while sentiment was unavailable after being requested.
type Signal struct {
	Market      string           `json:"market"`
	Type        SignalType       `json:"signal"`
	Strength    float64          `json:"strength"`
	Reasoning   []string         `json:"reasoning"`
	Degraded    bool             `json:"degraded,omitempty"`
	Snapshot    *MarketSnapshot  `json:"snapshot,omitempty"`
	Report      *ConsensusReport `json:"report,omitempty"`
	GeneratedAt time.Time        `json:"generated_at"`
}
