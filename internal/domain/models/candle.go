package models

import (
	"fmt"
	"time"
)

// Candle is a single OHLCV interval in base-asset volume.
type Candle struct {
	Market      string    `json:"market"`
	Timestamp   time.Time `json:"timestamp"`
	Open        float64   `json:"open"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Close       float64   `json:"close"`
	Volume      float64   `json:"volume"`
	QuoteVolume float64   `json:"quote_volume,omitempty"`
}

// Bullish reports whether the candle closed above its open.
func (c Candle) Bullish() bool { return c.Close > c.Open }

// Body returns the absolute open-close distance.
func (c Candle) Body() float64 {
	if c.Close >= c.Open {
		return c.Close - c.Open
	}
	return c.Open - c.Close
}

// Range returns the high-low distance.
func (c Candle) Range() float64 { return c.High - c.Low }

// UpperShadow returns the wick above the body.
func (c Candle) UpperShadow() float64 {
	if c.Close >= c.Open {
		return c.High - c.Close
	}
	return c.High - c.Open
}

// LowerShadow returns the wick below the body.
func (c Candle) LowerShadow() float64 {
	if c.Close >= c.Open {
		return c.Open - c.Low
	}
	return c.Close - c.Low
}

// CandleSeries is an ordered candle history for one market and timeframe.
// Candles are ascending by timestamp, oldest first.
type CandleSeries struct {
	Market    string   `json:"market"`
	Timeframe string   `json:"timeframe"`
	Candles   []Candle `json:"candles"`
}

// Validate checks ordering, uniqueness and basic OHLC sanity.
func (s *CandleSeries) Validate() error {
	if s.Market == "" {
		return fmt.Errorf("candle series: market required")
	}
	for i, c := range s.Candles {
		if c.High < c.Low {
			return fmt.Errorf("candle series %s[%d]: high %.8f below low %.8f", s.Market, i, c.High, c.Low)
		}
		if c.Volume < 0 {
			return fmt.Errorf("candle series %s[%d]: negative volume", s.Market, i)
		}
		if i > 0 && !c.Timestamp.After(s.Candles[i-1].Timestamp) {
			return fmt.Errorf("candle series %s[%d]: timestamps must be strictly ascending", s.Market, i)
		}
	}
	return nil
}

// Len returns the number of candles.
func (s *CandleSeries) Len() int { return len(s.Candles) }

// Last returns the most recent candle. Panics on empty series; callers
// validate length first.
func (s *CandleSeries) Last() Candle { return s.Candles[len(s.Candles)-1] }

// Closes extracts close prices in series order.
func (s *CandleSeries) Closes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}

// Highs extracts high prices in series order.
func (s *CandleSeries) Highs() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.High
	}
	return out
}

// Lows extracts low prices in series order.
func (s *CandleSeries) Lows() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Low
	}
	return out
}

// Volumes extracts base volumes in series order.
func (s *CandleSeries) Volumes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Volume
	}
	return out
}

// Since returns the suffix of candles at or after ts.
func (s *CandleSeries) Since(ts time.Time) []Candle {
	for i, c := range s.Candles {
		if !c.Timestamp.Before(ts) {
			return s.Candles[i:]
		}
	}
	return nil
}

// Ticker is the latest trade snapshot for a market.
type Ticker struct {
	Market         string    `json:"market"`
	TradePrice     float64   `json:"trade_price"`
	QuoteVolume24h float64   `json:"quote_volume_24h"`
	ChangeRate24h  float64   `json:"change_rate_24h"`
	Timestamp      time.Time `json:"timestamp"`
}
