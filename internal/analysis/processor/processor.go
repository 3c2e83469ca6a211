package processor

import (
	"fmt"

	"CoinPulse/internal/domain/models"
)

// Processor is a stateless analyzer over one market's candle history.
// Analyze must be pure: same inputs, same result, no retained state.
// Failures are reported through the result status, never by panicking on
// valid input.
type Processor interface {
	Name() string
	MinCandles() int
	// Categories lists the weight categories this processor can vote in.
	// A category stays active in consensus while at least one of its
	// feeding processors produced an ok result.
	Categories() []models.Category
	Analyze(candles []models.Candle, snap *models.MarketSnapshot) models.ProcessorResult
}

func insufficientResult(name string, have, need int) models.ProcessorResult {
	return models.ProcessorResult{
		Processor: name,
		Status:    models.StatusInsufficientData,
		Error:     fmt.Sprintf("have %d candles, need %d", have, need),
	}
}

// confidence scales with available history against the preferred depth,
// clamped to [0.3, 1] so a minimally sufficient run still votes.
func confidence(have, preferred int) float64 {
	if have >= preferred {
		return 1
	}
	c := float64(have) / float64(preferred)
	if c < 0.3 {
		return 0.3
	}
	return c
}

// last returns the final element of a series, or 0 for an empty one.
func last(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return vals[len(vals)-1]
}

// at returns the element offset places back from the end (at(vals, 0) is
// the last element), or 0 when out of range.
func at(vals []float64, offset int) float64 {
	i := len(vals) - 1 - offset
	if i < 0 {
		return 0
	}
	return vals[i]
}

// crossedAbove reports whether a crossed above b within the trailing
// lookback bars. Leading warmup zeros emitted by indicator functions are
// treated as missing values.
func crossedAbove(a, b []float64, lookback int) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := n - lookback; i < n; i++ {
		if i < 1 {
			continue
		}
		if a[i-1] == 0 || b[i-1] == 0 || a[i] == 0 || b[i] == 0 {
			continue
		}
		if a[i-1] <= b[i-1] && a[i] > b[i] {
			return true
		}
	}
	return false
}

func extractCloses(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

func extractHighs(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.High
	}
	return out
}

func extractLows(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Low
	}
	return out
}

func extractVolumes(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}
