package processor

import (
	"testing"
	"time"

	"CoinPulse/internal/domain/models"
)

func candlesFrom(bars [][4]float64) []models.Candle {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, len(bars))
	for i, b := range bars {
		out[i] = models.Candle{
			Market:    "KRW-BTC",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      b[0],
			High:      b[1],
			Low:       b[2],
			Close:     b[3],
			Volume:    100,
		}
	}
	return out
}

func hasSignal(res models.ProcessorResult, label string) bool {
	for _, s := range res.Signals {
		if s.Label == label {
			return true
		}
	}
	return false
}

func TestCandlestickInsufficientData(t *testing.T) {
	res := NewCandlestick().Analyze(candlesFrom([][4]float64{
		{100, 101, 99, 100},
		{100, 101, 99, 100},
	}), nil)
	if res.Status != models.StatusInsufficientData {
		t.Fatalf("expected insufficient_data, got %s", res.Status)
	}
}

func TestCandlestickDoji(t *testing.T) {
	res := NewCandlestick().Analyze(candlesFrom([][4]float64{
		{100, 102, 98, 101},
		{101, 103, 99, 102},
		{102, 104, 100, 103},
		{103, 105, 101, 104},
		{104, 106, 102, 104.1}, // tiny body vs 4-point range
	}), nil)
	if res.Status != models.StatusOK {
		t.Fatalf("status: %s", res.Status)
	}
	if !hasSignal(res, "doji") {
		t.Fatalf("expected doji, got %+v", res.Signals)
	}
}

func TestCandlestickBullishEngulfing(t *testing.T) {
	res := NewCandlestick().Analyze(candlesFrom([][4]float64{
		{105, 106, 103, 104},
		{104, 105, 102, 103},
		{103, 104, 101, 102},
		{102, 103, 100, 101}, // bearish
		{100.5, 104, 100, 103.5}, // bullish body engulfing previous
	}), nil)
	if !hasSignal(res, "bullish_engulfing") {
		t.Fatalf("expected bullish_engulfing, got %+v", res.Signals)
	}
}

func TestCandlestickThreeWhiteSoldiers(t *testing.T) {
	res := NewCandlestick().Analyze(candlesFrom([][4]float64{
		{100, 101, 99, 100.5},
		{100, 102, 99, 101},
		{100.5, 103, 100, 102},
		{101, 104, 100.5, 103},
		{102, 105, 101.5, 104},
	}), nil)
	if !hasSignal(res, "three_white_soldiers") {
		t.Fatalf("expected three_white_soldiers, got %+v", res.Signals)
	}
}

func TestCandlestickHammerAfterDecline(t *testing.T) {
	res := NewCandlestick().Analyze(candlesFrom([][4]float64{
		{110, 111, 108, 109},
		{109, 110, 107, 108},
		{108, 109, 105, 106},
		{106, 107, 104, 105},
		{105, 105.6, 100, 105.5}, // long lower wick, small body at the top
	}), nil)
	if !hasSignal(res, "hammer") {
		t.Fatalf("expected hammer, got %+v", res.Signals)
	}
}

func TestCandlestickConfidenceScalesWithHistory(t *testing.T) {
	short := make([][4]float64, 5)
	long := make([][4]float64, 20)
	for i := range short {
		short[i] = [4]float64{100, 101, 99, 100.5}
	}
	for i := range long {
		long[i] = [4]float64{100, 101, 99, 100.5}
	}

	resShort := NewCandlestick().Analyze(candlesFrom(short), nil)
	resLong := NewCandlestick().Analyze(candlesFrom(long), nil)
	if resLong.Confidence != 1 {
		t.Fatalf("expected full confidence, got %v", resLong.Confidence)
	}
	if resShort.Confidence >= resLong.Confidence {
		t.Fatalf("short history should lower confidence: %v vs %v", resShort.Confidence, resLong.Confidence)
	}
}

func TestCandlestickWindowStrengthRatios(t *testing.T) {
	// window of 5: three bullish, one bearish, one flat
	res := NewCandlestick().Analyze(candlesFrom([][4]float64{
		{100, 102, 99, 101},
		{101, 103, 100, 102},
		{102, 103, 100, 101},
		{101, 102, 100, 101},
		{101, 103, 100, 102},
	}), nil)
	if res.Status != models.StatusOK {
		t.Fatalf("expected ok, got %s", res.Status)
	}
	if got := res.Indicators["bullish_ratio"]; got != 0.6 {
		t.Fatalf("expected bullish_ratio 0.6, got %v", got)
	}
	if got := res.Indicators["bearish_ratio"]; got != 0.2 {
		t.Fatalf("expected bearish_ratio 0.2, got %v", got)
	}
}
