package processor

import (
	"testing"
	"time"

	"CoinPulse/internal/domain/models"
)

func seriesOf(closes []float64) []models.Candle {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{
			Market:    "KRW-BTC",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      c * 0.998,
			High:      c * 1.004,
			Low:       c * 0.994,
			Close:     c,
			Volume:    100,
		}
	}
	return out
}

func rampCloses(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestTrendInsufficientData(t *testing.T) {
	res := NewTrend().Analyze(seriesOf(rampCloses(30, 100, 1)), nil)
	if res.Status != models.StatusInsufficientData {
		t.Fatalf("expected insufficient_data, got %s", res.Status)
	}
}

func TestTrendUptrendSignals(t *testing.T) {
	res := NewTrend().Analyze(seriesOf(rampCloses(100, 100, 1)), nil)
	if res.Status != models.StatusOK {
		t.Fatalf("status: %s", res.Status)
	}

	for _, key := range []string{"sma_20", "sma_50", "rsi_14", "macd_hist", "trend_r2"} {
		if _, ok := res.Indicators[key]; !ok {
			t.Fatalf("missing indicator %s", key)
		}
	}

	// a clean monotone ramp keeps RSI pinned high and the fit near perfect
	if res.Indicators["rsi_14"] < 70 {
		t.Fatalf("expected overbought rsi, got %v", res.Indicators["rsi_14"])
	}
	if !hasSignal(res, "ma_bullish_alignment") {
		t.Fatalf("expected ma_bullish_alignment, got %+v", res.Signals)
	}
	if !hasSignal(res, "regression_uptrend") {
		t.Fatalf("expected regression_uptrend, got %+v", res.Signals)
	}
}

func TestTrendDowntrendSignals(t *testing.T) {
	res := NewTrend().Analyze(seriesOf(rampCloses(100, 300, -1)), nil)
	if res.Status != models.StatusOK {
		t.Fatalf("status: %s", res.Status)
	}
	if !hasSignal(res, "ma_bearish_alignment") {
		t.Fatalf("expected ma_bearish_alignment, got %+v", res.Signals)
	}
	if !hasSignal(res, "regression_downtrend") {
		t.Fatalf("expected regression_downtrend, got %+v", res.Signals)
	}
}

func TestTrendConfidence(t *testing.T) {
	short := NewTrend().Analyze(seriesOf(rampCloses(60, 100, 1)), nil)
	full := NewTrend().Analyze(seriesOf(rampCloses(200, 100, 1)), nil)
	if full.Confidence != 1 {
		t.Fatalf("expected full confidence at 200 candles, got %v", full.Confidence)
	}
	if short.Confidence >= 1 || short.Confidence < 0.3 {
		t.Fatalf("short confidence out of range: %v", short.Confidence)
	}
	if _, ok := full.Indicators["sma_200"]; !ok {
		t.Fatalf("expected sma_200 at 200 candles")
	}
	if _, ok := short.Indicators["sma_200"]; ok {
		t.Fatalf("sma_200 must not appear below 200 candles")
	}
}

func TestTrendSnapshotPriceOverridesLastClose(t *testing.T) {
	candles := seriesOf(rampCloses(100, 100, 1))
	snap := &models.MarketSnapshot{Market: "KRW-BTC", CurrentPrice: 1}

	res := NewTrend().Analyze(candles, snap)
	// a current price far below the averages flips alignment bearish
	if hasSignal(res, "ma_bullish_alignment") {
		t.Fatalf("bullish alignment should not hold at price 1")
	}
}
