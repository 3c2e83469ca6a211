package processor

import (
	"testing"

	"CoinPulse/internal/domain/models"
)

func TestPriceActionInsufficientData(t *testing.T) {
	res := NewPriceAction().Analyze(seriesOf(rampCloses(20, 100, 1)), nil)
	if res.Status != models.StatusInsufficientData {
		t.Fatalf("expected insufficient_data, got %s", res.Status)
	}
}

func TestPriceActionBreakoutAboveResistance(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100
	}
	closes[39] = 110 // clears the prior 20-candle range high

	res := NewPriceAction().Analyze(seriesOf(closes), nil)
	if res.Status != models.StatusOK {
		t.Fatalf("status: %s", res.Status)
	}
	if !hasSignal(res, "breakout_above_resistance") {
		t.Fatalf("expected breakout_above_resistance, got %+v", res.Signals)
	}
	if res.Indicators["range_high_20"] >= 110 {
		t.Fatalf("range high should exclude the breakout candle, got %v", res.Indicators["range_high_20"])
	}
}

func TestPriceActionBreakdownBelowSupport(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100
	}
	closes[39] = 90

	res := NewPriceAction().Analyze(seriesOf(closes), nil)
	if !hasSignal(res, "breakdown_below_support") {
		t.Fatalf("expected breakdown_below_support, got %+v", res.Signals)
	}
}

func TestPriceActionStructureUptrend(t *testing.T) {
	// alternating rising waves produce higher highs and higher lows
	closes := make([]float64, 40)
	for i := range closes {
		wave := []float64{0, 3, 6, 3}[i%4]
		closes[i] = 100 + float64(i)*0.8 + wave
	}
	res := NewPriceAction().Analyze(seriesOf(closes), nil)
	if !hasSignal(res, "structure_uptrend") {
		t.Fatalf("expected structure_uptrend, got %+v", res.Signals)
	}
}

func TestPriceActionStructureDowntrend(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		wave := []float64{0, 3, 6, 3}[i%4]
		closes[i] = 200 - float64(i)*0.8 + wave
	}
	res := NewPriceAction().Analyze(seriesOf(closes), nil)
	if !hasSignal(res, "structure_downtrend") {
		t.Fatalf("expected structure_downtrend, got %+v", res.Signals)
	}
}

func TestSwingPointsRespectRadius(t *testing.T) {
	closes := []float64{100, 101, 105, 101, 100, 99, 95, 99, 100}
	highs, lows := swingPoints(seriesOf(closes), 2)
	if len(highs) != 1 {
		t.Fatalf("expected 1 swing high, got %v", highs)
	}
	if len(lows) != 1 {
		t.Fatalf("expected 1 swing low, got %v", lows)
	}
}
