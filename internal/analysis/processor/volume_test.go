package processor

import (
	"testing"

	"CoinPulse/internal/domain/models"
)

func withVolumes(candles []models.Candle, volumes []float64) []models.Candle {
	for i := range candles {
		if i < len(volumes) {
			candles[i].Volume = volumes[i]
		}
	}
	return candles
}

func TestVolumeInsufficientData(t *testing.T) {
	res := NewVolume().Analyze(seriesOf(rampCloses(10, 100, 1)), nil)
	if res.Status != models.StatusInsufficientData {
		t.Fatalf("expected insufficient_data, got %s", res.Status)
	}
}

func TestVolumeIndicators(t *testing.T) {
	res := NewVolume().Analyze(seriesOf(rampCloses(60, 100, 0.5)), nil)
	if res.Status != models.StatusOK {
		t.Fatalf("status: %s", res.Status)
	}
	for _, key := range []string{"mfi_14", "obv", "obv_slope", "volume_sma_20", "volume_ratio"} {
		if _, ok := res.Indicators[key]; !ok {
			t.Fatalf("missing indicator %s", key)
		}
	}
}

func TestVolumeObvConfirmsUptrend(t *testing.T) {
	// rising closes with constant volume push OBV steadily up
	res := NewVolume().Analyze(seriesOf(rampCloses(60, 100, 1)), nil)
	if !hasSignal(res, "obv_confirms_uptrend") {
		t.Fatalf("expected obv_confirms_uptrend, got %+v", res.Signals)
	}
}

func TestVolumeSpikeBearish(t *testing.T) {
	closes := rampCloses(40, 200, -0.2) // drifting down, last candle bearish
	volumes := make([]float64, 40)
	for i := range volumes {
		volumes[i] = 100
	}
	volumes[39] = 1000

	candles := withVolumes(seriesOf(closes), volumes)
	// make the spike candle bearish
	lastIdx := len(candles) - 1
	candles[lastIdx].Open = candles[lastIdx].Close * 1.002
	candles[lastIdx].High = candles[lastIdx].Open * 1.001

	res := NewVolume().Analyze(candles, nil)
	if !hasSignal(res, "volume_spike_bearish") {
		t.Fatalf("expected volume_spike_bearish, got %+v", res.Signals)
	}
}

func TestVolumeDryup(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100
	}
	volumes := make([]float64, 40)
	for i := range volumes {
		volumes[i] = 100
	}
	volumes[39] = 10

	res := NewVolume().Analyze(withVolumes(seriesOf(closes), volumes), nil)
	if !hasSignal(res, "volume_dryup") {
		t.Fatalf("expected volume_dryup, got %+v", res.Signals)
	}
}
