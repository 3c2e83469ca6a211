package analysis

import (
	"errors"
	"testing"
	"time"

	"CoinPulse/internal/domain/models"
)

func hourlySeries(market string, closes []float64) *models.CandleSeries {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, len(closes))
	for i, c := range closes {
		candles[i] = models.Candle{
			Market:    market,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      c * 0.995,
			High:      c * 1.01,
			Low:       c * 0.99,
			Close:     c,
			Volume:    100,
		}
	}
	return &models.CandleSeries{Market: market, Timeframe: "1h", Candles: candles}
}

func TestEnrichInsufficientData(t *testing.T) {
	p := NewPreprocessor(PreprocessorConfig{})

	_, err := p.Enrich(hourlySeries("KRW-BTC", []float64{100}), nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	var insufficient *InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %T", err)
	}
	if insufficient.Have != 1 || insufficient.Need != 2 {
		t.Fatalf("unexpected counts: have=%d need=%d", insufficient.Have, insufficient.Need)
	}
}

func TestEnrichCurrentPriceFromTicker(t *testing.T) {
	p := NewPreprocessor(PreprocessorConfig{})
	series := hourlySeries("KRW-BTC", []float64{100, 101, 102, 103})

	snap, err := p.Enrich(series, &models.Ticker{Market: "KRW-BTC", TradePrice: 110})
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if snap.CurrentPrice != 110 {
		t.Fatalf("expected ticker price 110, got %v", snap.CurrentPrice)
	}

	snap, err = p.Enrich(series, nil)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if snap.CurrentPrice != 103 {
		t.Fatalf("expected last close 103, got %v", snap.CurrentPrice)
	}
}

func TestEnrich24hStats(t *testing.T) {
	p := NewPreprocessor(PreprocessorConfig{})
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	closes[29] = 105
	series := hourlySeries("KRW-BTC", closes)

	snap, err := p.Enrich(series, nil)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if snap.High24h < snap.Low24h {
		t.Fatalf("high %v below low %v", snap.High24h, snap.Low24h)
	}
	if snap.VolatilityPct <= 0 {
		t.Fatalf("expected positive volatility pct, got %v", snap.VolatilityPct)
	}
	// close 24h ago was 100, current 105
	if snap.PriceChange24hPct < 4 || snap.PriceChange24hPct > 6 {
		t.Fatalf("unexpected 24h change %v", snap.PriceChange24hPct)
	}
}

func TestEnrichVolumeRatio(t *testing.T) {
	p := NewPreprocessor(PreprocessorConfig{VolumeLookback: 5})
	series := hourlySeries("KRW-BTC", []float64{100, 100, 100, 100, 100, 100, 100})
	// spike the last candle to 3x the trailing average
	series.Candles[len(series.Candles)-1].Volume = 300

	snap, err := p.Enrich(series, nil)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if snap.VolumeRatio < 2.9 || snap.VolumeRatio > 3.1 {
		t.Fatalf("expected volume ratio ~3, got %v", snap.VolumeRatio)
	}
}

func TestEnrichTrendLabels(t *testing.T) {
	p := NewPreprocessor(PreprocessorConfig{})

	up := make([]float64, 30)
	for i := range up {
		up[i] = 100 + float64(i)
	}
	snap, err := p.Enrich(hourlySeries("KRW-BTC", up), nil)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if snap.Trend24h != models.TrendUp {
		t.Fatalf("expected 24h uptrend, got %s", snap.Trend24h)
	}

	flat := make([]float64, 30)
	for i := range flat {
		flat[i] = 100
	}
	snap, err = p.Enrich(hourlySeries("KRW-BTC", flat), nil)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if snap.Trend24h != models.TrendSideways {
		t.Fatalf("expected sideways, got %s", snap.Trend24h)
	}
}

func TestEnrichSupportResistance(t *testing.T) {
	p := NewPreprocessor(PreprocessorConfig{SwingRadius: 2})
	// valley at index 5, peak at index 10
	closes := []float64{100, 99, 98, 97, 96, 95, 96, 97, 99, 101, 104, 101, 100, 100, 100, 100}
	series := hourlySeries("KRW-BTC", closes)

	snap, err := p.Enrich(series, nil)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if snap.Support == nil {
		t.Fatalf("expected support")
	}
	if *snap.Support >= snap.CurrentPrice {
		t.Fatalf("support %v not below price %v", *snap.Support, snap.CurrentPrice)
	}
	if snap.Resistance == nil {
		t.Fatalf("expected resistance")
	}
	if *snap.Resistance <= snap.CurrentPrice {
		t.Fatalf("resistance %v not above price %v", *snap.Resistance, snap.CurrentPrice)
	}
}

func TestEnrichAbsoluteChangeAndVolumes(t *testing.T) {
	p := NewPreprocessor(PreprocessorConfig{VolumeLookback: 5})
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	closes[29] = 105
	series := hourlySeries("KRW-BTC", closes)
	series.Candles[29].Volume = 300

	snap, err := p.Enrich(series, nil)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}

	// reference close 24h before the last candle is 100, current 105
	if snap.PriceChange24hAbs != 5 {
		t.Fatalf("expected absolute change 5, got %v", snap.PriceChange24hAbs)
	}

	// trailing average over the 5 candles before the spike
	if snap.VolumeAverage != 100 {
		t.Fatalf("expected volume average 100, got %v", snap.VolumeAverage)
	}
	if snap.VolumeRatio != 3 {
		t.Fatalf("expected volume ratio 3, got %v", snap.VolumeRatio)
	}

	// 24h window holds the newest 25 candles: 24 at 100 plus the 300 spike
	if snap.BaseVolume24h != 24*100+300 {
		t.Fatalf("expected 24h base volume 2700, got %v", snap.BaseVolume24h)
	}
}
