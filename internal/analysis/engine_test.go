package analysis

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"CoinPulse/internal/analysis/processor"
	"CoinPulse/internal/domain/models"
)

// trendingSeries builds a noisy but upward drifting history long enough
// for every built-in processor.
func trendingSeries(n int, drift float64) *models.CandleSeries {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	price := 100.0
	for i := range candles {
		wave := math.Sin(float64(i)/5) * 0.8
		open := price
		price = price + drift + wave
		high := math.Max(open, price) * 1.005
		low := math.Min(open, price) * 0.995
		candles[i] = models.Candle{
			Market:    "KRW-BTC",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     price,
			Volume:    100 + math.Abs(wave)*50,
		}
	}
	return &models.CandleSeries{Market: "KRW-BTC", Timeframe: "1h", Candles: candles}
}

func TestNewEngineUnknownProcessor(t *testing.T) {
	_, err := NewEngine(Config{Processors: []string{"trend", "astrology"}}, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	var unknown *processor.UnknownProcessorError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownProcessorError, got %v", err)
	}
}

func TestEvaluateInsufficientHistory(t *testing.T) {
	eng, err := NewEngine(Config{}, nil)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	_, err = eng.Evaluate(context.Background(), trendingSeries(1, 0.5), nil, nil)
	var insufficient *InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
}

func TestEvaluateFullCycle(t *testing.T) {
	eng, err := NewEngine(Config{}, nil)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	series := trendingSeries(200, 0.5)
	sig, err := eng.Evaluate(context.Background(), series, nil, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if sig.Market != "KRW-BTC" {
		t.Fatalf("unexpected market %q", sig.Market)
	}
	if sig.Type != models.SignalBuy && sig.Type != models.SignalSell && sig.Type != models.SignalHold {
		t.Fatalf("unexpected signal type %q", sig.Type)
	}
	if sig.Strength < 0 || sig.Strength > 1 {
		t.Fatalf("strength out of range: %v", sig.Strength)
	}
	if sig.Snapshot == nil || sig.Report == nil {
		t.Fatalf("expected snapshot and report attached")
	}
	if len(sig.Report.Results) != 5 {
		t.Fatalf("expected 5 processor results, got %d", len(sig.Report.Results))
	}
	// 200 hourly candles satisfy every processor
	if len(sig.Report.Contributing) != 5 {
		t.Fatalf("expected all processors contributing, got %v (excluded: %v)",
			sig.Report.Contributing, sig.Report.Excluded)
	}
	if sig.Degraded {
		t.Fatalf("healthy run must not be degraded")
	}
	if sig.Report.BuyScore < 0 || sig.Report.BuyScore > 1 || sig.Report.SellScore < 0 || sig.Report.SellScore > 1 {
		t.Fatalf("scores out of range: buy=%v sell=%v", sig.Report.BuyScore, sig.Report.SellScore)
	}
}

// reversalSeries builds a long steady decline followed by a sharp
// recovery, shaped so the 20-period SMA crosses above the 50-period SMA a
// few bars before the end.
func reversalSeries() *models.CandleSeries {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, 200)
	prev := 1000.0
	for i := range candles {
		var price float64
		if i <= 176 {
			price = 1000 - 1.5*float64(i)
		} else {
			price = 736 + 3*float64(i-176)
		}
		candles[i] = models.Candle{
			Market:    "KRW-ETH",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      prev,
			High:      math.Max(prev, price) + 1,
			Low:       math.Min(prev, price) - 1,
			Close:     price,
			Volume:    100,
		}
		prev = price
	}
	return &models.CandleSeries{Market: "KRW-ETH", Timeframe: "1h", Candles: candles}
}

func TestEvaluateTrendReversalProducesBuy(t *testing.T) {
	eng, err := NewEngine(Config{Processors: []string{"trend"}}, nil)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	sig, err := eng.Evaluate(context.Background(), reversalSeries(), nil, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if sig.Type != models.SignalBuy {
		t.Fatalf("expected BUY, got %s (buy=%v sell=%v reasons=%v)",
			sig.Type, sig.Report.BuyScore, sig.Report.SellScore, sig.Reasoning)
	}
	if sig.Strength <= 0.6 {
		t.Fatalf("expected strength above 0.6, got %v", sig.Strength)
	}
	if sig.Degraded {
		t.Fatalf("single healthy processor must not degrade the signal")
	}
	if len(sig.Report.Contributing) != 1 || sig.Report.Contributing[0] != "trend" {
		t.Fatalf("expected trend contributing, got %v", sig.Report.Contributing)
	}
	// The recent golden cross carries the largest contribution and must
	// lead the reasoning.
	if len(sig.Reasoning) == 0 || sig.Reasoning[0] != "golden_cross" {
		t.Fatalf("expected golden_cross to lead reasoning, got %v", sig.Reasoning)
	}
	joined := strings.Join(sig.Reasoning, "; ")
	if !strings.Contains(joined, "rsi_overbought") {
		t.Fatalf("expected rsi_overbought in reasoning, got %v", sig.Reasoning)
	}
	if !strings.Contains(joined, "ma_bullish_alignment") {
		t.Fatalf("expected ma_bullish_alignment in reasoning, got %v", sig.Reasoning)
	}
}

func TestEvaluateShortHistoryDegrades(t *testing.T) {
	eng, err := NewEngine(Config{}, nil)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	// 25 candles: enough for volatility, volume and candlestick but not
	// for trend (50) or price action (30)
	series := trendingSeries(25, 0.5)
	sig, err := eng.Evaluate(context.Background(), series, nil, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !sig.Degraded {
		t.Fatalf("expected degraded signal")
	}
	if _, ok := sig.Report.Excluded["trend"]; !ok {
		t.Fatalf("expected trend excluded, got %v", sig.Report.Excluded)
	}
	if _, ok := sig.Report.Excluded["price_action"]; !ok {
		t.Fatalf("expected price_action excluded, got %v", sig.Report.Excluded)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng, err := NewEngine(Config{}, nil)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	series := trendingSeries(120, 0.3)
	first, err := eng.Evaluate(context.Background(), series, nil, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	for i := 0; i < 5; i++ {
		next, err := eng.Evaluate(context.Background(), series, nil, nil)
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if next.Type != first.Type || next.Strength != first.Strength {
			t.Fatalf("evaluation not deterministic: %s/%v vs %s/%v",
				next.Type, next.Strength, first.Type, first.Strength)
		}
	}
}
