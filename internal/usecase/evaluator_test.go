package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"CoinPulse/internal/analysis"
	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
	applogger "CoinPulse/pkg/logger"
)

type fakeSource struct {
	candles    []models.Candle
	candlesErr error
	ticker     *models.Ticker
	tickerErr  error
}

func (f *fakeSource) FetchCandles(_ context.Context, _ string, _ drepo.Timeframe, _ int) ([]models.Candle, error) {
	return f.candles, f.candlesErr
}

func (f *fakeSource) FetchTicker(_ context.Context, _ string) (*models.Ticker, error) {
	return f.ticker, f.tickerErr
}

type fakeStore struct {
	stored  int
	failing bool
}

func (f *fakeStore) StoreCandles(_ context.Context, _ drepo.Timeframe, candles []models.Candle) error {
	if f.failing {
		return errors.New("insert refused")
	}
	f.stored += len(candles)
	return nil
}

func (f *fakeStore) GetCandles(_ context.Context, _ string, _, _ time.Time, _ drepo.Timeframe) ([]models.Candle, error) {
	return nil, nil
}

func (f *fakeStore) GetLatestNCandles(_ context.Context, _ string, _ int, _ drepo.Timeframe) ([]models.Candle, error) {
	return nil, nil
}

func (f *fakeStore) Health(_ context.Context) error { return nil }
func (f *fakeStore) Close() error                   { return nil }

type fakePublisher struct {
	published []*models.Signal
	failing   bool
}

func (f *fakePublisher) Publish(_ context.Context, s *models.Signal) error {
	if f.failing {
		return errors.New("broker down")
	}
	f.published = append(f.published, s)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeMetrics struct {
	evaluations int
	errs        map[string]int
	failures    map[string]int
}

func (f *fakeMetrics) RecordEvaluation(string, models.SignalType) { f.evaluations++ }
func (f *fakeMetrics) RecordProcessorFailure(_, processor string) {
	if f.failures == nil {
		f.failures = make(map[string]int)
	}
	f.failures[processor]++
}
func (f *fakeMetrics) RecordError(kind string) {
	if f.errs == nil {
		f.errs = make(map[string]int)
	}
	f.errs[kind]++
}
func (f *fakeMetrics) RecordLastPrice(string, float64)      {}
func (f *fakeMetrics) RecordSignalStrength(string, float64) {}
func (f *fakeMetrics) RecordLatency(string, float64)        {}

func testCandles(n int) []models.Candle {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, n)
	price := 100.0
	for i := range out {
		open := price
		price += 0.4
		out[i] = models.Candle{
			Market:    "KRW-BTC",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      open,
			High:      price * 1.004,
			Low:       open * 0.996,
			Close:     price,
			Volume:    100,
		}
	}
	return out
}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func testEngine(t *testing.T) *analysis.Engine {
	t.Helper()
	eng, err := analysis.NewEngine(analysis.Config{}, nil)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return eng
}

func TestEvaluateHappyPath(t *testing.T) {
	source := &fakeSource{
		candles: testCandles(100),
		ticker:  &models.Ticker{Market: "KRW-BTC", TradePrice: 140},
	}
	store := &fakeStore{}
	publisher := &fakePublisher{}
	m := &fakeMetrics{}

	ev := NewSignalEvaluator(source, store, nil, publisher, testEngine(t), m, testLogger(t), drepo.TF1h, 100)

	sig, err := ev.Evaluate(context.Background(), "KRW-BTC", 0)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if sig.Market != "KRW-BTC" {
		t.Fatalf("unexpected market %q", sig.Market)
	}
	if store.stored != 100 {
		t.Fatalf("expected 100 candles persisted, got %d", store.stored)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 published signal, got %d", len(publisher.published))
	}
	if m.evaluations != 1 {
		t.Fatalf("expected 1 recorded evaluation, got %d", m.evaluations)
	}
	if sig.Snapshot.CurrentPrice != 140 {
		t.Fatalf("expected ticker price used, got %v", sig.Snapshot.CurrentPrice)
	}
}

func TestEvaluateSourceFailureIsFatal(t *testing.T) {
	source := &fakeSource{candlesErr: errors.New("rate limited")}
	m := &fakeMetrics{}

	ev := NewSignalEvaluator(source, nil, nil, nil, testEngine(t), m, testLogger(t), drepo.TF1h, 100)

	_, err := ev.Evaluate(context.Background(), "KRW-BTC", 0)
	if err == nil {
		t.Fatalf("expected error")
	}
	if m.errs["source"] != 1 {
		t.Fatalf("expected source error recorded, got %v", m.errs)
	}
}

func TestEvaluateStoreFailureTolerated(t *testing.T) {
	source := &fakeSource{candles: testCandles(100)}
	store := &fakeStore{failing: true}
	m := &fakeMetrics{}

	ev := NewSignalEvaluator(source, store, nil, nil, testEngine(t), m, testLogger(t), drepo.TF1h, 100)

	sig, err := ev.Evaluate(context.Background(), "KRW-BTC", 0)
	if err != nil {
		t.Fatalf("store failure must not abort: %v", err)
	}
	if sig == nil {
		t.Fatalf("expected signal")
	}
	if m.errs["store"] != 1 {
		t.Fatalf("expected store error recorded, got %v", m.errs)
	}
}

func TestEvaluateTickerFailureTolerated(t *testing.T) {
	source := &fakeSource{candles: testCandles(100), tickerErr: errors.New("timeout")}
	m := &fakeMetrics{}

	ev := NewSignalEvaluator(source, nil, nil, nil, testEngine(t), m, testLogger(t), drepo.TF1h, 100)

	sig, err := ev.Evaluate(context.Background(), "KRW-BTC", 0)
	if err != nil {
		t.Fatalf("ticker failure must not abort: %v", err)
	}
	// last close stands in for the missing ticker
	want := source.candles[len(source.candles)-1].Close
	if sig.Snapshot.CurrentPrice != want {
		t.Fatalf("expected last close %v, got %v", want, sig.Snapshot.CurrentPrice)
	}
}

func TestEvaluateInsufficientHistory(t *testing.T) {
	source := &fakeSource{candles: testCandles(1)}
	m := &fakeMetrics{}

	ev := NewSignalEvaluator(source, nil, nil, nil, testEngine(t), m, testLogger(t), drepo.TF1h, 100)

	_, err := ev.Evaluate(context.Background(), "KRW-BTC", 0)
	var insufficient *analysis.InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
}

func TestEvaluateCountsExcludedProcessors(t *testing.T) {
	// 25 candles: enough to evaluate, too short for trend and price_action
	source := &fakeSource{candles: testCandles(25)}
	m := &fakeMetrics{}

	ev := NewSignalEvaluator(source, nil, nil, nil, testEngine(t), m, testLogger(t), drepo.TF1h, 25)

	sig, err := ev.Evaluate(context.Background(), "KRW-BTC", 0)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !sig.Degraded {
		t.Fatalf("expected degraded signal")
	}
	if m.failures["trend"] != 1 {
		t.Fatalf("expected trend failure recorded, got %v", m.failures)
	}
	if m.failures["price_action"] != 1 {
		t.Fatalf("expected price_action failure recorded, got %v", m.failures)
	}
	if len(m.failures) != 2 {
		t.Fatalf("expected exactly 2 failing processors, got %v", m.failures)
	}
}

type fakeSentiment struct {
	score float64
	err   error
}

func (f *fakeSentiment) Score(_ context.Context, _ string) (float64, error) {
	return f.score, f.err
}

func TestEvaluateSentimentFailureTolerated(t *testing.T) {
	source := &fakeSource{candles: testCandles(100)}
	m := &fakeMetrics{}

	ev := NewSignalEvaluator(source, nil, &fakeSentiment{err: errors.New("offline")}, nil,
		testEngine(t), m, testLogger(t), drepo.TF1h, 100)

	if _, err := ev.Evaluate(context.Background(), "KRW-BTC", 0); err != nil {
		t.Fatalf("sentiment failure must not abort: %v", err)
	}
	if m.errs["sentiment"] != 1 {
		t.Fatalf("expected sentiment error recorded, got %v", m.errs)
	}
}
