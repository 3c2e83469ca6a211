package usecase

import (
	"context"
	"fmt"
	"time"

	"CoinPulse/internal/analysis"
	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
	dservice "CoinPulse/internal/domain/service"
	applogger "CoinPulse/pkg/logger"
)

// SignalEvaluator runs the full evaluation pipeline for one market: fetch,
// persist, enrich, analyze and publish. Store, sentiment and publisher are
// optional; failures there degrade the run instead of aborting it.
type SignalEvaluator struct {
	source    drepo.MarketSource
	store     drepo.CandleStore
	sentiment dservice.SentimentProvider
	publisher drepo.SignalPublisher
	engine    *analysis.Engine
	metrics   drepo.Metrics
	log       *applogger.Logger

	timeframe   drepo.Timeframe
	candleCount int
}

// NewSignalEvaluator creates a SignalEvaluator. store, sentiment and
// publisher may be nil.
func NewSignalEvaluator(
	source drepo.MarketSource,
	store drepo.CandleStore,
	sentiment dservice.SentimentProvider,
	publisher drepo.SignalPublisher,
	engine *analysis.Engine,
	metrics drepo.Metrics,
	log *applogger.Logger,
	timeframe drepo.Timeframe,
	candleCount int,
) *SignalEvaluator {
	return &SignalEvaluator{
		source:      source,
		store:       store,
		sentiment:   sentiment,
		publisher:   publisher,
		engine:      engine,
		metrics:     metrics,
		log:         log,
		timeframe:   timeframe,
		candleCount: candleCount,
	}
}

// Evaluate produces a trading signal for market using count candles.
// count <= 0 falls back to the configured default.
func (e *SignalEvaluator) Evaluate(ctx context.Context, market string, count int) (*models.Signal, error) {
	start := time.Now()
	if count <= 0 {
		count = e.candleCount
	}

	series, ticker, err := e.fetch(ctx, market, count)
	if err != nil {
		return nil, err
	}

	snap, err := e.engine.Enrich(series, ticker)
	if err != nil {
		e.metrics.RecordError("enrich")
		return nil, err
	}

	signal := e.engine.GenerateSignal(ctx, series, snap, e.sentimentScore(ctx, market))

	if signal.Report != nil {
		for name := range signal.Report.Excluded {
			e.metrics.RecordProcessorFailure(market, name)
		}
	}

	if e.publisher != nil {
		if err := e.publisher.Publish(ctx, signal); err != nil {
			e.metrics.RecordError("publish")
			e.log.Warn("signal publish failed",
				applogger.String("market", market), applogger.Error(err))
		}
	}

	e.metrics.RecordEvaluation(market, signal.Type)
	e.metrics.RecordSignalStrength(market, signal.Strength)
	e.metrics.RecordLastPrice(market, snap.CurrentPrice)
	e.metrics.RecordLatency("evaluate", time.Since(start).Seconds())

	e.log.Info("market evaluated",
		applogger.String("market", market),
		applogger.String("signal", string(signal.Type)),
		applogger.Float64("strength", signal.Strength),
		applogger.Duration("took", time.Since(start)),
	)
	return signal, nil
}

// Snapshot enriches current market state without running the processors.
func (e *SignalEvaluator) Snapshot(ctx context.Context, market string, count int) (*models.MarketSnapshot, error) {
	if count <= 0 {
		count = e.candleCount
	}
	series, ticker, err := e.fetch(ctx, market, count)
	if err != nil {
		return nil, err
	}
	snap, err := e.engine.Enrich(series, ticker)
	if err != nil {
		e.metrics.RecordError("enrich")
		return nil, err
	}
	return snap, nil
}

func (e *SignalEvaluator) fetch(ctx context.Context, market string, count int) (*models.CandleSeries, *models.Ticker, error) {
	candles, err := e.source.FetchCandles(ctx, market, e.timeframe, count)
	if err != nil {
		e.metrics.RecordError("source")
		return nil, nil, fmt.Errorf("fetch candles %s: %w", market, err)
	}
	series := &models.CandleSeries{Market: market, Timeframe: string(e.timeframe), Candles: candles}

	if e.store != nil {
		if err := e.store.StoreCandles(ctx, e.timeframe, candles); err != nil {
			e.metrics.RecordError("store")
			e.log.Warn("candle persist failed",
				applogger.String("market", market), applogger.Error(err))
		}
	}

	// a missing ticker is tolerable, the last close stands in for it
	ticker, err := e.source.FetchTicker(ctx, market)
	if err != nil {
		e.metrics.RecordError("ticker")
		e.log.Warn("ticker fetch failed",
			applogger.String("market", market), applogger.Error(err))
		ticker = nil
	}

	return series, ticker, nil
}

func (e *SignalEvaluator) sentimentScore(ctx context.Context, market string) *float64 {
	if e.sentiment == nil {
		return nil
	}
	score, err := e.sentiment.Score(ctx, market)
	if err != nil {
		e.metrics.RecordError("sentiment")
		e.log.Warn("sentiment fetch failed",
			applogger.String("market", market), applogger.Error(err))
		return nil
	}
	return &score
}
