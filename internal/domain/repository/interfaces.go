package repository

import (
	"context"
	"time"

	"CoinPulse/internal/domain/models"
)

// MarketSource fetches candle history and tickers from an exchange.
type MarketSource interface {
	FetchCandles(ctx context.Context, market string, tf Timeframe, count int) ([]models.Candle, error)
	FetchTicker(ctx context.Context, market string) (*models.Ticker, error)
}

// TickerStream delivers live tickers over a persistent connection.
type TickerStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Ticker, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// SignalPublisher pushes generated signals to downstream consumers.
type SignalPublisher interface {
	Publish(ctx context.Context, s *models.Signal) error
	Close() error
}

// CandleStore persists and reads back candle history.
type CandleStore interface {
	StoreCandles(ctx context.Context, tf Timeframe, candles []models.Candle) error
	GetCandles(ctx context.Context, market string, from, to time.Time, tf Timeframe) ([]models.Candle, error)
	GetLatestNCandles(ctx context.Context, market string, n int, tf Timeframe) ([]models.Candle, error)
	Health(ctx context.Context) error
	Close() error
}

// Metrics records evaluation telemetry.
type Metrics interface {
	RecordEvaluation(market string, signal models.SignalType)
	RecordProcessorFailure(market, processor string)
	RecordError(kind string)
	RecordLastPrice(market string, price float64)
	RecordSignalStrength(market string, strength float64)
	RecordLatency(op string, seconds float64)
}
