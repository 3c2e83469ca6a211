package usecase

import (
	"context"
	"sync"
	"time"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
	applogger "CoinPulse/pkg/logger"
)

// SignalCollector drives the periodic evaluation loop for all configured
// markets and keeps last-seen tickers fresh from the live stream.
type SignalCollector struct {
	stream    drepo.TickerStream
	evaluator *SignalEvaluator
	metrics   drepo.Metrics
	log       *applogger.Logger

	markets  []string
	interval time.Duration

	mu      sync.RWMutex
	tickers map[string]*models.Ticker
}

// NewSignalCollector creates a SignalCollector. stream may be nil, in which
// case only the periodic loop runs.
func NewSignalCollector(
	stream drepo.TickerStream,
	evaluator *SignalEvaluator,
	metrics drepo.Metrics,
	log *applogger.Logger,
	markets []string,
	interval time.Duration,
) *SignalCollector {
	return &SignalCollector{
		stream:    stream,
		evaluator: evaluator,
		metrics:   metrics,
		log:       log,
		markets:   markets,
		interval:  interval,
		tickers:   make(map[string]*models.Ticker),
	}
}

// IsConnected reports the live stream state. True when no stream is wired.
func (c *SignalCollector) IsConnected() bool {
	if c.stream == nil {
		return true
	}
	return c.stream.IsConnected()
}

// LastTicker returns the most recent streamed ticker for market, if any.
func (c *SignalCollector) LastTicker(market string) *models.Ticker {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tickers[market]
}

// Start connects the stream and launches the consume and evaluation loops.
func (c *SignalCollector) Start(ctx context.Context) error {
	if c.stream != nil {
		if err := c.stream.Connect(ctx); err != nil {
			return err
		}
		if err := c.stream.Subscribe(ctx); err != nil {
			return err
		}
		tkCh, errCh := c.stream.Read(ctx)
		go c.consume(ctx, tkCh, errCh)
	}
	go c.evaluateLoop(ctx)
	return nil
}

func (c *SignalCollector) consume(ctx context.Context, tkCh <-chan *models.Ticker, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				c.log.Warn("ticker stream error, reconnecting", applogger.Error(err))
				if rerr := c.stream.Reconnect(ctx); rerr == nil {
					tkCh, errCh = c.stream.Read(ctx)
				}
			}
		case t := <-tkCh:
			if t == nil {
				continue
			}
			c.mu.Lock()
			c.tickers[t.Market] = t
			c.mu.Unlock()
			c.metrics.RecordLastPrice(t.Market, t.TradePrice)
		}
	}
}

func (c *SignalCollector) evaluateLoop(ctx context.Context) {
	// evaluate once at startup, then on the interval
	c.evaluateAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.evaluateAll(ctx)
		}
	}
}

func (c *SignalCollector) evaluateAll(ctx context.Context) {
	for _, market := range c.markets {
		if ctx.Err() != nil {
			return
		}
		if _, err := c.evaluator.Evaluate(ctx, market, 0); err != nil {
			c.log.Error("evaluation failed",
				applogger.String("market", market), applogger.Error(err))
		}
	}
}

// Shutdown closes the live stream.
func (c *SignalCollector) Shutdown(ctx context.Context) error {
	if c.stream == nil {
		return nil
	}
	return c.stream.Close()
}
