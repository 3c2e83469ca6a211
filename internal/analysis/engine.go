package analysis

import (
	"context"
	"fmt"
	"time"

	"CoinPulse/internal/analysis/consensus"
	"CoinPulse/internal/analysis/processor"
	"CoinPulse/internal/analysis/signalgen"
	"CoinPulse/internal/domain/models"
	applogger "CoinPulse/pkg/logger"
)

// Config assembles the engine. Zero fields fall back to defaults; an
// unknown processor name fails construction.
type Config struct {
	Processors       []string
	ProcessorTimeout time.Duration
	MinConfidence    float64
	DominanceRatio   float64
	MaxReasons       int
	Preprocessor     PreprocessorConfig
}

// Engine is the evaluation facade: enrich candles into a snapshot, fan out
// to the processor set, and generate the final signal.
type Engine struct {
	pre  *Preprocessor
	orch *consensus.Orchestrator
	gen  *signalgen.Generator
	log  *applogger.Logger
}

// NewEngine builds the active processor set from config. Registry misses
// fail fast here so a bad config never reaches an evaluation cycle.
func NewEngine(cfg Config, log *applogger.Logger) (*Engine, error) {
	names := cfg.Processors
	if len(names) == 0 {
		names = processor.DefaultProcessorNames()
	}
	procs, err := processor.DefaultRegistry().Build(names)
	if err != nil {
		return nil, fmt.Errorf("build processors: %w", err)
	}

	return &Engine{
		pre:  NewPreprocessor(cfg.Preprocessor),
		orch: consensus.NewOrchestrator(procs, cfg.ProcessorTimeout, log),
		gen: signalgen.New(signalgen.Config{
			MinConfidence:  cfg.MinConfidence,
			DominanceRatio: cfg.DominanceRatio,
			MaxReasons:     cfg.MaxReasons,
		}),
		log: log,
	}, nil
}

// Enrich derives the market snapshot. Failure here is fatal for the cycle.
func (e *Engine) Enrich(series *models.CandleSeries, ticker *models.Ticker) (*models.MarketSnapshot, error) {
	return e.pre.Enrich(series, ticker)
}

// GenerateSignal runs consensus over an already-enriched snapshot. It
// always returns a signal; total processor failure degrades to HOLD.
func (e *Engine) GenerateSignal(ctx context.Context, series *models.CandleSeries, snap *models.MarketSnapshot, sentiment *float64) *models.Signal {
	report := e.orch.Run(ctx, series.Market, series.Candles, snap)
	return e.gen.Generate(report, snap, sentiment)
}

// Evaluate is the full cycle: enrich then generate. The only error source
// is the preprocessor.
func (e *Engine) Evaluate(ctx context.Context, series *models.CandleSeries, ticker *models.Ticker, sentiment *float64) (*models.Signal, error) {
	snap, err := e.Enrich(series, ticker)
	if err != nil {
		return nil, err
	}
	return e.GenerateSignal(ctx, series, snap, sentiment), nil
}
