package consensus

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"CoinPulse/internal/analysis/processor"
	"CoinPulse/internal/domain/models"
	applogger "CoinPulse/pkg/logger"
)

const defaultProcessorTimeout = 2 * time.Second

// Orchestrator fans immutable market data out to every active processor in
// parallel, bounds each run with a timeout, converts panics into error
// results and merges everything into one deterministic ConsensusReport.
// A failing processor degrades the report, never the cycle.
type Orchestrator struct {
	procs   []processor.Processor
	timeout time.Duration
	log     *applogger.Logger
}

// NewOrchestrator creates an orchestrator over the given processor set.
// A non-positive timeout falls back to the default.
func NewOrchestrator(procs []processor.Processor, timeout time.Duration, log *applogger.Logger) *Orchestrator {
	if timeout <= 0 {
		timeout = defaultProcessorTimeout
	}
	return &Orchestrator{procs: procs, timeout: timeout, log: log}
}

// Run executes all processors against the same inputs and merges their
// results. Result order follows the configured processor order regardless
// of completion order.
func (o *Orchestrator) Run(ctx context.Context, market string, candles []models.Candle, snap *models.MarketSnapshot) *models.ConsensusReport {
	results := make([]models.ProcessorResult, len(o.procs))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range o.procs {
		g.Go(func() error {
			results[i] = o.runOne(gctx, p, candles, snap)
			return nil
		})
	}
	_ = g.Wait()

	report := &models.ConsensusReport{
		Market:      market,
		Results:     results,
		Excluded:    make(map[string]string),
		EvaluatedAt: time.Now().UTC(),
	}
	for _, res := range results {
		if res.Status == models.StatusOK {
			report.Contributing = append(report.Contributing, res.Processor)
		} else {
			report.Excluded[res.Processor] = string(res.Status) + ": " + res.Error
			if o.log != nil {
				o.log.Warn("processor excluded",
					applogger.String("market", market),
					applogger.String("processor", res.Processor),
					applogger.String("reason", res.Error),
				)
			}
		}
	}
	if len(report.Excluded) == 0 {
		report.Excluded = nil
	}

	report.Categories = o.scoreCategories(results)
	report.BuyScore, report.SellScore = WeightedScores(report.Categories)
	return report
}

// runOne executes a single processor with a deadline and panic isolation.
func (o *Orchestrator) runOne(ctx context.Context, p processor.Processor, candles []models.Candle, snap *models.MarketSnapshot) models.ProcessorResult {
	done := make(chan models.ProcessorResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- models.ProcessorResult{
					Processor: p.Name(),
					Status:    models.StatusError,
					Error:     fmt.Sprintf("panic: %v", r),
				}
			}
		}()
		done <- p.Analyze(candles, snap)
	}()

	timer := time.NewTimer(o.timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return res
	case <-timer.C:
		return models.ProcessorResult{
			Processor: p.Name(),
			Status:    models.StatusError,
			Error:     fmt.Sprintf("timed out after %s", o.timeout),
		}
	case <-ctx.Done():
		return models.ProcessorResult{
			Processor: p.Name(),
			Status:    models.StatusError,
			Error:     ctx.Err().Error(),
		}
	}
}

// scoreCategories collects directional evidence per category. The raw
// score of a category accumulates confidence-scaled signal weights from
// included processors and is clamped to [0, 1]. Sentiment is not scored
// here; the signal generator folds it in.
func (o *Orchestrator) scoreCategories(results []models.ProcessorResult) map[models.Category]models.CategoryScore {
	categories := make(map[models.Category]models.CategoryScore)

	for i, p := range o.procs {
		if results[i].Status != models.StatusOK {
			continue
		}
		for _, c := range p.Categories() {
			cs := categories[c]
			cs.Active = true
			categories[c] = cs
		}
	}

	for _, res := range results {
		if res.Status != models.StatusOK {
			continue
		}
		for _, sig := range res.Signals {
			cs, ok := categories[sig.Category]
			if !ok || !cs.Active {
				continue
			}
			switch sig.Direction {
			case models.DirectionBullish:
				cs.BuyRaw += res.Confidence * sig.Weight
			case models.DirectionBearish:
				cs.SellRaw += res.Confidence * sig.Weight
			}
			categories[sig.Category] = cs
		}
	}

	for c, cs := range categories {
		cs.BuyRaw = clamp01(cs.BuyRaw)
		cs.SellRaw = clamp01(cs.SellRaw)
		categories[c] = cs
	}
	return categories
}
