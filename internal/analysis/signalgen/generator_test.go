package signalgen

import (
	"strings"
	"testing"

	"CoinPulse/internal/domain/models"
)

func report(categories map[models.Category]models.CategoryScore, results []models.ProcessorResult) *models.ConsensusReport {
	contributing := make([]string, 0, len(results))
	for _, r := range results {
		if r.Status == models.StatusOK {
			contributing = append(contributing, r.Processor)
		}
	}
	return &models.ConsensusReport{
		Market:       "KRW-BTC",
		Categories:   categories,
		Results:      results,
		Contributing: contributing,
	}
}

func okTrendResult(signals ...models.IndicatorSignal) models.ProcessorResult {
	return models.ProcessorResult{
		Processor:  "trend",
		Status:     models.StatusOK,
		Signals:    signals,
		Confidence: 1,
	}
}

func TestGenerateBuyRequiresThresholdAndDominance(t *testing.T) {
	g := New(Config{MinConfidence: 0.6, DominanceRatio: 1.2})

	rep := report(map[models.Category]models.CategoryScore{
		models.CategoryCrossover: {BuyRaw: 0.9, SellRaw: 0.1, Active: true},
	}, []models.ProcessorResult{okTrendResult()})

	sig := g.Generate(rep, nil, nil)
	if sig.Type != models.SignalBuy {
		t.Fatalf("expected BUY, got %s", sig.Type)
	}
	if sig.Strength != 0.9 {
		t.Fatalf("expected strength 0.9, got %v", sig.Strength)
	}
}

func TestGenerateThresholdIsStrict(t *testing.T) {
	g := New(Config{MinConfidence: 0.6, DominanceRatio: 1.2})

	// exactly at the threshold must not trigger
	rep := report(map[models.Category]models.CategoryScore{
		models.CategoryCrossover: {BuyRaw: 0.6, Active: true},
	}, []models.ProcessorResult{okTrendResult()})

	sig := g.Generate(rep, nil, nil)
	if sig.Type != models.SignalHold {
		t.Fatalf("expected HOLD at threshold, got %s", sig.Type)
	}
}

func TestGenerateDominanceBlocksContestedBuy(t *testing.T) {
	g := New(Config{MinConfidence: 0.6, DominanceRatio: 1.2})

	rep := report(map[models.Category]models.CategoryScore{
		models.CategoryCrossover: {BuyRaw: 0.7, SellRaw: 0.65, Active: true},
	}, []models.ProcessorResult{okTrendResult()})

	sig := g.Generate(rep, nil, nil)
	if sig.Type != models.SignalHold {
		t.Fatalf("expected HOLD when sides contest, got %s", sig.Type)
	}
	if sig.Strength != 0.7 {
		t.Fatalf("HOLD strength should be the stronger side, got %v", sig.Strength)
	}
}

func TestGenerateSell(t *testing.T) {
	g := New(Config{})

	rep := report(map[models.Category]models.CategoryScore{
		models.CategoryCrossover: {BuyRaw: 0.1, SellRaw: 0.8, Active: true},
	}, []models.ProcessorResult{okTrendResult()})

	sig := g.Generate(rep, nil, nil)
	if sig.Type != models.SignalSell {
		t.Fatalf("expected SELL, got %s", sig.Type)
	}
}

func TestGenerateEmptyReportDegradesToHold(t *testing.T) {
	g := New(Config{})

	sig := g.Generate(&models.ConsensusReport{Market: "KRW-BTC"}, nil, nil)
	if sig.Type != models.SignalHold {
		t.Fatalf("expected HOLD, got %s", sig.Type)
	}
	if sig.Strength != 0 {
		t.Fatalf("expected zero strength, got %v", sig.Strength)
	}
	if !sig.Degraded {
		t.Fatalf("expected degraded flag")
	}
}

func TestGenerateSentimentShiftsScore(t *testing.T) {
	g := New(Config{})

	base := map[models.Category]models.CategoryScore{
		models.CategoryCrossover: {BuyRaw: 0.65, Active: true},
	}

	without := g.Generate(report(base, []models.ProcessorResult{okTrendResult()}), nil, nil)

	s := 1.0
	with := g.Generate(report(base, []models.ProcessorResult{okTrendResult()}), nil, &s)

	// with full bullish sentiment the crossover weight renormalizes from
	// 1.0 down to 0.25/0.40 while sentiment adds 0.15/0.40
	if without.Strength == with.Strength {
		t.Fatalf("sentiment should change the score: %v vs %v", without.Strength, with.Strength)
	}
}

func TestGenerateNegativeSentimentCountsAsSell(t *testing.T) {
	g := New(Config{})

	base := map[models.Category]models.CategoryScore{
		models.CategoryCrossover: {SellRaw: 0.7, Active: true},
	}
	s := -1.0
	sig := g.Generate(report(base, []models.ProcessorResult{okTrendResult()}), nil, &s)
	if sig.Type != models.SignalSell {
		t.Fatalf("expected SELL with bearish sentiment, got %s", sig.Type)
	}
}

func TestGenerateReasoningTopContributions(t *testing.T) {
	g := New(Config{MaxReasons: 2})

	results := []models.ProcessorResult{okTrendResult(
		models.IndicatorSignal{Label: "golden_cross", Direction: models.DirectionBullish,
			Category: models.CategoryCrossover, Weight: 1.0},
		models.IndicatorSignal{Label: "rsi_oversold", Direction: models.DirectionBullish,
			Category: models.CategoryOscillator, Weight: 0.8, Value: 25},
		models.IndicatorSignal{Label: "doji", Direction: models.DirectionNeutral,
			Category: models.CategoryOscillator, Weight: 0.3},
	)}
	rep := report(map[models.Category]models.CategoryScore{
		models.CategoryCrossover:  {BuyRaw: 1, Active: true},
		models.CategoryOscillator: {BuyRaw: 0.8, Active: true},
	}, results)

	sig := g.Generate(rep, nil, nil)
	if len(sig.Reasoning) != 2 {
		t.Fatalf("expected 2 reasons, got %v", sig.Reasoning)
	}
	if !strings.HasPrefix(sig.Reasoning[0], "golden_cross") {
		t.Fatalf("expected golden_cross first, got %v", sig.Reasoning)
	}
	// neutral signals never appear in reasoning
	for _, r := range sig.Reasoning {
		if strings.HasPrefix(r, "doji") {
			t.Fatalf("neutral signal leaked into reasoning: %v", sig.Reasoning)
		}
	}
}

func TestGenerateDegradedNote(t *testing.T) {
	g := New(Config{})

	rep := report(map[models.Category]models.CategoryScore{
		models.CategoryCrossover: {BuyRaw: 0.9, Active: true},
	}, []models.ProcessorResult{okTrendResult()})
	rep.Excluded = map[string]string{"volume": "error: panic"}

	sig := g.Generate(rep, nil, nil)
	if !sig.Degraded {
		t.Fatalf("expected degraded")
	}
	found := false
	for _, r := range sig.Reasoning {
		if strings.Contains(r, "confidence reduced: 1 of 2 processors excluded") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected exclusion note, got %v", sig.Reasoning)
	}
}
