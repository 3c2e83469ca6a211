package consensus

import (
	"math"
	"testing"

	"CoinPulse/internal/domain/models"
)

func TestBaseWeightsSumToOne(t *testing.T) {
	var total float64
	for _, c := range categoryOrder {
		total += BaseWeight(c)
	}
	if math.Abs(total-1.0) > 1e-9 {
		t.Fatalf("base weights sum to %v", total)
	}
}

func TestRenormalizePreservesRatios(t *testing.T) {
	active := map[models.Category]bool{
		models.CategoryOscillator: true, // 0.20
		models.CategoryCrossover:  true, // 0.25
	}
	w := Renormalize(active)

	var total float64
	for _, v := range w {
		total += v
	}
	if math.Abs(total-1.0) > 1e-9 {
		t.Fatalf("renormalized weights sum to %v", total)
	}

	ratio := w[models.CategoryOscillator] / w[models.CategoryCrossover]
	want := BaseWeight(models.CategoryOscillator) / BaseWeight(models.CategoryCrossover)
	if math.Abs(ratio-want) > 1e-9 {
		t.Fatalf("ratio not preserved: got %v want %v", ratio, want)
	}
}

func TestRenormalizeEmptyActiveSet(t *testing.T) {
	w := Renormalize(map[models.Category]bool{})
	if len(w) != 0 {
		t.Fatalf("expected empty map, got %v", w)
	}
}

func TestWeightedScoresSkipInactive(t *testing.T) {
	categories := map[models.Category]models.CategoryScore{
		models.CategoryOscillator: {BuyRaw: 1, Active: true},
		models.CategoryVolume:     {BuyRaw: 1, Active: false},
	}
	buy, sell := WeightedScores(categories)
	if math.Abs(buy-1.0) > 1e-9 {
		t.Fatalf("expected buy 1.0 from sole active category, got %v", buy)
	}
	if sell != 0 {
		t.Fatalf("expected sell 0, got %v", sell)
	}
}

func TestWeightedScoresMixedDirections(t *testing.T) {
	categories := map[models.Category]models.CategoryScore{
		models.CategoryOscillator: {BuyRaw: 0.8, Active: true},  // weight 0.20
		models.CategoryCrossover:  {SellRaw: 0.5, Active: true}, // weight 0.25
	}
	buy, sell := WeightedScores(categories)

	// renormalized: oscillator 0.20/0.45, crossover 0.25/0.45
	wantBuy := 0.20 / 0.45 * 0.8
	wantSell := 0.25 / 0.45 * 0.5
	if math.Abs(buy-wantBuy) > 1e-9 {
		t.Fatalf("buy: got %v want %v", buy, wantBuy)
	}
	if math.Abs(sell-wantSell) > 1e-9 {
		t.Fatalf("sell: got %v want %v", sell, wantSell)
	}
}
