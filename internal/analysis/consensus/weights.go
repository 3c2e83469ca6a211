package consensus

import "CoinPulse/internal/domain/models"

// Fixed category weights. They sum to 1.0 when every category is active;
// inactive categories are zeroed and the rest renormalized so the ratios
// between remaining categories are preserved.
var categoryWeights = map[models.Category]float64{
	models.CategoryOscillator: 0.20,
	models.CategoryCrossover:  0.25,
	models.CategoryAlignment:  0.15,
	models.CategoryVolatility: 0.15,
	models.CategoryVolume:     0.10,
	models.CategorySentiment:  0.15,
}

// categoryOrder fixes the iteration order so score summation is
// reproducible bit for bit.
var categoryOrder = []models.Category{
	models.CategoryOscillator,
	models.CategoryCrossover,
	models.CategoryAlignment,
	models.CategoryVolatility,
	models.CategoryVolume,
	models.CategorySentiment,
}

// BaseWeight returns the configured weight of a category before
// renormalization.
func BaseWeight(c models.Category) float64 { return categoryWeights[c] }

// Renormalize scales the weights of active categories to sum 1.0.
// Inactive categories get weight zero. An empty active set returns an
// empty map.
func Renormalize(active map[models.Category]bool) map[models.Category]float64 {
	var total float64
	for _, c := range categoryOrder {
		if active[c] {
			total += categoryWeights[c]
		}
	}
	out := make(map[models.Category]float64, len(active))
	if total == 0 {
		return out
	}
	for _, c := range categoryOrder {
		if active[c] {
			out[c] = categoryWeights[c] / total
		}
	}
	return out
}

// ActiveWeights returns the renormalized weights for the categories marked
// active in the given score set.
func ActiveWeights(categories map[models.Category]models.CategoryScore) map[models.Category]float64 {
	active := make(map[models.Category]bool, len(categories))
	for c, cs := range categories {
		if cs.Active {
			active[c] = true
		}
	}
	return Renormalize(active)
}

// WeightedScores combines per-category raw evidence under renormalized
// weights. Only active categories participate.
func WeightedScores(categories map[models.Category]models.CategoryScore) (buy, sell float64) {
	active := make(map[models.Category]bool, len(categories))
	for c, cs := range categories {
		if cs.Active {
			active[c] = true
		}
	}
	weights := Renormalize(active)
	for _, c := range categoryOrder {
		w, ok := weights[c]
		if !ok {
			continue
		}
		cs := categories[c]
		buy += w * cs.BuyRaw
		sell += w * cs.SellRaw
	}
	return buy, sell
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
