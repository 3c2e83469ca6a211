package signalgen

import (
	"fmt"
	"sort"
	"time"

	"CoinPulse/internal/analysis/consensus"
	"CoinPulse/internal/domain/models"
)

// Config tunes the decision rule.
type Config struct {
	// MinConfidence is the score a side must clear to act at all.
	MinConfidence float64
	// DominanceRatio is how much stronger the winning side must be than
	// the opposite side.
	DominanceRatio float64
	// MaxReasons caps the reasoning list.
	MaxReasons int
}

// Generator turns a consensus report plus optional sentiment into a final
// BUY / SELL / HOLD signal. It never returns nothing: with no usable
// evidence it degrades to a low-strength HOLD.
type Generator struct {
	cfg Config
}

// New creates a generator, applying defaults for zero fields.
func New(cfg Config) *Generator {
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = 0.6
	}
	if cfg.DominanceRatio <= 0 {
		cfg.DominanceRatio = 1.2
	}
	if cfg.MaxReasons <= 0 {
		cfg.MaxReasons = 3
	}
	return &Generator{cfg: cfg}
}

// Generate decides the signal. sentiment, when non-nil, is clamped to
// [-1, 1] and activates the sentiment weight category; all other category
// weights renormalize around it.
func (g *Generator) Generate(report *models.ConsensusReport, snap *models.MarketSnapshot, sentiment *float64) *models.Signal {
	now := time.Now().UTC()
	market := ""
	if snap != nil {
		market = snap.Market
	}
	if report != nil && report.Market != "" {
		market = report.Market
	}

	if report == nil || len(report.Contributing) == 0 {
		return &models.Signal{
			Market:      market,
			Type:        models.SignalHold,
			Strength:    0,
			Reasoning:   []string{"no processors produced usable results; confidence reduced"},
			Degraded:    true,
			Snapshot:    snap,
			Report:      report,
			GeneratedAt: now,
		}
	}

	categories := make(map[models.Category]models.CategoryScore, len(report.Categories)+1)
	for c, cs := range report.Categories {
		categories[c] = cs
	}
	if sentiment != nil {
		s := clamp(*sentiment, -1, 1)
		cs := models.CategoryScore{Active: true}
		if s > 0 {
			cs.BuyRaw = s
		} else {
			cs.SellRaw = -s
		}
		categories[models.CategorySentiment] = cs
	}

	buy, sell := consensus.WeightedScores(categories)

	sigType := models.SignalHold
	strength := buy
	if sell > buy {
		strength = sell
	}
	switch {
	case buy > g.cfg.MinConfidence && buy > sell*g.cfg.DominanceRatio:
		sigType = models.SignalBuy
		strength = buy
	case sell > g.cfg.MinConfidence && sell > buy*g.cfg.DominanceRatio:
		sigType = models.SignalSell
		strength = sell
	}

	reasoning := g.reasoning(report, categories, sentiment)
	degraded := len(report.Excluded) > 0
	if degraded {
		reasoning = append(reasoning, fmt.Sprintf("confidence reduced: %d of %d processors excluded",
			len(report.Excluded), len(report.Excluded)+len(report.Contributing)))
	}

	return &models.Signal{
		Market:      market,
		Type:        sigType,
		Strength:    strength,
		Reasoning:   reasoning,
		Degraded:    degraded,
		Snapshot:    snap,
		Report:      report,
		GeneratedAt: now,
	}
}

type contribution struct {
	label string
	value float64
	score float64
}

// reasoning lists the top contributing signal labels by contribution
// magnitude (renormalized category weight x processor confidence x signal
// weight). Ties break on label for reproducibility.
func (g *Generator) reasoning(report *models.ConsensusReport, categories map[models.Category]models.CategoryScore, sentiment *float64) []string {
	weights := consensus.ActiveWeights(categories)

	var contribs []contribution
	for _, res := range report.Results {
		if res.Status != models.StatusOK {
			continue
		}
		for _, sig := range res.Signals {
			w, ok := weights[sig.Category]
			if !ok || sig.Direction == models.DirectionNeutral {
				continue
			}
			contribs = append(contribs, contribution{
				label: sig.Label,
				value: sig.Value,
				score: w * res.Confidence * sig.Weight,
			})
		}
	}
	if sentiment != nil {
		if w, ok := weights[models.CategorySentiment]; ok {
			s := clamp(*sentiment, -1, 1)
			contribs = append(contribs, contribution{
				label: "sentiment_score",
				value: s,
				score: w * abs(s),
			})
		}
	}

	sort.Slice(contribs, func(i, j int) bool {
		if contribs[i].score != contribs[j].score {
			return contribs[i].score > contribs[j].score
		}
		return contribs[i].label < contribs[j].label
	})
	if len(contribs) > g.cfg.MaxReasons {
		contribs = contribs[:g.cfg.MaxReasons]
	}

	out := make([]string, 0, len(contribs))
	for _, c := range contribs {
		if c.value != 0 {
			out = append(out, fmt.Sprintf("%s (%.2f)", c.label, c.value))
		} else {
			out = append(out, c.label)
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
