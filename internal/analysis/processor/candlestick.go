package processor

import (
	"CoinPulse/internal/domain/models"
)

// CandlestickName identifies the candlestick processor.
const CandlestickName = "candlestick"

const (
	candlestickMinCandles = 5
	candlestickPreferred  = 10
	dojiBodyMaxPct        = 0.10
)

// Candlestick inspects the trailing candles for classic reversal patterns:
// doji, hammer / hanging man, engulfing, three white soldiers and three
// black crows. Pattern votes land in the oscillator (reversal) category.
type Candlestick struct{}

// NewCandlestick creates the candlestick processor.
func NewCandlestick() *Candlestick { return &Candlestick{} }

func (c *Candlestick) Name() string    { return CandlestickName }
func (c *Candlestick) MinCandles() int { return candlestickMinCandles }

func (c *Candlestick) Categories() []models.Category {
	return []models.Category{models.CategoryOscillator}
}

func (c *Candlestick) Analyze(candles []models.Candle, _ *models.MarketSnapshot) models.ProcessorResult {
	if len(candles) < candlestickMinCandles {
		return insufficientResult(CandlestickName, len(candles), candlestickMinCandles)
	}

	window := candles[len(candles)-candlestickMinCandles:]
	curr := window[len(window)-1]
	prev := window[len(window)-2]

	var bullishCount, bearishCount float64
	for _, w := range window {
		switch {
		case w.Close > w.Open:
			bullishCount++
		case w.Close < w.Open:
			bearishCount++
		}
	}

	indicators := map[string]float64{
		"last_body":         curr.Body(),
		"last_range":        curr.Range(),
		"last_upper_shadow": curr.UpperShadow(),
		"last_lower_shadow": curr.LowerShadow(),
		"bullish_ratio":     bullishCount / float64(len(window)),
		"bearish_ratio":     bearishCount / float64(len(window)),
	}

	var signals []models.IndicatorSignal
	add := func(label string, dir models.Direction, weight float64) {
		signals = append(signals, models.IndicatorSignal{
			Label: label, Direction: dir,
			Category: models.CategoryOscillator, Weight: weight,
		})
	}

	if r := curr.Range(); r > 0 && curr.Body() < dojiBodyMaxPct*r {
		add("doji", models.DirectionNeutral, 0.3)
	}

	// Hammer shape: long lower wick, small upper wick. Context decides
	// whether it reads as a hammer (after decline) or a hanging man
	// (after advance).
	if curr.Body() > 0 && curr.LowerShadow() > 2*curr.Body() && curr.UpperShadow() < curr.Body() {
		if window[len(window)-2].Close < window[0].Close {
			add("hammer", models.DirectionBullish, 0.7)
		} else {
			add("hanging_man", models.DirectionBearish, 0.6)
		}
	}

	if !prev.Bullish() && curr.Bullish() && curr.Open <= prev.Close && curr.Close >= prev.Open && curr.Body() > prev.Body() {
		add("bullish_engulfing", models.DirectionBullish, 0.8)
	} else if prev.Bullish() && !curr.Bullish() && curr.Open >= prev.Close && curr.Close <= prev.Open && curr.Body() > prev.Body() {
		add("bearish_engulfing", models.DirectionBearish, 0.8)
	}

	if soldiers(window) {
		add("three_white_soldiers", models.DirectionBullish, 0.9)
	} else if crows(window) {
		add("three_black_crows", models.DirectionBearish, 0.9)
	}

	return models.ProcessorResult{
		Processor:  CandlestickName,
		Status:     models.StatusOK,
		Indicators: indicators,
		Signals:    signals,
		Confidence: confidence(len(candles), candlestickPreferred),
	}
}

// soldiers reports three consecutive bullish candles with rising closes,
// each opening within the previous body.
func soldiers(window []models.Candle) bool {
	n := len(window)
	for i := n - 3; i < n; i++ {
		c := window[i]
		if !c.Bullish() {
			return false
		}
		if i > n-3 {
			p := window[i-1]
			if c.Close <= p.Close || c.Open < p.Open || c.Open > p.Close {
				return false
			}
		}
	}
	return true
}

// crows is the bearish mirror of soldiers.
func crows(window []models.Candle) bool {
	n := len(window)
	for i := n - 3; i < n; i++ {
		c := window[i]
		if c.Bullish() {
			return false
		}
		if i > n-3 {
			p := window[i-1]
			if c.Close >= p.Close || c.Open > p.Open || c.Open < p.Close {
				return false
			}
		}
	}
	return true
}
