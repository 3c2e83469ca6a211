package processor

import (
	"math"

	"CoinPulse/internal/domain/models"
)

// PriceActionName identifies the price action processor.
const PriceActionName = "price_action"

const (
	priceActionMinCandles = 30
	priceActionPreferred  = 60
	swingRadius           = 2
	breakoutWindow        = 20
	breakoutMarginPct     = 0.001
	pullbackPct           = 0.02
	fibProximityPct       = 0.005
)

// PriceAction analyzes swing structure, breakouts and Fibonacci
// retracements. Breakouts feed the crossover category, structure feeds
// alignment.
type PriceAction struct{}

// NewPriceAction creates the price action processor.
func NewPriceAction() *PriceAction { return &PriceAction{} }

func (p *PriceAction) Name() string    { return PriceActionName }
func (p *PriceAction) MinCandles() int { return priceActionMinCandles }

func (p *PriceAction) Categories() []models.Category {
	return []models.Category{models.CategoryCrossover, models.CategoryAlignment}
}

func (p *PriceAction) Analyze(candles []models.Candle, snap *models.MarketSnapshot) models.ProcessorResult {
	if len(candles) < priceActionMinCandles {
		return insufficientResult(PriceActionName, len(candles), priceActionMinCandles)
	}

	price := candles[len(candles)-1].Close
	if snap != nil && snap.CurrentPrice > 0 {
		price = snap.CurrentPrice
	}

	swingHighs, swingLows := swingPoints(candles, swingRadius)

	indicators := map[string]float64{}
	var signals []models.IndicatorSignal

	structure := marketStructure(swingHighs, swingLows)
	switch structure {
	case 1:
		signals = append(signals, models.IndicatorSignal{
			Label: "structure_uptrend", Direction: models.DirectionBullish,
			Category: models.CategoryAlignment, Weight: 0.6,
		})
	case -1:
		signals = append(signals, models.IndicatorSignal{
			Label: "structure_downtrend", Direction: models.DirectionBearish,
			Category: models.CategoryAlignment, Weight: 0.6,
		})
	}
	if len(swingHighs) > 0 {
		indicators["last_swing_high"] = swingHighs[len(swingHighs)-1]
	}
	if len(swingLows) > 0 {
		indicators["last_swing_low"] = swingLows[len(swingLows)-1]
	}

	// Breakout against the prior window, latest candle excluded.
	prior := candles[len(candles)-1-breakoutWindow : len(candles)-1]
	rangeHigh, rangeLow := prior[0].High, prior[0].Low
	for _, c := range prior {
		if c.High > rangeHigh {
			rangeHigh = c.High
		}
		if c.Low < rangeLow {
			rangeLow = c.Low
		}
	}
	indicators["range_high_20"] = rangeHigh
	indicators["range_low_20"] = rangeLow

	switch {
	case price > rangeHigh*(1+breakoutMarginPct):
		signals = append(signals, models.IndicatorSignal{
			Label: "breakout_above_resistance", Direction: models.DirectionBullish,
			Category: models.CategoryCrossover, Weight: 0.8, Value: rangeHigh,
		})
	case price < rangeLow*(1-breakoutMarginPct):
		signals = append(signals, models.IndicatorSignal{
			Label: "breakdown_below_support", Direction: models.DirectionBearish,
			Category: models.CategoryCrossover, Weight: 0.8, Value: rangeLow,
		})
	case structure == 1 && rangeHigh > 0 && price < rangeHigh*(1-pullbackPct):
		signals = append(signals, models.IndicatorSignal{
			Label: "pullback_in_uptrend", Direction: models.DirectionNeutral,
			Category: models.CategoryAlignment, Weight: 0.3, Value: rangeHigh,
		})
	}

	if level, ok := nearFibSupport(candles, price); ok && structure >= 0 {
		indicators["fib_level"] = level
		signals = append(signals, models.IndicatorSignal{
			Label: "fibonacci_support", Direction: models.DirectionBullish,
			Category: models.CategoryAlignment, Weight: 0.4, Value: level,
		})
	}

	return models.ProcessorResult{
		Processor:  PriceActionName,
		Status:     models.StatusOK,
		Indicators: indicators,
		Signals:    signals,
		Confidence: confidence(len(candles), priceActionPreferred),
	}
}

// swingPoints collects local extremes that dominate radius candles on each
// side, in chronological order.
func swingPoints(candles []models.Candle, radius int) (highs, lows []float64) {
	for i := radius; i < len(candles)-radius; i++ {
		isHigh, isLow := true, true
		for j := i - radius; j <= i+radius; j++ {
			if j == i {
				continue
			}
			if candles[j].High > candles[i].High {
				isHigh = false
			}
			if candles[j].Low < candles[i].Low {
				isLow = false
			}
		}
		if isHigh {
			highs = append(highs, candles[i].High)
		}
		if isLow {
			lows = append(lows, candles[i].Low)
		}
	}
	return highs, lows
}

// marketStructure compares the last two swing highs and lows: +1 for
// higher highs with higher lows, -1 for lower highs with lower lows,
// 0 when mixed or underdetermined.
func marketStructure(highs, lows []float64) int {
	if len(highs) < 2 || len(lows) < 2 {
		return 0
	}
	hh := highs[len(highs)-1] > highs[len(highs)-2]
	hl := lows[len(lows)-1] > lows[len(lows)-2]
	if hh && hl {
		return 1
	}
	if !hh && !hl {
		return -1
	}
	return 0
}

// nearFibSupport reports whether price sits within proximity of a standard
// retracement level of the window's high-low range.
func nearFibSupport(candles []models.Candle, price float64) (float64, bool) {
	hi, lo := candles[0].High, candles[0].Low
	for _, c := range candles {
		if c.High > hi {
			hi = c.High
		}
		if c.Low < lo {
			lo = c.Low
		}
	}
	span := hi - lo
	if span <= 0 || price <= 0 {
		return 0, false
	}
	for _, ratio := range []float64{0.382, 0.5, 0.618} {
		level := hi - span*ratio
		if math.Abs(price-level)/price <= fibProximityPct {
			return level, true
		}
	}
	return 0, false
}
