package processor

import (
	talib "github.com/markcheno/go-talib"

	"CoinPulse/internal/domain/models"
)

// TrendName identifies the trend processor.
const TrendName = "trend"

const (
	trendMinCandles  = 50
	trendPreferred   = 200
	regressionWindow = 20
	crossLookback    = 10
)

// Trend analyzes moving averages, RSI, MACD and a least-squares fit of the
// recent closes. It feeds the oscillator, crossover and alignment weight
// categories.
type Trend struct{}

// NewTrend creates the trend processor.
func NewTrend() *Trend { return &Trend{} }

func (t *Trend) Name() string    { return TrendName }
func (t *Trend) MinCandles() int { return trendMinCandles }

func (t *Trend) Categories() []models.Category {
	return []models.Category{models.CategoryOscillator, models.CategoryCrossover, models.CategoryAlignment}
}

func (t *Trend) Analyze(candles []models.Candle, snap *models.MarketSnapshot) models.ProcessorResult {
	if len(candles) < trendMinCandles {
		return insufficientResult(TrendName, len(candles), trendMinCandles)
	}

	closes := extractCloses(candles)
	price := last(closes)
	if snap != nil && snap.CurrentPrice > 0 {
		price = snap.CurrentPrice
	}

	sma10 := talib.Sma(closes, 10)
	sma20 := talib.Sma(closes, 20)
	sma50 := talib.Sma(closes, 50)
	ema20 := talib.Ema(closes, 20)
	ema50 := talib.Ema(closes, 50)
	rsi := talib.Rsi(closes, 14)
	_, _, macdHist := talib.Macd(closes, 12, 26, 9)

	indicators := map[string]float64{
		"sma_10":    last(sma10),
		"sma_20":    last(sma20),
		"sma_50":    last(sma50),
		"ema_20":    last(ema20),
		"ema_50":    last(ema50),
		"rsi_14":    last(rsi),
		"macd_hist": last(macdHist),
	}
	if len(closes) >= 200 {
		indicators["sma_200"] = last(talib.Sma(closes, 200))
	}

	var signals []models.IndicatorSignal

	switch r := last(rsi); {
	case r <= 30:
		signals = append(signals, models.IndicatorSignal{
			Label: "rsi_oversold", Direction: models.DirectionBullish,
			Category: models.CategoryOscillator, Weight: 0.8, Value: r,
		})
	case r >= 70:
		signals = append(signals, models.IndicatorSignal{
			Label: "rsi_overbought", Direction: models.DirectionBearish,
			Category: models.CategoryOscillator, Weight: 0.8, Value: r,
		})
	}

	hist, prevHist := last(macdHist), at(macdHist, 1)
	switch {
	case prevHist <= 0 && hist > 0:
		signals = append(signals, models.IndicatorSignal{
			Label: "macd_bullish_crossover", Direction: models.DirectionBullish,
			Category: models.CategoryCrossover, Weight: 0.9, Value: hist,
		})
	case prevHist >= 0 && hist < 0:
		signals = append(signals, models.IndicatorSignal{
			Label: "macd_bearish_crossover", Direction: models.DirectionBearish,
			Category: models.CategoryCrossover, Weight: 0.9, Value: hist,
		})
	case hist > 0:
		signals = append(signals, models.IndicatorSignal{
			Label: "macd_momentum_positive", Direction: models.DirectionBullish,
			Category: models.CategoryCrossover, Weight: 0.4, Value: hist,
		})
	case hist < 0:
		signals = append(signals, models.IndicatorSignal{
			Label: "macd_momentum_negative", Direction: models.DirectionBearish,
			Category: models.CategoryCrossover, Weight: 0.4, Value: hist,
		})
	}

	if crossedAbove(sma20, sma50, crossLookback) {
		signals = append(signals, models.IndicatorSignal{
			Label: "golden_cross", Direction: models.DirectionBullish,
			Category: models.CategoryCrossover, Weight: 1.0,
		})
	} else if crossedAbove(sma50, sma20, crossLookback) {
		signals = append(signals, models.IndicatorSignal{
			Label: "death_cross", Direction: models.DirectionBearish,
			Category: models.CategoryCrossover, Weight: 1.0,
		})
	}

	s20, s50 := last(sma20), last(sma50)
	if price > s20 && s20 > s50 {
		signals = append(signals, models.IndicatorSignal{
			Label: "ma_bullish_alignment", Direction: models.DirectionBullish,
			Category: models.CategoryAlignment, Weight: 0.7,
		})
	} else if price < s20 && s20 < s50 {
		signals = append(signals, models.IndicatorSignal{
			Label: "ma_bearish_alignment", Direction: models.DirectionBearish,
			Category: models.CategoryAlignment, Weight: 0.7,
		})
	}

	window := closes[len(closes)-regressionWindow:]
	slope, r2 := linearRegression(window)
	strength := r2 * 100
	if slope < 0 {
		strength = -strength
	}
	indicators["trend_r2"] = r2
	indicators["trend_strength"] = strength

	// A weak fit (r2 below 0.5) is treated as sideways and casts no vote.
	if r2 >= 0.5 {
		mean := meanOf(window)
		fittedChangePct := 0.0
		if mean > 0 {
			fittedChangePct = slope * float64(len(window)-1) / mean * 100
		}
		if fittedChangePct > 0.5 {
			signals = append(signals, models.IndicatorSignal{
				Label: "regression_uptrend", Direction: models.DirectionBullish,
				Category: models.CategoryAlignment, Weight: 0.6, Value: strength,
			})
		} else if fittedChangePct < -0.5 {
			signals = append(signals, models.IndicatorSignal{
				Label: "regression_downtrend", Direction: models.DirectionBearish,
				Category: models.CategoryAlignment, Weight: 0.6, Value: strength,
			})
		}
	}

	return models.ProcessorResult{
		Processor:  TrendName,
		Status:     models.StatusOK,
		Indicators: indicators,
		Signals:    signals,
		Confidence: confidence(len(candles), trendPreferred),
	}
}

// linearRegression fits y = a + b*x over vals indexed 0..n-1 and returns
// the slope and coefficient of determination.
func linearRegression(vals []float64) (slope, r2 float64) {
	n := float64(len(vals))
	if n < 2 {
		return 0, 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range vals {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, 0
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssTot, ssRes float64
	for i, y := range vals {
		fit := intercept + slope*float64(i)
		ssTot += (y - meanY) * (y - meanY)
		ssRes += (y - fit) * (y - fit)
	}
	if ssTot == 0 {
		return slope, 0
	}
	return slope, 1 - ssRes/ssTot
}

func meanOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
