package processor

import (
	"math"
	"time"

	talib "github.com/markcheno/go-talib"

	"CoinPulse/internal/domain/models"
)

// VolatilityName identifies the volatility processor.
const VolatilityName = "volatility"

const (
	volatilityMinCandles = 21
	volatilityPreferred  = 60
	bbPeriod             = 20
	squeezeLookback      = 50
)

// Annualized realized volatility bands, in percent.
const (
	regimeLowMax    = 15.0
	regimeNormalMax = 30.0
	regimeHighMax   = 50.0
)

// Volatility analyzes Bollinger position, ATR and realized volatility and
// classifies the regime. It feeds the volatility weight category.
type Volatility struct{}

// NewVolatility creates the volatility processor.
func NewVolatility() *Volatility { return &Volatility{} }

func (v *Volatility) Name() string    { return VolatilityName }
func (v *Volatility) MinCandles() int { return volatilityMinCandles }

func (v *Volatility) Categories() []models.Category {
	return []models.Category{models.CategoryVolatility}
}

func (v *Volatility) Analyze(candles []models.Candle, snap *models.MarketSnapshot) models.ProcessorResult {
	if len(candles) < volatilityMinCandles {
		return insufficientResult(VolatilityName, len(candles), volatilityMinCandles)
	}

	closes := extractCloses(candles)
	highs := extractHighs(candles)
	lows := extractLows(candles)
	price := last(closes)
	if snap != nil && snap.CurrentPrice > 0 {
		price = snap.CurrentPrice
	}

	upper, middle, lower := talib.BBands(closes, bbPeriod, 2, 2, talib.SMA)
	atr := talib.Atr(highs, lows, closes, 14)

	up, mid, low := last(upper), last(middle), last(lower)
	bandwidth := 0.0
	if mid > 0 {
		bandwidth = (up - low) / mid
	}
	percentB := 0.5
	if up > low {
		percentB = (price - low) / (up - low)
	}

	realized := realizedVolatility(closes, candlePeriod(candles))

	indicators := map[string]float64{
		"bb_upper":                last(upper),
		"bb_middle":               mid,
		"bb_lower":                low,
		"bb_percent_b":            percentB,
		"bb_bandwidth":            bandwidth,
		"atr_14":                  last(atr),
		"realized_vol_annual_pct": realized,
	}
	if price > 0 {
		indicators["atr_pct"] = last(atr) / price * 100
	}

	var signals []models.IndicatorSignal

	if percentB <= 0 {
		signals = append(signals, models.IndicatorSignal{
			Label: "price_below_lower_band", Direction: models.DirectionBullish,
			Category: models.CategoryVolatility, Weight: 0.7, Value: percentB,
		})
	} else if percentB >= 1 {
		signals = append(signals, models.IndicatorSignal{
			Label: "price_above_upper_band", Direction: models.DirectionBearish,
			Category: models.CategoryVolatility, Weight: 0.7, Value: percentB,
		})
	}

	if squeezed(upper, middle, lower) {
		signals = append(signals, models.IndicatorSignal{
			Label: "bollinger_squeeze", Direction: models.DirectionNeutral,
			Category: models.CategoryVolatility, Weight: 0.3, Value: bandwidth,
		})
	}

	switch {
	case realized > regimeHighMax:
		signals = append(signals, models.IndicatorSignal{
			Label: "volatility_regime_extreme", Direction: models.DirectionBearish,
			Category: models.CategoryVolatility, Weight: 0.4, Value: realized,
		})
	case realized > regimeNormalMax:
		signals = append(signals, models.IndicatorSignal{
			Label: "volatility_regime_high", Direction: models.DirectionNeutral,
			Category: models.CategoryVolatility, Weight: 0.3, Value: realized,
		})
	case realized > 0 && realized < regimeLowMax:
		signals = append(signals, models.IndicatorSignal{
			Label: "volatility_regime_low", Direction: models.DirectionNeutral,
			Category: models.CategoryVolatility, Weight: 0.2, Value: realized,
		})
	}

	return models.ProcessorResult{
		Processor:  VolatilityName,
		Status:     models.StatusOK,
		Indicators: indicators,
		Signals:    signals,
		Confidence: confidence(len(candles), volatilityPreferred),
	}
}

// squeezed reports whether the current band width sits within 10% of its
// trailing minimum.
func squeezed(upper, middle, lower []float64) bool {
	n := len(middle)
	start := n - squeezeLookback
	if start < bbPeriod {
		start = bbPeriod
	}
	if start >= n {
		return false
	}

	minBW := math.Inf(1)
	for i := start; i < n-1; i++ {
		if middle[i] <= 0 {
			continue
		}
		bw := (upper[i] - lower[i]) / middle[i]
		if bw > 0 && bw < minBW {
			minBW = bw
		}
	}
	if math.IsInf(minBW, 1) || middle[n-1] <= 0 {
		return false
	}
	current := (upper[n-1] - lower[n-1]) / middle[n-1]
	return current <= minBW*1.1
}

// realizedVolatility annualizes the standard deviation of log returns over
// the trailing bbPeriod closes, in percent.
func realizedVolatility(closes []float64, period time.Duration) float64 {
	window := closes
	if len(window) > bbPeriod+1 {
		window = window[len(window)-bbPeriod-1:]
	}

	returns := make([]float64, 0, len(window)-1)
	for i := 1; i < len(window); i++ {
		if window[i-1] <= 0 || window[i] <= 0 {
			continue
		}
		returns = append(returns, math.Log(window[i]/window[i-1]))
	}
	if len(returns) < 2 || period <= 0 {
		return 0
	}

	mean := meanOf(returns)
	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)

	periodsPerYear := float64(365*24*time.Hour) / float64(period)
	return math.Sqrt(variance) * math.Sqrt(periodsPerYear) * 100
}

// candlePeriod infers the candle interval from the last two timestamps.
func candlePeriod(candles []models.Candle) time.Duration {
	n := len(candles)
	if n < 2 {
		return 0
	}
	return candles[n-1].Timestamp.Sub(candles[n-2].Timestamp)
}
