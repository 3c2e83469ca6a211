package processor

import (
	talib "github.com/markcheno/go-talib"

	"CoinPulse/internal/domain/models"
)

// VolumeName identifies the volume processor.
const VolumeName = "volume"

const (
	volumeMinCandles = 21
	volumePreferred  = 60
	obvSlopeWindow   = 10
	phaseWindow      = 5
)

// Volume analyzes money flow, on-balance volume and raw volume behaviour
// (spikes, dry-ups, accumulation and distribution). It feeds the volume
// weight category.
type Volume struct{}

// NewVolume creates the volume processor.
func NewVolume() *Volume { return &Volume{} }

func (v *Volume) Name() string    { return VolumeName }
func (v *Volume) MinCandles() int { return volumeMinCandles }

func (v *Volume) Categories() []models.Category {
	return []models.Category{models.CategoryVolume}
}

func (v *Volume) Analyze(candles []models.Candle, snap *models.MarketSnapshot) models.ProcessorResult {
	if len(candles) < volumeMinCandles {
		return insufficientResult(VolumeName, len(candles), volumeMinCandles)
	}

	closes := extractCloses(candles)
	highs := extractHighs(candles)
	lows := extractLows(candles)
	volumes := extractVolumes(candles)

	mfi := talib.Mfi(highs, lows, closes, volumes, 14)
	obv := talib.Obv(closes, volumes)
	volSma := talib.Sma(volumes, 20)
	volStd := talib.StdDev(volumes, 20, 1.0)
	volRoc := talib.Roc(volumes, 10)

	obvWindow := obv[len(obv)-obvSlopeWindow:]
	obvSlope, _ := linearRegression(obvWindow)
	priceDelta := last(closes) - at(closes, obvSlopeWindow-1)

	indicators := map[string]float64{
		"mfi_14":        last(mfi),
		"obv":           last(obv),
		"obv_slope":     obvSlope,
		"volume_sma_20": last(volSma),
		"volume_roc_10": last(volRoc),
	}
	if avg := last(volSma); avg > 0 {
		indicators["volume_ratio"] = last(volumes) / avg
	}

	var signals []models.IndicatorSignal

	switch m := last(mfi); {
	case m <= 20:
		signals = append(signals, models.IndicatorSignal{
			Label: "mfi_oversold", Direction: models.DirectionBullish,
			Category: models.CategoryVolume, Weight: 0.7, Value: m,
		})
	case m >= 80:
		signals = append(signals, models.IndicatorSignal{
			Label: "mfi_overbought", Direction: models.DirectionBearish,
			Category: models.CategoryVolume, Weight: 0.7, Value: m,
		})
	}

	switch {
	case obvSlope > 0 && priceDelta > 0:
		signals = append(signals, models.IndicatorSignal{
			Label: "obv_confirms_uptrend", Direction: models.DirectionBullish,
			Category: models.CategoryVolume, Weight: 0.5,
		})
	case obvSlope < 0 && priceDelta < 0:
		signals = append(signals, models.IndicatorSignal{
			Label: "obv_confirms_downtrend", Direction: models.DirectionBearish,
			Category: models.CategoryVolume, Weight: 0.5,
		})
	case obvSlope > 0 && priceDelta < 0:
		signals = append(signals, models.IndicatorSignal{
			Label: "obv_bullish_divergence", Direction: models.DirectionBullish,
			Category: models.CategoryVolume, Weight: 0.6,
		})
	case obvSlope < 0 && priceDelta > 0:
		signals = append(signals, models.IndicatorSignal{
			Label: "obv_bearish_divergence", Direction: models.DirectionBearish,
			Category: models.CategoryVolume, Weight: 0.6,
		})
	}

	lastVol, avgVol, stdVol := last(volumes), last(volSma), last(volStd)
	lastCandle := candles[len(candles)-1]
	if avgVol > 0 && lastVol > avgVol+2*stdVol {
		if lastCandle.Bullish() {
			signals = append(signals, models.IndicatorSignal{
				Label: "volume_spike_bullish", Direction: models.DirectionBullish,
				Category: models.CategoryVolume, Weight: 0.6, Value: lastVol / avgVol,
			})
		} else {
			signals = append(signals, models.IndicatorSignal{
				Label: "volume_spike_bearish", Direction: models.DirectionBearish,
				Category: models.CategoryVolume, Weight: 0.6, Value: lastVol / avgVol,
			})
		}
	} else if avgVol > 0 && lastVol < 0.5*avgVol {
		signals = append(signals, models.IndicatorSignal{
			Label: "volume_dryup", Direction: models.DirectionNeutral,
			Category: models.CategoryVolume, Weight: 0.3, Value: lastVol / avgVol,
		})
	}

	if phase := volumePhase(candles, volSma); phase != "" {
		dir := models.DirectionBullish
		if phase == "distribution" {
			dir = models.DirectionBearish
		}
		signals = append(signals, models.IndicatorSignal{
			Label: phase, Direction: dir,
			Category: models.CategoryVolume, Weight: 0.5,
		})
	}

	return models.ProcessorResult{
		Processor:  VolumeName,
		Status:     models.StatusOK,
		Indicators: indicators,
		Signals:    signals,
		Confidence: confidence(len(candles), volumePreferred),
	}
}

// volumePhase reports "accumulation" when most recent above-average-volume
// candles close in the upper third of their range, "distribution" for the
// lower third, and "" otherwise.
func volumePhase(candles []models.Candle, volSma []float64) string {
	n := len(candles)
	upper, lower := 0, 0
	for i := n - phaseWindow; i < n; i++ {
		avg := volSma[i]
		if avg <= 0 || candles[i].Volume <= avg {
			continue
		}
		r := candles[i].Range()
		if r <= 0 {
			continue
		}
		pos := (candles[i].Close - candles[i].Low) / r
		if pos >= 2.0/3 {
			upper++
		} else if pos <= 1.0/3 {
			lower++
		}
	}
	switch {
	case upper >= 3:
		return "accumulation"
	case lower >= 3:
		return "distribution"
	default:
		return ""
	}
}
