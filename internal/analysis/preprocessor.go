package analysis

import (
	"fmt"
	"time"

	"CoinPulse/internal/domain/models"
)

// InsufficientDataError signals that a candle history is too short to
// enrich. It aborts the whole evaluation cycle.
type InsufficientDataError struct {
	Market string
	Have   int
	Need   int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient candle data for %s: have %d, need %d", e.Market, e.Have, e.Need)
}

// PreprocessorConfig tunes snapshot derivation windows.
type PreprocessorConfig struct {
	// VolumeLookback is how many prior candles form the trailing volume
	// average. The current candle is excluded from the average.
	VolumeLookback int
	// SwingRadius is the number of candles on each side a local extreme
	// must dominate to count as a swing point.
	SwingRadius int
}

// Preprocessor enriches raw candles and a ticker into a MarketSnapshot.
type Preprocessor struct {
	cfg PreprocessorConfig
}

// NewPreprocessor creates a preprocessor, applying defaults for zero fields.
func NewPreprocessor(cfg PreprocessorConfig) *Preprocessor {
	if cfg.VolumeLookback <= 0 {
		cfg.VolumeLookback = 20
	}
	if cfg.SwingRadius <= 0 {
		cfg.SwingRadius = 2
	}
	return &Preprocessor{cfg: cfg}
}

// Enrich derives a MarketSnapshot from a candle series and an optional
// ticker. At least two candles are required. The ticker, when present,
// supplies the current price and 24h quote volume; otherwise both fall
// back to candle-derived values.
func (p *Preprocessor) Enrich(series *models.CandleSeries, ticker *models.Ticker) (*models.MarketSnapshot, error) {
	if series == nil || series.Len() < 2 {
		have := 0
		market := ""
		if series != nil {
			have = series.Len()
			market = series.Market
		}
		return nil, &InsufficientDataError{Market: market, Have: have, Need: 2}
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("enrich: %w", err)
	}

	last := series.Last()
	now := last.Timestamp
	current := last.Close
	if ticker != nil && ticker.TradePrice > 0 {
		current = ticker.TradePrice
	}

	window24 := series.Since(now.Add(-24 * time.Hour))
	high24, low24 := window24[0].High, window24[0].Low
	baseVol24, quoteVol24 := 0.0, 0.0
	for _, c := range window24 {
		if c.High > high24 {
			high24 = c.High
		}
		if c.Low < low24 {
			low24 = c.Low
		}
		baseVol24 += c.Volume
		qv := c.QuoteVolume
		if qv == 0 {
			qv = c.Volume * c.Close
		}
		quoteVol24 += qv
	}
	if ticker != nil && ticker.QuoteVolume24h > 0 {
		quoteVol24 = ticker.QuoteVolume24h
	}

	refClose := referenceClose(series.Candles, now.Add(-24*time.Hour))
	volumeAvg, volumeRatio := p.volumeStats(series.Candles)

	snap := &models.MarketSnapshot{
		Market:            series.Market,
		CurrentPrice:      current,
		PriceChange24hPct: changePct(refClose, current),
		PriceChange24hAbs: current - refClose,
		High24h:           high24,
		Low24h:            low24,
		BaseVolume24h:     baseVol24,
		QuoteVolume24h:    quoteVol24,
		VolumeAverage:     volumeAvg,
		VolumeRatio:       volumeRatio,
		Trend1h:           trendLabel(series.Since(now.Add(-time.Hour))),
		Trend24h:          trendLabel(window24),
		GeneratedAt:       time.Now().UTC(),
	}

	if mid := (high24 + low24) / 2; mid > 0 {
		snap.VolatilityPct = (high24 - low24) / mid * 100
	}

	snap.Support, snap.Resistance = p.supportResistance(series.Candles, current)
	return snap, nil
}

// referenceClose returns the close of the candle nearest to the target time,
// preferring the earlier candle on ties.
func referenceClose(candles []models.Candle, target time.Time) float64 {
	ref := candles[0]
	best := absDuration(ref.Timestamp.Sub(target))
	for _, c := range candles[1:] {
		d := absDuration(c.Timestamp.Sub(target))
		if d < best {
			best = d
			ref = c
		}
	}
	return ref.Close
}

func changePct(ref, current float64) float64 {
	if ref <= 0 {
		return 0
	}
	return (current - ref) / ref * 100
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// volumeStats returns the trailing average base volume (current candle
// excluded) and the ratio of the latest candle's volume to it. The ratio
// falls back to 1 when no usable history exists.
func (p *Preprocessor) volumeStats(candles []models.Candle) (avg, ratio float64) {
	n := len(candles)
	start := n - 1 - p.cfg.VolumeLookback
	if start < 0 {
		start = 0
	}
	prev := candles[start : n-1]
	if len(prev) == 0 {
		return 0, 1
	}
	var sum float64
	for _, c := range prev {
		sum += c.Volume
	}
	avg = sum / float64(len(prev))
	if avg <= 0 {
		return avg, 1
	}
	return avg, candles[n-1].Volume / avg
}

// supportResistance picks the highest swing low below the current price and
// the lowest swing high above it. Either side may be nil.
func (p *Preprocessor) supportResistance(candles []models.Candle, current float64) (*float64, *float64) {
	r := p.cfg.SwingRadius
	if len(candles) < 2*r+1 {
		return nil, nil
	}

	var support, resistance *float64
	for i := r; i < len(candles)-r; i++ {
		isLow, isHigh := true, true
		for j := i - r; j <= i+r; j++ {
			if j == i {
				continue
			}
			if candles[j].Low < candles[i].Low {
				isLow = false
			}
			if candles[j].High > candles[i].High {
				isHigh = false
			}
		}
		if isLow && candles[i].Low < current {
			v := candles[i].Low
			if support == nil || v > *support {
				support = &v
			}
		}
		if isHigh && candles[i].High > current {
			v := candles[i].High
			if resistance == nil || v < *resistance {
				resistance = &v
			}
		}
	}
	return support, resistance
}

// trendLabel classifies the window by the fitted least-squares change of
// its closes: above +0.5% up, below -0.5% down, otherwise sideways.
func trendLabel(candles []models.Candle) models.TrendLabel {
	n := len(candles)
	if n < 2 {
		return models.TrendSideways
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, c := range candles {
		x := float64(i)
		sumX += x
		sumY += c.Close
		sumXY += x * c.Close
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	mean := sumY / fn
	if denom == 0 || mean <= 0 {
		return models.TrendSideways
	}
	slope := (fn*sumXY - sumX*sumY) / denom
	fittedChangePct := slope * float64(n-1) / mean * 100

	switch {
	case fittedChangePct > 0.5:
		return models.TrendUp
	case fittedChangePct < -0.5:
		return models.TrendDown
	default:
		return models.TrendSideways
	}
}
