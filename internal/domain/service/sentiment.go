package service

import "context"

// SentimentProvider returns an external market sentiment score in [-1, 1].
// -1 is maximally bearish, +1 maximally bullish. Implementations should
// return an error rather than a fabricated neutral score when the upstream
// source is unavailable; callers treat failure as "no sentiment".
type SentimentProvider interface {
	Score(ctx context.Context, market string) (float64, error)
}
