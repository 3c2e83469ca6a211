package sentiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CoinPulse/internal/domain/service"
	"CoinPulse/pkg/cache"
	xhttp "CoinPulse/pkg/http"
	applogger "CoinPulse/pkg/logger"
)

// HTTPProvider fetches a market sentiment score from an external endpoint
// and caches it. Scores are normalized to [-1, 1].
type HTTPProvider struct {
	url      string
	http     *xhttp.Client
	cache    cache.Service
	cacheTTL time.Duration
	log      *applogger.Logger
}

// NewHTTPProvider creates a SentimentProvider. cacheSvc may be nil, in which
// case every call hits the endpoint.
func NewHTTPProvider(url string, timeout time.Duration, cacheSvc cache.Service, cacheTTL time.Duration, log *applogger.Logger) service.SentimentProvider {
	return &HTTPProvider{
		url:      url,
		http:     xhttp.NewClient(xhttp.WithTimeout(timeout)),
		cache:    cacheSvc,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

type sentimentResponse struct {
	Market string  `json:"market"`
	Score  float64 `json:"score"`
}

// Score returns the cached or freshly fetched sentiment for market.
func (p *HTTPProvider) Score(ctx context.Context, market string) (float64, error) {
	key := cache.GenerateKey("sentiment", market)

	if p.cache != nil {
		var cached float64
		err := p.cache.Get(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			p.log.Warn("sentiment cache read failed", applogger.Error(err))
		}
	}

	var resp sentimentResponse
	err := p.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         p.url,
		QueryParams: map[string][]string{"market": {market}},
	}, &resp)
	if err != nil {
		return 0, fmt.Errorf("sentiment fetch %s: %w", market, err)
	}

	score := resp.Score
	if score > 1 {
		score = 1
	} else if score < -1 {
		score = -1
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, key, score, p.cacheTTL); err != nil {
			p.log.Warn("sentiment cache write failed", applogger.Error(err))
		}
	}

	return score, nil
}
