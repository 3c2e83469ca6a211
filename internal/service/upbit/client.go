package upbit

import (
	"context"
	"fmt"
	"sort"
	"time"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
	"CoinPulse/internal/service/ratelimit"
	xhttp "CoinPulse/pkg/http"
	applogger "CoinPulse/pkg/logger"
)

// Upbit serves at most 200 candles per request; larger counts are paginated
// with the `to` cursor.
const maxCandlesPerRequest = 200

const candleTimeLayout = "2006-01-02T15:04:05"

// Client implements a MarketSource backed by the Upbit REST API.
type Client struct {
	baseURL        string
	http           *xhttp.Client
	limiter        *ratelimit.Limiter
	requestsPerSec float64
	log            *applogger.Logger
}

// New creates a new Upbit MarketSource.
func New(baseURL string, timeout time.Duration, requestsPerSec float64, log *applogger.Logger) drepo.MarketSource {
	return &Client{
		baseURL:        baseURL,
		http:           xhttp.NewClient(xhttp.WithTimeout(timeout)),
		limiter:        ratelimit.New(),
		requestsPerSec: requestsPerSec,
		log:            log,
	}
}

type upbitCandle struct {
	Market           string  `json:"market"`
	CandleDateTimeUTC string `json:"candle_date_time_utc"`
	OpeningPrice     float64 `json:"opening_price"`
	HighPrice        float64 `json:"high_price"`
	LowPrice         float64 `json:"low_price"`
	TradePrice       float64 `json:"trade_price"`
	AccTradePrice    float64 `json:"candle_acc_trade_price"`
	AccTradeVolume   float64 `json:"candle_acc_trade_volume"`
}

type upbitTicker struct {
	Market           string  `json:"market"`
	TradePrice       float64 `json:"trade_price"`
	SignedChangeRate float64 `json:"signed_change_rate"`
	AccTradePrice24h float64 `json:"acc_trade_price_24h"`
	Timestamp        int64   `json:"timestamp"` // ms
}

// FetchCandles retrieves up to count candles for market, oldest first.
// Upbit returns newest-first pages, so results are re-sorted ascending.
func (c *Client) FetchCandles(ctx context.Context, market string, tf drepo.Timeframe, count int) ([]models.Candle, error) {
	if !drepo.IsValidTimeframe(tf) {
		return nil, fmt.Errorf("upbit: unsupported timeframe %q", tf)
	}

	var raw []upbitCandle
	cursor := ""
	for len(raw) < count {
		batch := count - len(raw)
		if batch > maxCandlesPerRequest {
			batch = maxCandlesPerRequest
		}

		page, err := c.fetchCandlePage(ctx, market, tf, batch, cursor)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		raw = append(raw, page...)

		// oldest candle of the page is the cursor for the next one
		cursor = page[len(page)-1].CandleDateTimeUTC
	}

	candles := make([]models.Candle, 0, len(raw))
	for _, uc := range raw {
		ts, err := time.Parse(candleTimeLayout, uc.CandleDateTimeUTC)
		if err != nil {
			return nil, fmt.Errorf("upbit: parse candle time %q: %w", uc.CandleDateTimeUTC, err)
		}
		candles = append(candles, models.Candle{
			Market:      uc.Market,
			Timestamp:   ts.UTC(),
			Open:        uc.OpeningPrice,
			High:        uc.HighPrice,
			Low:         uc.LowPrice,
			Close:       uc.TradePrice,
			Volume:      uc.AccTradeVolume,
			QuoteVolume: uc.AccTradePrice,
		})
	}
	sort.Slice(candles, func(i, j int) bool { return candles[i].Timestamp.Before(candles[j].Timestamp) })
	return candles, nil
}

func (c *Client) fetchCandlePage(ctx context.Context, market string, tf drepo.Timeframe, count int, to string) ([]upbitCandle, error) {
	if err := c.waitForSlot(ctx); err != nil {
		return nil, err
	}

	var endpoint string
	if unit := tf.MinuteUnit(); unit > 0 {
		endpoint = fmt.Sprintf("%s/v1/candles/minutes/%d", c.baseURL, unit)
	} else {
		endpoint = fmt.Sprintf("%s/v1/candles/days", c.baseURL)
	}

	params := map[string][]string{
		"market": {market},
		"count":  {fmt.Sprintf("%d", count)},
	}
	if to != "" {
		params["to"] = []string{to}
	}

	var page []upbitCandle
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         endpoint,
		QueryParams: params,
	}, &page)
	if err != nil {
		return nil, fmt.Errorf("upbit candles %s/%s: %w", market, tf, err)
	}
	return page, nil
}

// FetchTicker retrieves the current ticker for market.
func (c *Client) FetchTicker(ctx context.Context, market string) (*models.Ticker, error) {
	if err := c.waitForSlot(ctx); err != nil {
		return nil, err
	}

	var tickers []upbitTicker
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/v1/ticker",
		QueryParams: map[string][]string{"markets": {market}},
	}, &tickers)
	if err != nil {
		return nil, fmt.Errorf("upbit ticker %s: %w", market, err)
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("upbit ticker %s: empty response", market)
	}

	t := tickers[0]
	return &models.Ticker{
		Market:         t.Market,
		TradePrice:     t.TradePrice,
		ChangeRate24h:  t.SignedChangeRate,
		QuoteVolume24h: t.AccTradePrice24h,
		Timestamp:      time.UnixMilli(t.Timestamp).UTC(),
	}, nil
}

// waitForSlot blocks until the rate limiter grants a request or ctx is done.
func (c *Client) waitForSlot(ctx context.Context) error {
	for {
		if c.limiter.Allow("upbit-rest", c.requestsPerSec, c.requestsPerSec) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}
