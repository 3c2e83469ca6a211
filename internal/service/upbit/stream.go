package upbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
	applogger "CoinPulse/pkg/logger"

	"github.com/gorilla/websocket"
)

// Stream implements a TickerStream backed by the Upbit WebSocket feed.
type Stream struct {
	websocketURL   string
	markets        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *applogger.Logger

	conn      *websocket.Conn
	connected bool
}

// NewStream creates a new Upbit TickerStream.
func NewStream(websocketURL string, markets []string, reconnectDelay, pingInterval time.Duration, log *applogger.Logger) drepo.TickerStream {
	return &Stream{
		websocketURL:   websocketURL,
		markets:        markets,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
	}
}

// Connect establishes the WebSocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("upbit connect: %w", err)
	}
	s.conn = conn
	s.connected = true
	s.log.Info("upbit stream: connected")
	return nil
}

// Subscribe requests ticker frames for the configured markets.
// Upbit expects a single JSON array with a ticket and a type block.
func (s *Stream) Subscribe(ctx context.Context) error {
	if s.conn == nil || !s.connected {
		return fmt.Errorf("upbit stream not connected")
	}
	req := []map[string]interface{}{
		{"ticket": fmt.Sprintf("coinpulse-%d", time.Now().UnixNano())},
		{"type": "ticker", "codes": s.markets},
	}
	if err := s.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("upbit subscribe: %w", err)
	}
	s.log.Info("upbit stream: subscribed", applogger.Strings("markets", s.markets))
	return nil
}

type wsTicker struct {
	Type             string  `json:"type"`
	Code             string  `json:"code"`
	TradePrice       float64 `json:"trade_price"`
	SignedChangeRate float64 `json:"signed_change_rate"`
	AccTradePrice24h float64 `json:"acc_trade_price_24h"`
	Timestamp        int64   `json:"timestamp"` // ms
}

// Read streams ticker events and errors. Both channels close when the read
// loop exits.
func (s *Stream) Read(ctx context.Context) (<-chan *models.Ticker, <-chan error) {
	tickers := make(chan *models.Ticker, 256)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if s.conn != nil {
					_ = s.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(tickers)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if s.conn == nil {
					errs <- fmt.Errorf("upbit stream conn nil")
					return
				}
				_, b, err := s.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("upbit stream read: %w", err)
					return
				}
				var m wsTicker
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-JSON frames such as status replies
					continue
				}
				if m.Type != "ticker" || m.Code == "" {
					continue
				}
				t := &models.Ticker{
					Market:         m.Code,
					TradePrice:     m.TradePrice,
					ChangeRate24h:  m.SignedChangeRate,
					QuoteVolume24h: m.AccTradePrice24h,
					Timestamp:      time.UnixMilli(m.Timestamp).UTC(),
				}
				select {
				case tickers <- t:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return tickers, errs
}

// Reconnect closes and reconnects.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	time.Sleep(s.reconnectDelay)
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.connected = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool { return s.connected }
