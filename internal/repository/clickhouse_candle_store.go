package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/domain/repository"
)

// CandleSchema holds the idempotent DDL for the candle table.
var CandleSchema = []string{
	`CREATE TABLE IF NOT EXISTS candles (
		market LowCardinality(String),
		timeframe LowCardinality(String),
		ts DateTime('UTC'),
		open Float64,
		high Float64,
		low Float64,
		close Float64,
		volume Float64,
		quote_volume Float64
	) ENGINE = ReplacingMergeTree
	ORDER BY (market, timeframe, ts)`,
}

// ClickHouseCandleStore implements CandleStore for ClickHouse.
type ClickHouseCandleStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseCandleStore creates ClickHouse candle storage.
func NewClickHouseCandleStore(db *sql.DB, table string) repository.CandleStore {
	return &ClickHouseCandleStore{db: db, table: table}
}

// StoreCandles inserts candles in chunks to reduce round-trips. Duplicate
// (market, timeframe, ts) rows are collapsed by the ReplacingMergeTree engine.
func (s *ClickHouseCandleStore) StoreCandles(ctx context.Context, tf repository.Timeframe, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	const chunkSize = 2000
	for start := 0; start < len(candles); start += chunkSize {
		end := start + chunkSize
		if end > len(candles) {
			end = len(candles)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*9)
		for _, c := range candles[start:end] {
			if c.Market == "" || c.Timestamp.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				c.Market,
				string(tf),
				c.Timestamp.UTC(),
				c.Open,
				c.High,
				c.Low,
				c.Close,
				c.Volume,
				c.QuoteVolume,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf(
			"INSERT INTO %s (market, timeframe, ts, open, high, low, close, volume, quote_volume) VALUES %s",
			s.table, strings.Join(values, ","),
		)
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store candles: %w", err)
		}
	}
	return nil
}

// GetCandles returns candles in [from, to] ascending by timestamp.
func (s *ClickHouseCandleStore) GetCandles(ctx context.Context, market string, from, to time.Time, tf repository.Timeframe) ([]models.Candle, error) {
	q := fmt.Sprintf(
		"SELECT market, ts, open, high, low, close, volume, quote_volume FROM %s FINAL WHERE market = ? AND timeframe = ? AND ts >= ? AND ts <= ? ORDER BY ts ASC",
		s.table,
	)
	rows, err := s.db.QueryContext(ctx, q, market, string(tf), from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("get candles: %w", err)
	}
	defer rows.Close()
	return scanCandles(rows)
}

// GetLatestNCandles returns the newest n candles ascending by timestamp.
func (s *ClickHouseCandleStore) GetLatestNCandles(ctx context.Context, market string, n int, tf repository.Timeframe) ([]models.Candle, error) {
	q := fmt.Sprintf(
		"SELECT market, ts, open, high, low, close, volume, quote_volume FROM (SELECT * FROM %s FINAL WHERE market = ? AND timeframe = ? ORDER BY ts DESC LIMIT ?) ORDER BY ts ASC",
		s.table,
	)
	rows, err := s.db.QueryContext(ctx, q, market, string(tf), n)
	if err != nil {
		return nil, fmt.Errorf("get latest candles: %w", err)
	}
	defer rows.Close()
	return scanCandles(rows)
}

func scanCandles(rows *sql.Rows) ([]models.Candle, error) {
	var candles []models.Candle
	for rows.Next() {
		var c models.Candle
		var ts time.Time
		if err := rows.Scan(&c.Market, &ts, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume, &c.QuoteVolume); err != nil {
			return nil, err
		}
		c.Timestamp = ts.UTC()
		candles = append(candles, c)
	}
	return candles, rows.Err()
}

func (s *ClickHouseCandleStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseCandleStore) Close() error {
	return nil // connection pool owned by pkg/clickhouse
}
