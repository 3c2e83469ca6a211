package util

import (
    "strconv"
    "time"
)

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
    if s == "" {
        return time.Time{}, false
    }
    if t, err := time.Parse(time.RFC3339, s); err == nil {
        return t, true
    }
    if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
        return t, true
    }
    if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
        return time.Unix(ts, 0), true
    }
    return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
    if t, ok := ParseTime(s); ok {
        return t
    }
    return def
}

var timeframeDurations = map[string]time.Duration{
    "1m":  time.Minute,
    "3m":  3 * time.Minute,
    "5m":  5 * time.Minute,
    "15m": 15 * time.Minute,
    "30m": 30 * time.Minute,
    "1h":  time.Hour,
    "4h":  4 * time.Hour,
    "1d":  24 * time.Hour,
}

// AlignFromTo rounds the time range to candle boundaries for the timeframe.
// Unknown timeframes fall back to minute alignment.
func AlignFromTo(from, to time.Time, tf string) (time.Time, time.Time) {
    d, ok := timeframeDurations[tf]
    if !ok {
        d = time.Minute
    }
    return from.Truncate(d), to.Truncate(d)
}