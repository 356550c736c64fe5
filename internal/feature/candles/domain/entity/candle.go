// Package entity defines the domain models for the candles feature.
package entity

import "time"

// Candle represents OHLCV candlestick data for a stock symbol at a specific interval.
type Candle struct {
	Symbol   string    // Stock code (e.g., "600000.SH", "000001.SZ")
	Interval string    // Time interval (e.g., "1day", "1week", "1month")
	Time     time.Time // Timestamp for the start of this candle period
	Open     float64   // Opening price
	High     float64   // Highest price during this period
	Low      float64   // Lowest price during this period
	Close    float64   // Closing price
	Volume   int64     // Trading volume
	LimitUp  bool      // Close rose more than the limit-up threshold over the previous close (daily only)
}
