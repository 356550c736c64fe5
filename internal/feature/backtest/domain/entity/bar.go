// Package entity defines the domain models for the backtest feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one trading day of a single instrument.
// LimitUp is supplied by the data source and never recomputed by the engine.
type Bar struct {
	Date    time.Time
	Open    decimal.Decimal
	High    decimal.Decimal
	Low     decimal.Decimal
	Close   decimal.Decimal
	Volume  int64
	LimitUp bool
}

// Bearish reports whether the bar closed below its open.
func (b Bar) Bearish() bool {
	return b.Close.LessThan(b.Open)
}
