// Package entity defines the domain models for the symbollist feature.
package entity

// Symbol is one tradable A-share instrument of the backtest universe.
type Symbol struct {
	Code     string // "600000.SH", "000001.SZ"
	Name     string
	Market   string // "SH" or "SZ"
	IsActive bool
	SortKey  int
}
