package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Scenario identifies which rule produced a buy price.
type Scenario string

const (
	// ScenarioA: the lookback window contained no limit-up day, so the
	// price is the highest high of the bars just before the run.
	ScenarioA Scenario = "A"
	// ScenarioB: the lookback window contained a limit-up day, so the
	// price is the mean close of the window.
	ScenarioB Scenario = "B"
)

// Window is an inclusive range of bar indices.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bars covered by the window.
func (w Window) Len() int {
	if w.End < w.Start {
		return 0
	}
	return w.End - w.Start + 1
}

// BuyTarget is a pending limit order created when the pullback pattern is confirmed.
type BuyTarget struct {
	Price         decimal.Decimal
	Scenario      Scenario
	ConfirmedDate time.Time
	RunStartDate  time.Time
	RunLength     int
	Lookback      Window
}
