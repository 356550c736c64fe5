package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstrumentResult is the outcome of simulating one instrument.
type InstrumentResult struct {
	Symbol         string
	Trades         []TradeRecord
	Equity         []EquitySample
	InitialCapital decimal.Decimal
	FinalValue     decimal.Decimal
	MaxDrawdown    decimal.Decimal
	Signals        int
	// PendingTarget and PendingDiff are set only when the series ended with an unfilled target.
	PendingTarget *BuyTarget
	PendingDiff   *DiffObservation
	// OpenPosition is set when the series ended while holding.
	OpenPosition *Position
	// Error is set when the instrument was skipped, for example because its bars failed to load.
	Error string
}

// Summary aggregates instrument results across a run.
type Summary struct {
	TotalInitialCapital   decimal.Decimal
	TotalFinalValue       decimal.Decimal
	TotalProfit           decimal.Decimal
	TotalReturn           decimal.Decimal
	TotalTrades           int
	WinningTrades         int
	LosingTrades          int
	WinRate               decimal.Decimal
	AverageMaxDrawdown    decimal.Decimal
	InstrumentsTested     int
	InstrumentsWithTrades int
	InstrumentsFailed     int
}

// Run is a stored batch backtest.
type Run struct {
	ID           string
	StrategyName string
	StartDate    time.Time
	EndDate      time.Time
	Params       Params
	Instruments  []InstrumentResult
	Summary      Summary
	CreatedAt    time.Time
}
