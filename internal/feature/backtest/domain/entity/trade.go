package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SellReason tells why a position was closed.
type SellReason string

const (
	SellReasonStopLoss   SellReason = "stop_loss"
	SellReasonTakeProfit SellReason = "take_profit"
	SellReasonTimeout    SellReason = "timeout"
)

// DiffObservation is the closest approach of a day's low to the buy target.
// MinDiff = low - target, so a negative value means the low went through the target.
type DiffObservation struct {
	MinDiff               decimal.Decimal
	Date                  time.Time
	DaysSinceConfirmation int
}

// Position is an open holding. At most one exists per instrument.
type Position struct {
	EntryPrice decimal.Decimal
	EntryDate  time.Time
	Quantity   int64
	// HoldDays counts bars evaluated while holding, starting at 0 on the fill day.
	HoldDays int
	// EntryDiff is the diff observation captured when the order filled.
	EntryDiff *DiffObservation
}

// TradeRecord is an immutable round trip.
type TradeRecord struct {
	Symbol      string
	BuyDate     time.Time
	BuyPrice    decimal.Decimal
	SellDate    time.Time
	SellPrice   decimal.Decimal
	Quantity    int64
	HoldDays    int
	SellReason  SellReason
	GrossProfit decimal.Decimal
	Commission  decimal.Decimal
	NetProfit   decimal.Decimal
	ReturnRate  decimal.Decimal
	Diff        *DiffObservation
}

// Win reports whether the trade made money after commission.
func (t TradeRecord) Win() bool {
	return t.NetProfit.IsPositive()
}

// EquitySample is the portfolio value at the close of one evaluated bar.
type EquitySample struct {
	Date       time.Time
	TotalValue decimal.Decimal
}
