package engine

import (
	"github.com/shopspring/decimal"

	"stock_backtest/internal/feature/backtest/domain/entity"
)

// preRunBars is how many bars before t0 scenario A looks at.
const preRunBars = 3

// BuyPrice is the outcome of ComputeBuyPrice.
type BuyPrice struct {
	Price    decimal.Decimal
	Scenario entity.Scenario
	Window   entity.Window
}

// ComputeBuyPrice derives the limit price from the bars before t0.
//
// The lookback window is [t0-lookback, t0-1]. If any bar in it is limit-up
// the price is the mean close of the window (scenario B), otherwise it is the
// highest high of the preRunBars bars before t0 (scenario A). The price is
// rounded to 2 decimal places. ok is false when the window starts before the
// first bar.
func ComputeBuyPrice(bars []entity.Bar, t0, lookback int) (BuyPrice, bool) {
	if lookback < 1 || t0 < 0 || t0 >= len(bars) {
		return BuyPrice{}, false
	}
	start := t0 - lookback
	if start < 0 {
		return BuyPrice{}, false
	}
	window := entity.Window{Start: start, End: t0 - 1}

	hasLimitUp := false
	for i := window.Start; i <= window.End; i++ {
		if bars[i].LimitUp {
			hasLimitUp = true
			break
		}
	}

	if hasLimitUp {
		sum := decimal.Zero
		for i := window.Start; i <= window.End; i++ {
			sum = sum.Add(bars[i].Close)
		}
		mean := sum.Div(decimal.NewFromInt(int64(window.Len())))
		return BuyPrice{Price: mean.Round(2), Scenario: entity.ScenarioB, Window: window}, true
	}

	from := t0 - preRunBars
	if from < 0 {
		from = 0
	}
	highest := bars[from].High
	for i := from + 1; i < t0; i++ {
		highest = decimal.Max(highest, bars[i].High)
	}
	return BuyPrice{Price: highest.Round(2), Scenario: entity.ScenarioA, Window: window}, true
}
