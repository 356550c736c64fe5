package engine

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"stock_backtest/internal/feature/backtest/domain/entity"
)

// SizePosition returns how many shares equity*pct buys at price, floored to a
// multiple of lot. Zero means the capital is insufficient for one lot.
func SizePosition(equity, pct, price decimal.Decimal, lot int64) int64 {
	if !price.IsPositive() || !equity.IsPositive() || lot < 1 {
		return 0
	}
	shares := equity.Mul(pct).Div(price).Floor().IntPart()
	return shares / lot * lot
}

// affordable caps qty so that price*qty plus commission fits in cash.
func affordable(qty int64, cash, price, rate decimal.Decimal, lot int64) int64 {
	if qty <= 0 || buyCost(price, qty, rate).LessThanOrEqual(cash) {
		return qty
	}
	perShare := price.Mul(decimal.NewFromInt(1).Add(rate))
	capped := cash.Div(perShare).Floor().IntPart()
	capped = capped / lot * lot
	if capped < qty {
		return capped
	}
	return qty
}

// buyCost is the cash debited when buying qty at price.
func buyCost(price decimal.Decimal, qty int64, rate decimal.Decimal) decimal.Decimal {
	value := price.Mul(decimal.NewFromInt(qty))
	return value.Add(value.Mul(rate))
}

// sellProceeds is the cash credited when selling qty at price.
func sellProceeds(price decimal.Decimal, qty int64, rate decimal.Decimal) decimal.Decimal {
	value := price.Mul(decimal.NewFromInt(qty))
	return value.Sub(value.Mul(rate))
}

// Settle closes pos at sellPrice and computes the realized P&L from the
// recorded fill prices:
//
//	gross      = (sell - buy) * qty
//	commission = (buy*qty + sell*qty) * rate
//	net        = gross - commission
//	return     = net / (buy*qty)
//
// A zero cost basis reports a return of 0 and logs a warning.
func Settle(symbol string, pos entity.Position, sellPrice decimal.Decimal, sellDate time.Time,
	reason entity.SellReason, rate decimal.Decimal, diag Diagnostics) entity.TradeRecord {
	qty := decimal.NewFromInt(pos.Quantity)
	cost := pos.EntryPrice.Mul(qty)
	proceeds := sellPrice.Mul(qty)

	gross := sellPrice.Sub(pos.EntryPrice).Mul(qty)
	commission := cost.Add(proceeds).Mul(rate)
	net := gross.Sub(commission)

	returnRate := decimal.Zero
	if cost.IsZero() {
		diag.Log(slog.LevelWarn, "zero cost basis, reporting return rate as 0",
			"symbol", symbol, "buy_date", pos.EntryDate.Format(time.DateOnly), "quantity", pos.Quantity)
	} else {
		returnRate = net.Div(cost)
	}

	var diff *entity.DiffObservation
	if pos.EntryDiff != nil {
		d := *pos.EntryDiff
		diff = &d
	}

	return entity.TradeRecord{
		Symbol:      symbol,
		BuyDate:     pos.EntryDate,
		BuyPrice:    pos.EntryPrice,
		SellDate:    sellDate,
		SellPrice:   sellPrice,
		Quantity:    pos.Quantity,
		HoldDays:    pos.HoldDays,
		SellReason:  reason,
		GrossProfit: gross,
		Commission:  commission,
		NetProfit:   net,
		ReturnRate:  returnRate,
		Diff:        diff,
	}
}
