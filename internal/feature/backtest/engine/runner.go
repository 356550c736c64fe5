package engine

import (
	"log/slog"
	"time"

	"stock_backtest/internal/feature/backtest/domain/entity"
)

// Simulate runs one instrument over bars, which must be ascending by date.
// Bars dated before from only warm up the history; a zero from evaluates every bar.
func Simulate(symbol string, bars []entity.Bar, params entity.Params, from time.Time, diag Diagnostics) entity.InstrumentResult {
	m := NewMachine(symbol, params, diag)
	warm := 0
	for _, bar := range bars {
		if !from.IsZero() && bar.Date.Before(from) {
			m.Warm(bar)
			warm++
			continue
		}
		m.Advance(bar)
	}

	equity := m.Equity()
	final := params.InitialCapital
	if len(equity) > 0 {
		final = equity[len(equity)-1].TotalValue
	}

	res := entity.InstrumentResult{
		Symbol:         symbol,
		Trades:         m.Trades(),
		Equity:         equity,
		InitialCapital: params.InitialCapital,
		FinalValue:     final,
		MaxDrawdown:    MaxDrawdown(equity),
		Signals:        m.Signals(),
		PendingTarget:  m.Target(),
		PendingDiff:    m.PendingDiff(),
		OpenPosition:   m.Position(),
	}

	m.diag.Log(slog.LevelInfo, "instrument simulated",
		"symbol", symbol, "bars", len(bars), "warmup_bars", warm, "signals", res.Signals,
		"trades", len(res.Trades), "final_value", final.StringFixed(2), "state", m.State().String())
	return res
}
