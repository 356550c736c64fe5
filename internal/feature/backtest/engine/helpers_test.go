package engine_test

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"stock_backtest/internal/feature/backtest/domain/entity"
)

var day0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// bar builds the i-th daily bar counted from day0.
func bar(i int, open, high, low, close string, limitUp bool) entity.Bar {
	return entity.Bar{
		Date:    day0.AddDate(0, 0, i),
		Open:    dec(open),
		High:    dec(high),
		Low:     dec(low),
		Close:   dec(close),
		Volume:  1000,
		LimitUp: limitUp,
	}
}

// setupBars is a two-day limit-up run (indices 3-4) followed by two bearish days.
// bars[6] confirms the pattern; t0 = 3 and the three bars before it hold no limit-up,
// so with lookback 3 the target is the highest high of bars 0-2 (9.20).
func setupBars() []entity.Bar {
	return []entity.Bar{
		bar(0, "8.80", "9.05", "8.70", "8.80", false),
		bar(1, "8.80", "9.20", "8.70", "8.90", false),
		bar(2, "8.90", "9.10", "8.80", "9.00", false),
		bar(3, "9.10", "10.00", "9.10", "10.00", true),
		bar(4, "10.20", "11.00", "10.20", "11.00", true),
		bar(5, "10.90", "10.95", "10.40", "10.50", false),
		bar(6, "10.60", "10.70", "10.20", "10.30", false),
	}
}

func testParams() entity.Params {
	return entity.Params{
		ProfitTarget:   dec("0.10"),
		StopLoss:       dec("0.05"),
		MaxHoldDays:    30,
		LookbackDays:   3,
		MaxWaitDays:    100,
		PositionPct:    dec("0.1"),
		CommissionRate: dec("0.001"),
		InitialCapital: dec("100000"),
		LotSize:        100,
	}
}

// recordingDiagnostics keeps every log line for assertions.
type recordingDiagnostics struct {
	lines []string
}

func (r *recordingDiagnostics) Log(level slog.Level, msg string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf("%s %s", level, msg))
}

func (r *recordingDiagnostics) has(level slog.Level, msg string) bool {
	want := fmt.Sprintf("%s %s", level, msg)
	for _, l := range r.lines {
		if l == want {
			return true
		}
	}
	return false
}
