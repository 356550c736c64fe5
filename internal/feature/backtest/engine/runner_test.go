package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_backtest/internal/feature/backtest/engine"
)

func TestSimulate(t *testing.T) {
	bars := append(setupBars(),
		bar(7, "10.00", "10.10", "9.60", "9.80", false),
		bar(8, "9.70", "9.80", "9.30", "9.50", false),
		bar(9, "9.40", "9.50", "9.00", "9.30", false),
		bar(10, "9.50", "10.20", "9.40", "10.12", false),
	)

	t.Run("all bars evaluated", func(t *testing.T) {
		res := engine.Simulate("600000.SH", bars, testParams(), day0.AddDate(-1, 0, 0), engine.NopDiagnostics{})

		assert.Equal(t, "600000.SH", res.Symbol)
		require.Len(t, res.Trades, 1)
		assert.Len(t, res.Equity, len(bars))
		assert.Equal(t, 1, res.Signals)
		assert.True(t, res.FinalValue.Equal(dec("100900.68")))
		assert.True(t, res.InitialCapital.Equal(dec("100000")))
		assert.Nil(t, res.PendingTarget)
		assert.Nil(t, res.PendingDiff)
		assert.Nil(t, res.OpenPosition)
		// 100090.8 at bar 9 is the peak before bar 10 rises further, so no drawdown
		assert.True(t, res.MaxDrawdown.IsZero())
	})

	t.Run("warm-up bars feed history but are not evaluated", func(t *testing.T) {
		res := engine.Simulate("600000.SH", bars, testParams(), bars[5].Date, engine.NopDiagnostics{})

		assert.Len(t, res.Equity, len(bars)-5)
		assert.Equal(t, bars[5].Date, res.Equity[0].Date)
		require.Len(t, res.Trades, 1, "pattern confirmed on bar 6 uses warm-up history")
	})

	t.Run("series ends pending", func(t *testing.T) {
		res := engine.Simulate("X", bars[:9], testParams(), day0, engine.NopDiagnostics{})

		require.NotNil(t, res.PendingTarget)
		require.NotNil(t, res.PendingDiff)
		assert.True(t, res.PendingDiff.MinDiff.Equal(dec("0.10")))
		assert.Empty(t, res.Trades)
		assert.True(t, res.FinalValue.Equal(dec("100000")))
	})

	t.Run("series ends holding", func(t *testing.T) {
		res := engine.Simulate("X", bars[:10], testParams(), day0, engine.NopDiagnostics{})

		require.NotNil(t, res.OpenPosition)
		assert.Empty(t, res.Trades)
		assert.True(t, res.FinalValue.Equal(dec("100090.8")))
	})

	t.Run("no bars", func(t *testing.T) {
		res := engine.Simulate("X", nil, testParams(), day0, engine.NopDiagnostics{})

		assert.Empty(t, res.Equity)
		assert.True(t, res.FinalValue.Equal(dec("100000")))
		assert.True(t, res.MaxDrawdown.IsZero())
	})
}
