package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_backtest/internal/feature/backtest/domain/entity"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "SHUTDOWN_TIMEOUT", "JWT_SECRET", "PROFIT_TARGET", "STOP_LOSS", "MAX_HOLD_DAYS",
		"LOOKBACK_DAYS", "MAX_WAIT_DAYS", "POSITION_PCT", "COMMISSION_RATE", "INITIAL_CAPITAL",
		"LOT_SIZE", "BACKTEST_WORKERS", "LIMIT_UP_THRESHOLD", "BACKTEST_TIMEOUT",
		"TWELVE_DATA_BASE_URL", "TWELVE_DATA_TIMEOUT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Empty(t, cfg.JWT.Secret)
	assert.Equal(t, 4, cfg.Strategy.Workers)
	assert.InDelta(t, 0.096, cfg.Strategy.LimitUpThreshold, 1e-12)
	assert.Equal(t, 10*time.Minute, cfg.Strategy.RunTimeout)
	assert.Equal(t, "https://api.twelvedata.com", cfg.Market.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Market.Timeout)

	def := entity.DefaultParams()
	p := cfg.Strategy.Params
	assert.True(t, p.ProfitTarget.Equal(def.ProfitTarget))
	assert.True(t, p.StopLoss.Equal(def.StopLoss))
	assert.Equal(t, def.MaxHoldDays, p.MaxHoldDays)
	assert.Equal(t, def.LookbackDays, p.LookbackDays)
	assert.Equal(t, def.MaxWaitDays, p.MaxWaitDays)
	assert.True(t, p.PositionPct.Equal(def.PositionPct))
	assert.True(t, p.CommissionRate.Equal(def.CommissionRate))
	assert.True(t, p.InitialCapital.Equal(def.InitialCapital))
	assert.Equal(t, def.LotSize, p.LotSize)
	require.NoError(t, p.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PROFIT_TARGET", "0.15")
	t.Setenv("STOP_LOSS", "0.07")
	t.Setenv("MAX_HOLD_DAYS", "10")
	t.Setenv("LOT_SIZE", "100")
	t.Setenv("INITIAL_CAPITAL", "500000")
	t.Setenv("BACKTEST_WORKERS", "8")
	t.Setenv("LIMIT_UP_THRESHOLD", "0.195")
	t.Setenv("BACKTEST_TIMEOUT", "90s")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.Server.Addr())
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.True(t, cfg.Strategy.Params.ProfitTarget.Equal(decimal.RequireFromString("0.15")))
	assert.True(t, cfg.Strategy.Params.StopLoss.Equal(decimal.RequireFromString("0.07")))
	assert.Equal(t, 10, cfg.Strategy.Params.MaxHoldDays)
	assert.Equal(t, int64(100), cfg.Strategy.Params.LotSize)
	assert.True(t, cfg.Strategy.Params.InitialCapital.Equal(decimal.NewFromInt(500000)))
	assert.Equal(t, 8, cfg.Strategy.Workers)
	assert.InDelta(t, 0.195, cfg.Strategy.LimitUpThreshold, 1e-12)
	assert.Equal(t, 90*time.Second, cfg.Strategy.RunTimeout)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("MAX_HOLD_DAYS", "thirty")
	t.Setenv("PROFIT_TARGET", "ten percent")
	t.Setenv("LIMIT_UP_THRESHOLD", "x")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	cfg := Load()

	def := entity.DefaultParams()
	assert.Equal(t, def.MaxHoldDays, cfg.Strategy.Params.MaxHoldDays)
	assert.True(t, cfg.Strategy.Params.ProfitTarget.Equal(def.ProfitTarget))
	assert.InDelta(t, 0.096, cfg.Strategy.LimitUpThreshold, 1e-12)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}
