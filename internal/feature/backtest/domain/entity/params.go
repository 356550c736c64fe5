package entity

import (
	"fmt"

	"github.com/shopspring/decimal"

	"stock_backtest/internal/feature/backtest/domain"
)

// Params are the strategy parameters shared by every instrument of a run.
type Params struct {
	ProfitTarget   decimal.Decimal
	StopLoss       decimal.Decimal
	MaxHoldDays    int
	LookbackDays   int
	MaxWaitDays    int
	PositionPct    decimal.Decimal
	CommissionRate decimal.Decimal
	InitialCapital decimal.Decimal
	LotSize        int64
}

// DefaultParams returns the stock parameter set of the limit-up pullback strategy.
func DefaultParams() Params {
	return Params{
		ProfitTarget:   decimal.RequireFromString("0.10"),
		StopLoss:       decimal.RequireFromString("0.05"),
		MaxHoldDays:    30,
		LookbackDays:   20,
		MaxWaitDays:    100,
		PositionPct:    decimal.RequireFromString("0.02"),
		CommissionRate: decimal.RequireFromString("0.0003"),
		InitialCapital: decimal.NewFromInt(1_000_000),
		LotSize:        1,
	}
}

// Validate checks every parameter and wraps domain.ErrInvalidParams on the first violation.
func (p Params) Validate() error {
	one := decimal.NewFromInt(1)
	switch {
	case !p.ProfitTarget.IsPositive():
		return fmt.Errorf("%w: profit_target must be > 0, got %s", domain.ErrInvalidParams, p.ProfitTarget)
	case !p.StopLoss.IsPositive():
		return fmt.Errorf("%w: stop_loss must be > 0, got %s", domain.ErrInvalidParams, p.StopLoss)
	case p.MaxHoldDays <= 0:
		return fmt.Errorf("%w: max_hold_days must be > 0, got %d", domain.ErrInvalidParams, p.MaxHoldDays)
	case p.LookbackDays < 1:
		return fmt.Errorf("%w: lookback_days must be >= 1, got %d", domain.ErrInvalidParams, p.LookbackDays)
	case p.MaxWaitDays < 0:
		return fmt.Errorf("%w: max_wait_days must be >= 0, got %d", domain.ErrInvalidParams, p.MaxWaitDays)
	case !p.PositionPct.IsPositive() || p.PositionPct.GreaterThan(one):
		return fmt.Errorf("%w: position_pct must be in (0, 1], got %s", domain.ErrInvalidParams, p.PositionPct)
	case p.CommissionRate.IsNegative() || p.CommissionRate.GreaterThanOrEqual(one):
		return fmt.Errorf("%w: commission_rate must be in [0, 1), got %s", domain.ErrInvalidParams, p.CommissionRate)
	case !p.InitialCapital.IsPositive():
		return fmt.Errorf("%w: initial_capital must be > 0, got %s", domain.ErrInvalidParams, p.InitialCapital)
	case p.LotSize < 1:
		return fmt.Errorf("%w: lot_size must be >= 1, got %d", domain.ErrInvalidParams, p.LotSize)
	}
	return nil
}
