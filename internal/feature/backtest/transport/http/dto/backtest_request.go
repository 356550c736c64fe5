// Package dto はbacktestフィーチャーのHTTPリクエスト/レスポンスDTOを定義します。
package dto

import (
	"github.com/shopspring/decimal"

	"stock_backtest/internal/feature/backtest/domain/entity"
)

// RunRequest は POST /backtests のリクエストボディです。日付は YYYY-MM-DD です。
type RunRequest struct {
	StrategyName string         `json:"strategy_name"`
	Symbols      []string       `json:"symbols"`
	StartDate    string         `json:"start_date" binding:"required"`
	EndDate      string         `json:"end_date"`
	Params       *ParamsRequest `json:"params"`
}

// ParamsRequest は既定パラメータを部分的に上書きします。省略したフィールドは既定値のままです。
// 小数は数値・文字列どちらでも受け付けます。
type ParamsRequest struct {
	ProfitTarget   *decimal.Decimal `json:"profit_target"`
	StopLoss       *decimal.Decimal `json:"stop_loss"`
	MaxHoldDays    *int             `json:"max_hold_days"`
	LookbackDays   *int             `json:"lookback_days"`
	MaxWaitDays    *int             `json:"max_wait_days"`
	PositionPct    *decimal.Decimal `json:"position_pct"`
	CommissionRate *decimal.Decimal `json:"commission_rate"`
	InitialCapital *decimal.Decimal `json:"initial_capital"`
	LotSize        *int64           `json:"lot_size"`
}

// Apply は base に上書き値を反映した結果を返します。
func (r *ParamsRequest) Apply(base entity.Params) entity.Params {
	if r == nil {
		return base
	}
	if r.ProfitTarget != nil {
		base.ProfitTarget = *r.ProfitTarget
	}
	if r.StopLoss != nil {
		base.StopLoss = *r.StopLoss
	}
	if r.MaxHoldDays != nil {
		base.MaxHoldDays = *r.MaxHoldDays
	}
	if r.LookbackDays != nil {
		base.LookbackDays = *r.LookbackDays
	}
	if r.MaxWaitDays != nil {
		base.MaxWaitDays = *r.MaxWaitDays
	}
	if r.PositionPct != nil {
		base.PositionPct = *r.PositionPct
	}
	if r.CommissionRate != nil {
		base.CommissionRate = *r.CommissionRate
	}
	if r.InitialCapital != nil {
		base.InitialCapital = *r.InitialCapital
	}
	if r.LotSize != nil {
		base.LotSize = *r.LotSize
	}
	return base
}
