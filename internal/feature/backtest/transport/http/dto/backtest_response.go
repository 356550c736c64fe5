package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"stock_backtest/internal/feature/backtest/domain/entity"
)

const dateLayout = "2006-01-02"

// ErrorResponse はエラー時のレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// RunResponse は1回のバックテスト結果です。一覧では Instruments を省略します。
type RunResponse struct {
	ID           string               `json:"id"`
	StrategyName string               `json:"strategy_name"`
	StartDate    string               `json:"start_date"`
	EndDate      string               `json:"end_date"`
	Params       ParamsResponse       `json:"params"`
	Summary      SummaryResponse      `json:"summary"`
	Instruments  []InstrumentResponse `json:"instruments,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

// ParamsResponse は実行時の戦略パラメータです。
type ParamsResponse struct {
	ProfitTarget   decimal.Decimal `json:"profit_target"`
	StopLoss       decimal.Decimal `json:"stop_loss"`
	MaxHoldDays    int             `json:"max_hold_days"`
	LookbackDays   int             `json:"lookback_days"`
	MaxWaitDays    int             `json:"max_wait_days"`
	PositionPct    decimal.Decimal `json:"position_pct"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	InitialCapital decimal.Decimal `json:"initial_capital"`
	LotSize        int64           `json:"lot_size"`
}

// SummaryResponse は全銘柄の集計です。
type SummaryResponse struct {
	TotalInitialCapital   decimal.Decimal `json:"total_initial_capital"`
	TotalFinalValue       decimal.Decimal `json:"total_final_value"`
	TotalProfit           decimal.Decimal `json:"total_profit"`
	TotalReturn           decimal.Decimal `json:"total_return"`
	TotalTrades           int             `json:"total_trades"`
	WinningTrades         int             `json:"winning_trades"`
	LosingTrades          int             `json:"losing_trades"`
	WinRate               decimal.Decimal `json:"win_rate"`
	AverageMaxDrawdown    decimal.Decimal `json:"average_max_drawdown"`
	InstrumentsTested     int             `json:"instruments_tested"`
	InstrumentsWithTrades int             `json:"instruments_with_trades"`
	InstrumentsFailed     int             `json:"instruments_failed"`
}

// InstrumentResponse は銘柄ごとの結果です。
type InstrumentResponse struct {
	Symbol         string            `json:"symbol"`
	InitialCapital decimal.Decimal   `json:"initial_capital"`
	FinalValue     decimal.Decimal   `json:"final_value"`
	MaxDrawdown    decimal.Decimal   `json:"max_drawdown"`
	Signals        int               `json:"signals"`
	Trades         []TradeResponse   `json:"trades"`
	Equity         []EquityPoint     `json:"equity"`
	PendingTarget  *TargetResponse   `json:"pending_target,omitempty"`
	PendingDiff    *DiffResponse     `json:"pending_diff,omitempty"`
	OpenPosition   *PositionResponse `json:"open_position,omitempty"`
	Error          string            `json:"error,omitempty"`
}

// TradeResponse は1回の売買です。
type TradeResponse struct {
	BuyDate     string          `json:"buy_date"`
	BuyPrice    decimal.Decimal `json:"buy_price"`
	SellDate    string          `json:"sell_date"`
	SellPrice   decimal.Decimal `json:"sell_price"`
	Quantity    int64           `json:"quantity"`
	HoldDays    int             `json:"hold_days"`
	SellReason  string          `json:"sell_reason"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
	Commission  decimal.Decimal `json:"commission"`
	NetProfit   decimal.Decimal `json:"net_profit"`
	ReturnRate  decimal.Decimal `json:"return_rate"`
	Diff        *DiffResponse   `json:"diff,omitempty"`
}

// EquityPoint は資産推移の1点です。
type EquityPoint struct {
	Date       string          `json:"date"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// DiffResponse は安値と買い目標の最小差です。
type DiffResponse struct {
	MinDiff               decimal.Decimal `json:"min_diff"`
	Date                  string          `json:"date"`
	DaysSinceConfirmation int             `json:"days_since_confirmation"`
}

// TargetResponse は未約定の買い目標です。
type TargetResponse struct {
	Price         decimal.Decimal `json:"price"`
	Scenario      string          `json:"scenario"`
	ConfirmedDate string          `json:"confirmed_date"`
	RunStartDate  string          `json:"run_start_date"`
	RunLength     int             `json:"run_length"`
}

// PositionResponse は期末に保有中のポジションです。
type PositionResponse struct {
	EntryPrice decimal.Decimal `json:"entry_price"`
	EntryDate  string          `json:"entry_date"`
	Quantity   int64           `json:"quantity"`
	HoldDays   int             `json:"hold_days"`
}

// NewRunResponse は entity.Run をレスポンスに変換します。withInstruments が false なら銘柄別結果を省きます。
func NewRunResponse(run *entity.Run, withInstruments bool) RunResponse {
	p, s := run.Params, run.Summary
	out := RunResponse{
		ID:           run.ID,
		StrategyName: run.StrategyName,
		StartDate:    run.StartDate.Format(dateLayout),
		EndDate:      run.EndDate.Format(dateLayout),
		Params: ParamsResponse{
			ProfitTarget:   p.ProfitTarget,
			StopLoss:       p.StopLoss,
			MaxHoldDays:    p.MaxHoldDays,
			LookbackDays:   p.LookbackDays,
			MaxWaitDays:    p.MaxWaitDays,
			PositionPct:    p.PositionPct,
			CommissionRate: p.CommissionRate,
			InitialCapital: p.InitialCapital,
			LotSize:        p.LotSize,
		},
		Summary: SummaryResponse{
			TotalInitialCapital:   s.TotalInitialCapital,
			TotalFinalValue:       s.TotalFinalValue,
			TotalProfit:           s.TotalProfit,
			TotalReturn:           s.TotalReturn,
			TotalTrades:           s.TotalTrades,
			WinningTrades:         s.WinningTrades,
			LosingTrades:          s.LosingTrades,
			WinRate:               s.WinRate,
			AverageMaxDrawdown:    s.AverageMaxDrawdown,
			InstrumentsTested:     s.InstrumentsTested,
			InstrumentsWithTrades: s.InstrumentsWithTrades,
			InstrumentsFailed:     s.InstrumentsFailed,
		},
		CreatedAt: run.CreatedAt,
	}
	if !withInstruments {
		return out
	}
	out.Instruments = make([]InstrumentResponse, 0, len(run.Instruments))
	for _, ir := range run.Instruments {
		out.Instruments = append(out.Instruments, newInstrumentResponse(ir))
	}
	return out
}

func newInstrumentResponse(ir entity.InstrumentResult) InstrumentResponse {
	out := InstrumentResponse{
		Symbol:         ir.Symbol,
		InitialCapital: ir.InitialCapital,
		FinalValue:     ir.FinalValue,
		MaxDrawdown:    ir.MaxDrawdown,
		Signals:        ir.Signals,
		Trades:         make([]TradeResponse, 0, len(ir.Trades)),
		Equity:         make([]EquityPoint, 0, len(ir.Equity)),
		PendingDiff:    newDiffResponse(ir.PendingDiff),
		Error:          ir.Error,
	}
	for _, t := range ir.Trades {
		out.Trades = append(out.Trades, TradeResponse{
			BuyDate:     t.BuyDate.Format(dateLayout),
			BuyPrice:    t.BuyPrice,
			SellDate:    t.SellDate.Format(dateLayout),
			SellPrice:   t.SellPrice,
			Quantity:    t.Quantity,
			HoldDays:    t.HoldDays,
			SellReason:  string(t.SellReason),
			GrossProfit: t.GrossProfit,
			Commission:  t.Commission,
			NetProfit:   t.NetProfit,
			ReturnRate:  t.ReturnRate,
			Diff:        newDiffResponse(t.Diff),
		})
	}
	for _, e := range ir.Equity {
		out.Equity = append(out.Equity, EquityPoint{Date: e.Date.Format(dateLayout), TotalValue: e.TotalValue})
	}
	if t := ir.PendingTarget; t != nil {
		out.PendingTarget = &TargetResponse{
			Price:         t.Price,
			Scenario:      string(t.Scenario),
			ConfirmedDate: t.ConfirmedDate.Format(dateLayout),
			RunStartDate:  t.RunStartDate.Format(dateLayout),
			RunLength:     t.RunLength,
		}
	}
	if p := ir.OpenPosition; p != nil {
		out.OpenPosition = &PositionResponse{
			EntryPrice: p.EntryPrice,
			EntryDate:  p.EntryDate.Format(dateLayout),
			Quantity:   p.Quantity,
			HoldDays:   p.HoldDays,
		}
	}
	return out
}

func newDiffResponse(d *entity.DiffObservation) *DiffResponse {
	if d == nil {
		return nil
	}
	return &DiffResponse{
		MinDiff:               d.MinDiff,
		Date:                  d.Date.Format(dateLayout),
		DaysSinceConfirmation: d.DaysSinceConfirmation,
	}
}
