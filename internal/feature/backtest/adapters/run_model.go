package adapters

import (
	"time"

	"github.com/shopspring/decimal"

	"stock_backtest/internal/feature/backtest/domain/entity"
)

// RunModel is one row of backtest_runs. Summary figures are columns so runs can be compared in SQL.
type RunModel struct {
	ID           string       `gorm:"primaryKey;size:36"`
	StrategyName string       `gorm:"size:64;not null"`
	StartDate    time.Time    `gorm:"not null"`
	EndDate      time.Time    `gorm:"not null"`
	Params       paramsRecord `gorm:"serializer:json;type:text;not null"`

	TotalInitialCapital   decimal.Decimal `gorm:"type:numeric(32,10);not null"`
	TotalFinalValue       decimal.Decimal `gorm:"type:numeric(32,10);not null"`
	TotalProfit           decimal.Decimal `gorm:"type:numeric(32,10);not null"`
	TotalReturn           decimal.Decimal `gorm:"type:numeric(32,16);not null"`
	TotalTrades           int             `gorm:"not null"`
	WinningTrades         int             `gorm:"not null"`
	LosingTrades          int             `gorm:"not null"`
	WinRate               decimal.Decimal `gorm:"type:numeric(32,16);not null"`
	AverageMaxDrawdown    decimal.Decimal `gorm:"type:numeric(32,16);not null"`
	InstrumentsTested     int             `gorm:"not null"`
	InstrumentsWithTrades int             `gorm:"not null"`
	InstrumentsFailed     int             `gorm:"not null"`

	CreatedAt   time.Time         `gorm:"not null;index"`
	Instruments []InstrumentModel `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

func (RunModel) TableName() string { return "backtest_runs" }

// InstrumentModel is one simulated symbol of a run. Seq keeps the universe order.
type InstrumentModel struct {
	ID             uint            `gorm:"primaryKey"`
	RunID          string          `gorm:"size:36;not null;index"`
	Seq            int             `gorm:"not null"`
	Symbol         string          `gorm:"size:32;not null"`
	InitialCapital decimal.Decimal `gorm:"type:numeric(32,10);not null"`
	FinalValue     decimal.Decimal `gorm:"type:numeric(32,10);not null"`
	MaxDrawdown    decimal.Decimal `gorm:"type:numeric(32,16);not null"`
	Signals        int             `gorm:"not null"`
	Error          string          `gorm:"size:512"`
	PendingTarget  *targetRecord   `gorm:"serializer:json;type:text"`
	PendingDiff    *diffRecord     `gorm:"serializer:json;type:text"`
	OpenPosition   *positionRecord `gorm:"serializer:json;type:text"`

	Trades []TradeModel  `gorm:"foreignKey:InstrumentID;constraint:OnDelete:CASCADE"`
	Equity []EquityModel `gorm:"foreignKey:InstrumentID;constraint:OnDelete:CASCADE"`
}

func (InstrumentModel) TableName() string { return "backtest_instruments" }

// TradeModel is one round trip. Diff columns are NULL when no observation was recorded.
type TradeModel struct {
	ID           uint                `gorm:"primaryKey"`
	InstrumentID uint                `gorm:"not null;index"`
	Symbol       string              `gorm:"size:32;not null"`
	BuyDate      time.Time           `gorm:"not null"`
	BuyPrice     decimal.Decimal     `gorm:"type:numeric(32,10);not null"`
	SellDate     time.Time           `gorm:"not null"`
	SellPrice    decimal.Decimal     `gorm:"type:numeric(32,10);not null"`
	Quantity     int64               `gorm:"not null"`
	HoldDays     int                 `gorm:"not null"`
	SellReason   string              `gorm:"size:16;not null"`
	GrossProfit  decimal.Decimal     `gorm:"type:numeric(32,10);not null"`
	Commission   decimal.Decimal     `gorm:"type:numeric(32,10);not null"`
	NetProfit    decimal.Decimal     `gorm:"type:numeric(32,10);not null"`
	ReturnRate   decimal.Decimal     `gorm:"type:numeric(32,16);not null"`
	DiffMin      decimal.NullDecimal `gorm:"type:numeric(32,10)"`
	DiffDate     *time.Time
	DiffDays     *int
}

func (TradeModel) TableName() string { return "backtest_trades" }

// EquityModel is one point of an instrument's equity curve.
type EquityModel struct {
	ID           uint            `gorm:"primaryKey"`
	InstrumentID uint            `gorm:"not null;index"`
	Date         time.Time       `gorm:"not null"`
	TotalValue   decimal.Decimal `gorm:"type:numeric(32,10);not null"`
}

func (EquityModel) TableName() string { return "backtest_equity" }

// Models lists the tables owned by this package, for AutoMigrate.
func Models() []any {
	return []any{&RunModel{}, &InstrumentModel{}, &TradeModel{}, &EquityModel{}}
}

type paramsRecord struct {
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

type diffRecord struct {
	MinDiff               decimal.Decimal `json:"min_diff"`
	Date                  time.Time       `json:"date"`
	DaysSinceConfirmation int             `json:"days_since_confirmation"`
}

type targetRecord struct {
	Price         decimal.Decimal `json:"price"`
	Scenario      string          `json:"scenario"`
	ConfirmedDate time.Time       `json:"confirmed_date"`
	RunStartDate  time.Time       `json:"run_start_date"`
	RunLength     int             `json:"run_length"`
	Lookback      entity.Window   `json:"lookback"`
}

type positionRecord struct {
	EntryPrice decimal.Decimal `json:"entry_price"`
	EntryDate  time.Time       `json:"entry_date"`
	Quantity   int64           `json:"quantity"`
	HoldDays   int             `json:"hold_days"`
	EntryDiff  *diffRecord     `json:"entry_diff,omitempty"`
}

func fromParams(p entity.Params) paramsRecord {
	return paramsRecord{
		ProfitTarget:   p.ProfitTarget,
		StopLoss:       p.StopLoss,
		MaxHoldDays:    p.MaxHoldDays,
		LookbackDays:   p.LookbackDays,
		MaxWaitDays:    p.MaxWaitDays,
		PositionPct:    p.PositionPct,
		CommissionRate: p.CommissionRate,
		InitialCapital: p.InitialCapital,
		LotSize:        p.LotSize,
	}
}

func (r paramsRecord) toEntity() entity.Params {
	return entity.Params{
		ProfitTarget:   r.ProfitTarget,
		StopLoss:       r.StopLoss,
		MaxHoldDays:    r.MaxHoldDays,
		LookbackDays:   r.LookbackDays,
		MaxWaitDays:    r.MaxWaitDays,
		PositionPct:    r.PositionPct,
		CommissionRate: r.CommissionRate,
		InitialCapital: r.InitialCapital,
		LotSize:        r.LotSize,
	}
}

func fromDiff(d *entity.DiffObservation) *diffRecord {
	if d == nil {
		return nil
	}
	return &diffRecord{MinDiff: d.MinDiff, Date: d.Date, DaysSinceConfirmation: d.DaysSinceConfirmation}
}

func (r *diffRecord) toEntity() *entity.DiffObservation {
	if r == nil {
		return nil
	}
	return &entity.DiffObservation{MinDiff: r.MinDiff, Date: r.Date, DaysSinceConfirmation: r.DaysSinceConfirmation}
}

func fromTarget(t *entity.BuyTarget) *targetRecord {
	if t == nil {
		return nil
	}
	return &targetRecord{
		Price:         t.Price,
		Scenario:      string(t.Scenario),
		ConfirmedDate: t.ConfirmedDate,
		RunStartDate:  t.RunStartDate,
		RunLength:     t.RunLength,
		Lookback:      t.Lookback,
	}
}

func (r *targetRecord) toEntity() *entity.BuyTarget {
	if r == nil {
		return nil
	}
	return &entity.BuyTarget{
		Price:         r.Price,
		Scenario:      entity.Scenario(r.Scenario),
		ConfirmedDate: r.ConfirmedDate,
		RunStartDate:  r.RunStartDate,
		RunLength:     r.RunLength,
		Lookback:      r.Lookback,
	}
}

func fromPosition(p *entity.Position) *positionRecord {
	if p == nil {
		return nil
	}
	return &positionRecord{
		EntryPrice: p.EntryPrice,
		EntryDate:  p.EntryDate,
		Quantity:   p.Quantity,
		HoldDays:   p.HoldDays,
		EntryDiff:  fromDiff(p.EntryDiff),
	}
}

func (r *positionRecord) toEntity() *entity.Position {
	if r == nil {
		return nil
	}
	return &entity.Position{
		EntryPrice: r.EntryPrice,
		EntryDate:  r.EntryDate,
		Quantity:   r.Quantity,
		HoldDays:   r.HoldDays,
		EntryDiff:  r.EntryDiff.toEntity(),
	}
}

func toTradeModel(instrumentID uint, t entity.TradeRecord) TradeModel {
	m := TradeModel{
		InstrumentID: instrumentID,
		Symbol:       t.Symbol,
		BuyDate:      t.BuyDate,
		BuyPrice:     t.BuyPrice,
		SellDate:     t.SellDate,
		SellPrice:    t.SellPrice,
		Quantity:     t.Quantity,
		HoldDays:     t.HoldDays,
		SellReason:   string(t.SellReason),
		GrossProfit:  t.GrossProfit,
		Commission:   t.Commission,
		NetProfit:    t.NetProfit,
		ReturnRate:   t.ReturnRate,
	}
	if d := t.Diff; d != nil {
		date, days := d.Date, d.DaysSinceConfirmation
		m.DiffMin = decimal.NewNullDecimal(d.MinDiff)
		m.DiffDate = &date
		m.DiffDays = &days
	}
	return m
}

func (m TradeModel) toEntity() entity.TradeRecord {
	t := entity.TradeRecord{
		Symbol:      m.Symbol,
		BuyDate:     m.BuyDate,
		BuyPrice:    m.BuyPrice,
		SellDate:    m.SellDate,
		SellPrice:   m.SellPrice,
		Quantity:    m.Quantity,
		HoldDays:    m.HoldDays,
		SellReason:  entity.SellReason(m.SellReason),
		GrossProfit: m.GrossProfit,
		Commission:  m.Commission,
		NetProfit:   m.NetProfit,
		ReturnRate:  m.ReturnRate,
	}
	if m.DiffMin.Valid && m.DiffDate != nil && m.DiffDays != nil {
		t.Diff = &entity.DiffObservation{MinDiff: m.DiffMin.Decimal, Date: *m.DiffDate, DaysSinceConfirmation: *m.DiffDays}
	}
	return t
}

func toRunModel(run *entity.Run) RunModel {
	s := run.Summary
	return RunModel{
		ID:                    run.ID,
		StrategyName:          run.StrategyName,
		StartDate:             run.StartDate,
		EndDate:               run.EndDate,
		Params:                fromParams(run.Params),
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
		CreatedAt:             run.CreatedAt,
	}
}

func toInstrumentModel(runID string, seq int, r entity.InstrumentResult) InstrumentModel {
	return InstrumentModel{
		RunID:          runID,
		Seq:            seq,
		Symbol:         r.Symbol,
		InitialCapital: r.InitialCapital,
		FinalValue:     r.FinalValue,
		MaxDrawdown:    r.MaxDrawdown,
		Signals:        r.Signals,
		Error:          r.Error,
		PendingTarget:  fromTarget(r.PendingTarget),
		PendingDiff:    fromDiff(r.PendingDiff),
		OpenPosition:   fromPosition(r.OpenPosition),
	}
}

func (m RunModel) toEntity() *entity.Run {
	run := &entity.Run{
		ID:           m.ID,
		StrategyName: m.StrategyName,
		StartDate:    m.StartDate,
		EndDate:      m.EndDate,
		Params:       m.Params.toEntity(),
		Summary: entity.Summary{
			TotalInitialCapital:   m.TotalInitialCapital,
			TotalFinalValue:       m.TotalFinalValue,
			TotalProfit:           m.TotalProfit,
			TotalReturn:           m.TotalReturn,
			TotalTrades:           m.TotalTrades,
			WinningTrades:         m.WinningTrades,
			LosingTrades:          m.LosingTrades,
			WinRate:               m.WinRate,
			AverageMaxDrawdown:    m.AverageMaxDrawdown,
			InstrumentsTested:     m.InstrumentsTested,
			InstrumentsWithTrades: m.InstrumentsWithTrades,
			InstrumentsFailed:     m.InstrumentsFailed,
		},
		CreatedAt: m.CreatedAt,
	}
	for _, im := range m.Instruments {
		ir := entity.InstrumentResult{
			Symbol:         im.Symbol,
			InitialCapital: im.InitialCapital,
			FinalValue:     im.FinalValue,
			MaxDrawdown:    im.MaxDrawdown,
			Signals:        im.Signals,
			Error:          im.Error,
			PendingTarget:  im.PendingTarget.toEntity(),
			PendingDiff:    im.PendingDiff.toEntity(),
			OpenPosition:   im.OpenPosition.toEntity(),
		}
		for _, tm := range im.Trades {
			ir.Trades = append(ir.Trades, tm.toEntity())
		}
		for _, em := range im.Equity {
			ir.Equity = append(ir.Equity, entity.EquitySample{Date: em.Date, TotalValue: em.TotalValue})
		}
		run.Instruments = append(run.Instruments, ir)
	}
	return run
}
