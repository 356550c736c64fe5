package engine

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"stock_backtest/internal/feature/backtest/domain/entity"
)

// State is the controller state of one instrument.
type State int

const (
	StateSearching State = iota
	StatePending
	StateHolding
)

func (s State) String() string {
	switch s {
	case StateSearching:
		return "SEARCHING"
	case StatePending:
		return "PENDING"
	case StateHolding:
		return "HOLDING"
	default:
		return "UNKNOWN"
	}
}

// EventKind identifies what happened on a bar.
type EventKind int

const (
	EventTargetSet EventKind = iota + 1
	EventTargetAbandoned
	EventBuy
	EventBuySkipped
	EventSell
)

func (k EventKind) String() string {
	switch k {
	case EventTargetSet:
		return "target_set"
	case EventTargetAbandoned:
		return "target_abandoned"
	case EventBuy:
		return "buy"
	case EventBuySkipped:
		return "buy_skipped"
	case EventSell:
		return "sell"
	default:
		return "unknown"
	}
}

// Event is the outcome of a single Advance call. Only the field matching Kind is set.
type Event struct {
	Kind     EventKind
	Date     time.Time
	Target   *entity.BuyTarget
	Position *entity.Position
	Trade    *entity.TradeRecord
}

// Machine drives one instrument through SEARCHING, PENDING and HOLDING.
// It is not safe for concurrent use; each instrument owns its own Machine.
type Machine struct {
	symbol string
	params entity.Params
	diag   Diagnostics

	bars     []entity.Bar
	state    State
	target   *entity.BuyTarget
	position *entity.Position
	diff     DiffTracker
	cash     decimal.Decimal

	trades  []entity.TradeRecord
	equity  EquityRecorder
	signals int
}

// NewMachine returns a machine in SEARCHING holding params.InitialCapital in cash.
func NewMachine(symbol string, params entity.Params, diag Diagnostics) *Machine {
	if diag == nil {
		diag = NopDiagnostics{}
	}
	return &Machine{
		symbol: symbol,
		params: params,
		diag:   diag,
		state:  StateSearching,
		cash:   params.InitialCapital,
	}
}

// Warm appends bar to the history without evaluating it.
// Warm-up bars feed pattern and lookback checks but produce no events or equity samples.
func (m *Machine) Warm(bar entity.Bar) bool {
	return m.push(bar)
}

// Advance evaluates bar as the next trading day and records an equity sample.
// The returned event is valid only when ok is true.
func (m *Machine) Advance(bar entity.Bar) (ev Event, ok bool) {
	if !m.push(bar) {
		return Event{}, false
	}
	today := len(m.bars) - 1

	switch m.state {
	case StateHolding:
		ev, ok = m.evaluateExit(bar)
	case StatePending:
		ev, ok = m.evaluateTarget(bar)
	default:
		ev, ok = m.search(today)
	}

	m.equity.Record(bar.Date, m.TotalValue(bar.Close))
	return ev, ok
}

func (m *Machine) push(bar entity.Bar) bool {
	if n := len(m.bars); n > 0 && !bar.Date.After(m.bars[n-1].Date) {
		m.diag.Log(slog.LevelWarn, "bar out of order, skipped",
			"symbol", m.symbol, "date", bar.Date.Format(time.DateOnly),
			"previous", m.bars[n-1].Date.Format(time.DateOnly))
		return false
	}
	m.bars = append(m.bars, bar)
	return true
}

func (m *Machine) evaluateExit(bar entity.Bar) (Event, bool) {
	pos := m.position
	pos.HoldDays++

	profitRate := decimal.Zero
	if pos.EntryPrice.IsPositive() {
		profitRate = bar.Close.Sub(pos.EntryPrice).Div(pos.EntryPrice)
	}

	var reason entity.SellReason
	switch {
	case profitRate.LessThanOrEqual(m.params.StopLoss.Neg()):
		reason = entity.SellReasonStopLoss
	case profitRate.GreaterThanOrEqual(m.params.ProfitTarget):
		reason = entity.SellReasonTakeProfit
	case pos.HoldDays >= m.params.MaxHoldDays:
		reason = entity.SellReasonTimeout
	default:
		return Event{}, false
	}

	trade := Settle(m.symbol, *pos, bar.Close, bar.Date, reason, m.params.CommissionRate, m.diag)
	m.cash = m.cash.Add(sellProceeds(bar.Close, pos.Quantity, m.params.CommissionRate))
	m.trades = append(m.trades, trade)
	m.position = nil
	m.state = StateSearching

	m.diag.Log(slog.LevelInfo, "sell",
		"symbol", m.symbol, "date", bar.Date.Format(time.DateOnly), "reason", string(reason),
		"price", bar.Close.String(), "quantity", trade.Quantity, "hold_days", trade.HoldDays,
		"net_profit", trade.NetProfit.StringFixed(2))
	return Event{Kind: EventSell, Date: bar.Date, Trade: &trade}, true
}

func (m *Machine) evaluateTarget(bar entity.Bar) (Event, bool) {
	target := m.target
	wait := calendarDays(target.ConfirmedDate, bar.Date)

	if wait > m.params.MaxWaitDays {
		m.target = nil
		m.state = StateSearching
		m.diag.Log(slog.LevelInfo, "buy target abandoned",
			"symbol", m.symbol, "date", bar.Date.Format(time.DateOnly),
			"target", target.Price.String(), "wait_days", wait)
		return Event{Kind: EventTargetAbandoned, Date: bar.Date, Target: target}, true
	}

	if bar.Low.GreaterThan(target.Price) {
		if m.diff.Update(bar.Low, target.Price, bar.Date, wait) {
			m.diag.Log(slog.LevelDebug, "closest approach to target",
				"symbol", m.symbol, "date", bar.Date.Format(time.DateOnly),
				"diff", bar.Low.Sub(target.Price).String(), "wait_days", wait)
		}
		return Event{}, false
	}

	fill := target.Price
	if bar.Open.LessThan(target.Price) {
		fill = bar.Open
	}
	m.diff.Update(bar.Low, target.Price, bar.Date, wait)
	m.target = nil

	qty := SizePosition(m.cash, m.params.PositionPct, fill, m.params.LotSize)
	qty = affordable(qty, m.cash, fill, m.params.CommissionRate, m.params.LotSize)
	if qty <= 0 {
		m.state = StateSearching
		m.diag.Log(slog.LevelError, "insufficient capital, buy skipped",
			"symbol", m.symbol, "date", bar.Date.Format(time.DateOnly),
			"price", fill.String(), "cash", m.cash.StringFixed(2))
		return Event{Kind: EventBuySkipped, Date: bar.Date, Target: target}, true
	}

	m.cash = m.cash.Sub(buyCost(fill, qty, m.params.CommissionRate))
	m.position = &entity.Position{
		EntryPrice: fill,
		EntryDate:  bar.Date,
		Quantity:   qty,
		EntryDiff:  m.diff.Snapshot(),
	}
	m.state = StateHolding

	m.diag.Log(slog.LevelInfo, "buy",
		"symbol", m.symbol, "date", bar.Date.Format(time.DateOnly), "scenario", string(target.Scenario),
		"target", target.Price.String(), "price", fill.String(), "quantity", qty)
	pos := *m.position
	return Event{Kind: EventBuy, Date: bar.Date, Target: target, Position: &pos}, true
}

func (m *Machine) search(today int) (Event, bool) {
	match, ok := Detect(m.bars, today)
	if !ok {
		return Event{}, false
	}
	price, ok := ComputeBuyPrice(m.bars, match.RunStart, m.params.LookbackDays)
	if !ok {
		m.diag.Log(slog.LevelDebug, "pattern found but lookback exceeds history",
			"symbol", m.symbol, "date", match.ConfirmedDate.Format(time.DateOnly),
			"run_start", m.bars[match.RunStart].Date.Format(time.DateOnly))
		return Event{}, false
	}

	m.target = &entity.BuyTarget{
		Price:         price.Price,
		Scenario:      price.Scenario,
		ConfirmedDate: match.ConfirmedDate,
		RunStartDate:  m.bars[match.RunStart].Date,
		RunLength:     match.RunLength(),
		Lookback:      price.Window,
	}
	m.diff.Reset()
	m.state = StatePending
	m.signals++

	m.diag.Log(slog.LevelInfo, "buy target set",
		"symbol", m.symbol, "date", match.ConfirmedDate.Format(time.DateOnly),
		"scenario", string(price.Scenario), "target", price.Price.String(), "run_length", match.RunLength())
	target := *m.target
	return Event{Kind: EventTargetSet, Date: match.ConfirmedDate, Target: &target}, true
}

// TotalValue is cash plus the open position marked at price.
func (m *Machine) TotalValue(price decimal.Decimal) decimal.Decimal {
	if m.position == nil {
		return m.cash
	}
	return m.cash.Add(price.Mul(decimal.NewFromInt(m.position.Quantity)))
}

// State returns the current controller state.
func (m *Machine) State() State { return m.state }

// Cash returns uninvested cash.
func (m *Machine) Cash() decimal.Decimal { return m.cash }

// Target returns a copy of the live buy target, or nil.
func (m *Machine) Target() *entity.BuyTarget {
	if m.target == nil {
		return nil
	}
	t := *m.target
	return &t
}

// Position returns a copy of the open position, or nil.
func (m *Machine) Position() *entity.Position {
	if m.position == nil {
		return nil
	}
	p := *m.position
	return &p
}

// PendingDiff returns the diff observation of the live target, or nil when no target is pending.
func (m *Machine) PendingDiff() *entity.DiffObservation {
	if m.state != StatePending {
		return nil
	}
	return m.diff.Snapshot()
}

// Trades returns completed round trips in order.
func (m *Machine) Trades() []entity.TradeRecord {
	out := make([]entity.TradeRecord, len(m.trades))
	copy(out, m.trades)
	return out
}

// Equity returns the equity curve.
func (m *Machine) Equity() []entity.EquitySample { return m.equity.Samples() }

// Signals returns how many buy targets were created.
func (m *Machine) Signals() int { return m.signals }
