package main

import (
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"stock_backtest/internal/feature/backtest/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// writeReport prints one row per instrument and the run summary with grouped thousands.
func writeReport(w io.Writer, run *entity.Run, showTrades bool) error {
	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	p.Fprintf(w, "run %s  %s  %s .. %s\n\n", run.ID, run.StrategyName,
		run.StartDate.Format(time.DateOnly), run.EndDate.Format(time.DateOnly))

	p.Fprintf(tw, "symbol\ttrades\twins\tsignals\tfinal value\treturn\tmax dd\tnote\t\n")
	for _, r := range run.Instruments {
		wins := 0
		for _, t := range r.Trades {
			if t.Win() {
				wins++
			}
		}
		p.Fprintf(tw, "%s\t%d\t%d\t%d\t%.2f\t%s\t%s\t%s\t\n",
			r.Symbol, len(r.Trades), wins, r.Signals, r.FinalValue.InexactFloat64(),
			percent(rate(r.FinalValue.Sub(r.InitialCapital), r.InitialCapital)), percent(r.MaxDrawdown), note(r))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := run.Summary
	p.Fprintf(w, "\ninstruments  %d tested, %d with trades, %d failed\n", s.InstrumentsTested, s.InstrumentsWithTrades, s.InstrumentsFailed)
	p.Fprintf(w, "capital      %.2f -> %.2f (profit %.2f, return %s)\n",
		s.TotalInitialCapital.InexactFloat64(), s.TotalFinalValue.InexactFloat64(), s.TotalProfit.InexactFloat64(), percent(s.TotalReturn))
	p.Fprintf(w, "trades       %d (%d won, %d lost, win rate %s)\n", s.TotalTrades, s.WinningTrades, s.LosingTrades, percent(s.WinRate))
	p.Fprintf(w, "avg max dd   %s\n", percent(s.AverageMaxDrawdown))

	if showTrades {
		writeTrades(w, p, run)
	}
	return nil
}

func writeTrades(w io.Writer, p *message.Printer, run *entity.Run) {
	p.Fprintf(w, "\n")
	for _, r := range run.Instruments {
		for _, t := range r.Trades {
			p.Fprintf(w, "%s  %s %.2f -> %s %.2f  x%d  %s  held %d  net %.2f\n",
				t.Symbol, t.BuyDate.Format(time.DateOnly), t.BuyPrice.InexactFloat64(),
				t.SellDate.Format(time.DateOnly), t.SellPrice.InexactFloat64(),
				t.Quantity, t.SellReason, t.HoldDays, t.NetProfit.InexactFloat64())
		}
	}
}

func note(r entity.InstrumentResult) string {
	switch {
	case r.Error != "":
		return "skipped: " + r.Error
	case r.OpenPosition != nil:
		return "open position"
	case r.PendingTarget != nil:
		return "pending target " + r.PendingTarget.Price.StringFixed(2)
	default:
		return "-"
	}
}

func rate(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}

func percent(d decimal.Decimal) string {
	return d.Mul(hundred).StringFixed(2) + "%"
}
