package usecase

import (
	"github.com/shopspring/decimal"

	"stock_backtest/internal/feature/backtest/domain/entity"
)

const ratioPlaces = 6

// Summarize aggregates instrument results. Skipped instruments only count toward InstrumentsFailed.
func Summarize(results []entity.InstrumentResult) entity.Summary {
	var s entity.Summary
	drawdowns := decimal.Zero

	for _, r := range results {
		if r.Error != "" {
			s.InstrumentsFailed++
			continue
		}
		s.InstrumentsTested++
		s.TotalInitialCapital = s.TotalInitialCapital.Add(r.InitialCapital)
		s.TotalFinalValue = s.TotalFinalValue.Add(r.FinalValue)
		drawdowns = drawdowns.Add(r.MaxDrawdown)

		if len(r.Trades) > 0 {
			s.InstrumentsWithTrades++
		}
		for _, tr := range r.Trades {
			s.TotalTrades++
			if tr.Win() {
				s.WinningTrades++
			}
		}
	}

	s.LosingTrades = s.TotalTrades - s.WinningTrades
	s.TotalProfit = s.TotalFinalValue.Sub(s.TotalInitialCapital)
	if s.TotalInitialCapital.IsPositive() {
		s.TotalReturn = s.TotalProfit.DivRound(s.TotalInitialCapital, ratioPlaces)
	}
	if s.TotalTrades > 0 {
		s.WinRate = decimal.NewFromInt(int64(s.WinningTrades)).DivRound(decimal.NewFromInt(int64(s.TotalTrades)), ratioPlaces)
	}
	if s.InstrumentsTested > 0 {
		s.AverageMaxDrawdown = drawdowns.DivRound(decimal.NewFromInt(int64(s.InstrumentsTested)), ratioPlaces)
	}
	return s
}
