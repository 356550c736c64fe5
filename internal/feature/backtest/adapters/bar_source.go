// Package adapters はbacktestフィーチャーの永続化とデータ取得の実装を提供します。
package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"stock_backtest/internal/feature/backtest/domain/entity"
	"stock_backtest/internal/feature/backtest/usecase"
	candleentity "stock_backtest/internal/feature/candles/domain/entity"
)

const dailyInterval = "1day"

// CandleReader is the read side of the candles repository (or its cache).
type CandleReader interface {
	FindRange(ctx context.Context, symbol, interval string, from, to time.Time) ([]candleentity.Candle, error)
}

type candleBarSource struct {
	candles CandleReader
}

var _ usecase.BarRepository = (*candleBarSource)(nil)

// NewCandleBarSource adapts stored daily candles to engine bars.
func NewCandleBarSource(candles CandleReader) *candleBarSource {
	return &candleBarSource{candles: candles}
}

// LoadBars returns daily bars of symbol in [from, to], oldest first.
// Prices are converted from float64 using their shortest decimal representation.
func (s *candleBarSource) LoadBars(ctx context.Context, symbol string, from, to time.Time) ([]entity.Bar, error) {
	candles, err := s.candles.FindRange(ctx, symbol, dailyInterval, from, to)
	if err != nil {
		return nil, fmt.Errorf("load candles %s: %w", symbol, err)
	}
	bars := make([]entity.Bar, 0, len(candles))
	for _, c := range candles {
		bars = append(bars, ToBar(c))
	}
	return bars, nil
}

// ToBar converts one candle.
func ToBar(c candleentity.Candle) entity.Bar {
	return entity.Bar{
		Date:    c.Time,
		Open:    decimal.NewFromFloat(c.Open),
		High:    decimal.NewFromFloat(c.High),
		Low:     decimal.NewFromFloat(c.Low),
		Close:   decimal.NewFromFloat(c.Close),
		Volume:  c.Volume,
		LimitUp: c.LimitUp,
	}
}
