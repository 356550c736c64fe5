package usecase

import "stock_backtest/internal/feature/candles/domain/entity"

// DefaultLimitUpThreshold sits just under the nominal 10% daily limit to absorb price rounding.
const DefaultLimitUpThreshold = 0.096

// MarkLimitUp sets LimitUp on an ascending series:
//
//	(close[t] - close[t-1]) / close[t-1] > threshold
//
// prevClose is the close just before candles[0]; pass 0 when it is unknown,
// in which case the first candle is never limit-up.
func MarkLimitUp(candles []entity.Candle, prevClose, threshold float64) {
	prev := prevClose
	for i := range candles {
		c := &candles[i]
		c.LimitUp = prev > 0 && (c.Close-prev)/prev > threshold
		prev = c.Close
	}
}
