package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"stock_backtest/internal/feature/backtest/domain/entity"
)

// EquityRecorder appends one sample per evaluated bar.
type EquityRecorder struct {
	samples []entity.EquitySample
}

// Record appends the total value at date.
func (r *EquityRecorder) Record(date time.Time, total decimal.Decimal) {
	r.samples = append(r.samples, entity.EquitySample{Date: date, TotalValue: total})
}

// Samples returns the recorded curve in chronological order.
func (r *EquityRecorder) Samples() []entity.EquitySample {
	out := make([]entity.EquitySample, len(r.samples))
	copy(out, r.samples)
	return out
}

// MaxDrawdown returns the largest peak-to-trough decline as a fraction of the peak.
func MaxDrawdown(samples []entity.EquitySample) decimal.Decimal {
	maxDD := decimal.Zero
	peak := decimal.Zero
	for _, s := range samples {
		if s.TotalValue.GreaterThan(peak) {
			peak = s.TotalValue
			continue
		}
		if !peak.IsPositive() {
			continue
		}
		dd := peak.Sub(s.TotalValue).Div(peak)
		if dd.GreaterThan(maxDD) {
			maxDD = dd
		}
	}
	return maxDD
}
