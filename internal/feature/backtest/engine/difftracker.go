package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"stock_backtest/internal/feature/backtest/domain/entity"
)

// UpdateMin returns the smaller of current and candidate by MinDiff.
// Ties keep current, so the earliest date wins.
func UpdateMin(current *entity.DiffObservation, candidate entity.DiffObservation) *entity.DiffObservation {
	if current != nil && !candidate.MinDiff.LessThan(current.MinDiff) {
		return current
	}
	return &candidate
}

// DiffTracker keeps the running minimum of low - target while a target is live.
type DiffTracker struct {
	min *entity.DiffObservation
}

// Reset forgets the current minimum. Called when a new target is created.
func (t *DiffTracker) Reset() {
	t.min = nil
}

// Update records the day's low against target and reports whether the minimum changed.
func (t *DiffTracker) Update(low, target decimal.Decimal, date time.Time, daysSinceConfirmation int) bool {
	prev := t.min
	t.min = UpdateMin(t.min, entity.DiffObservation{
		MinDiff:               low.Sub(target),
		Date:                  date,
		DaysSinceConfirmation: daysSinceConfirmation,
	})
	return t.min != prev
}

// Snapshot returns a copy of the current minimum, or nil if nothing was observed.
func (t *DiffTracker) Snapshot() *entity.DiffObservation {
	if t.min == nil {
		return nil
	}
	obs := *t.min
	return &obs
}

// calendarDays counts whole calendar days from one date to another, ignoring time of day.
func calendarDays(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
