package engine

import (
	"time"

	"stock_backtest/internal/feature/backtest/domain/entity"
)

const (
	// MinPatternBars is the shortest history Detect will evaluate.
	MinPatternBars = 5
	// MinLimitUpRun is the minimum number of consecutive limit-up days.
	MinLimitUpRun = 2
)

// PatternMatch describes a confirmed pullback after a limit-up run.
type PatternMatch struct {
	// Today is the index of the confirmation bar.
	Today         int
	ConfirmedDate time.Time
	// RunEnd is the last limit-up bar of the run, always Today-2.
	RunEnd int
	// RunStart (t0) is the earliest bar of the run.
	RunStart int
}

// RunLength returns the number of consecutive limit-up days in the run.
func (m PatternMatch) RunLength() int {
	return m.RunEnd - m.RunStart + 1
}

// Detect checks whether bars[today] confirms the pattern:
//
//   - bars[today] and bars[today-1] are both bearish
//   - bars[today-1] closed below bars[today-2]
//   - bars[today-2] ends a run of at least MinLimitUpRun limit-up days
//
// Only bars at or before today are read.
func Detect(bars []entity.Bar, today int) (PatternMatch, bool) {
	if today < MinPatternBars-1 || today >= len(bars) {
		return PatternMatch{}, false
	}

	d0, d1, d2 := bars[today], bars[today-1], bars[today-2]
	if !d0.Bearish() || !d1.Bearish() {
		return PatternMatch{}, false
	}
	if !d1.Close.LessThan(d2.Close) {
		return PatternMatch{}, false
	}

	runEnd := today - 2
	runStart := FindRunStart(bars, runEnd)
	if runStart < 0 || runEnd-runStart+1 < MinLimitUpRun {
		return PatternMatch{}, false
	}

	return PatternMatch{
		Today:         today,
		ConfirmedDate: d0.Date,
		RunEnd:        runEnd,
		RunStart:      runStart,
	}, true
}

// FindRunStart walks backward from runEnd while bars are limit-up and returns
// the index of the earliest bar in that run. It returns -1 when bars[runEnd]
// is not limit-up.
func FindRunStart(bars []entity.Bar, runEnd int) int {
	if runEnd < 0 || runEnd >= len(bars) {
		return -1
	}
	start := -1
	for i := runEnd; i >= 0 && bars[i].LimitUp; i-- {
		start = i
	}
	return start
}
