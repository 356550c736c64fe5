// Package domain defines domain-level errors for the backtest feature.
package domain

import "errors"

var (
	// ErrInvalidParams indicates a strategy parameter set that cannot be simulated.
	// It is raised before any instrument is simulated.
	ErrInvalidParams = errors.New("invalid backtest parameters")

	// ErrNoBars indicates that no daily bars were available for an instrument.
	ErrNoBars = errors.New("no bars available")

	// ErrRunNotFound is returned when a stored backtest run cannot be found by ID.
	ErrRunNotFound = errors.New("backtest run not found")
)
