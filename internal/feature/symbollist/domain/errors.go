// Package domain holds symbollist errors shared by usecase and transport.
package domain

import "errors"

// ErrInvalidSymbol is returned for codes that are not of the form 600000.SH / 000001.SZ.
var ErrInvalidSymbol = errors.New("invalid symbol code")
