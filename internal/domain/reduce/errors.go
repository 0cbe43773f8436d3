package reduce

import "errors"

// Sentinel kinds for reduction errors. These allow errors.Is/As from callers.
var (
	ErrEmptySeries     = errors.New("empty series")
	ErrEmptyWindow     = errors.New("no samples in window")
	ErrInvalidWindow   = errors.New("invalid time window")
	ErrInvalidFraction = errors.New("exclude fraction must be in [0,1)")
	ErrUnknownMode     = errors.New("unknown reduction mode")
)
