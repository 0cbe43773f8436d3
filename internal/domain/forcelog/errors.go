package forcelog

import "errors"

// Sentinel kinds for parse errors. These allow errors.Is/As from callers.
var (
	ErrNotFound       = errors.New("force log not found")
	ErrEmptySeries    = errors.New("empty series")
	ErrSchemaMismatch = errors.New("column count does not match schema")
)
