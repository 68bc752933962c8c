package search

import "errors"

// ErrComputation is returned for invalid numeric input to similarity
// scoring. Degenerate vectors never silently score 0.
var ErrComputation = errors.New("similarity computation failed")
