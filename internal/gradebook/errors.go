package gradebook

import "errors"

var (
	// ErrNoData is returned when there is nothing to aggregate. It must never be read as a score of zero.
	ErrNoData = errors.New("gradebook: no data")
	// ErrInvalidTarget is returned when a course target has non-positive planned hours.
	ErrInvalidTarget = errors.New("gradebook: planned hours must be positive")
	// ErrInvalidWeight is returned when a coefficient included in an average is not positive.
	ErrInvalidWeight = errors.New("gradebook: weight must be positive")
	// ErrInvalidScale is returned when a scale has a non-positive ceiling or unordered cutoffs.
	ErrInvalidScale = errors.New("gradebook: invalid scale")
)
