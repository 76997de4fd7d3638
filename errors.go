package chanvese

import "errors"

// ErrInvalidArguments is returned (wrapped) when Segment is called with a
// nil buffer, non-positive dimensions, or a non-positive channel count.
var ErrInvalidArguments = errors.New("chanvese: invalid arguments")

// ErrDimensionMismatch is returned (wrapped) when Φ and f do not describe
// compatible spatial dimensions.
var ErrDimensionMismatch = errors.New("chanvese: dimension mismatch")
