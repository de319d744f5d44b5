package bbox

import "errors"

// Sentinel errors for bounding box and polygon validation.
var (
	// ErrNegativeDimension is returned when a box width or height is negative.
	ErrNegativeDimension = errors.New("bbox: width and height must be non-negative")

	// ErrTagLengthMismatch is returned when a polygon's tag sequence length
	// does not match its vertex sequence length.
	ErrTagLengthMismatch = errors.New("bbox: tag sequence length must match vertex sequence length")
)
