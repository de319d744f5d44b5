package primitives

import "errors"

// Sentinel errors for frame/object invariant violations.
var (
	// ErrDuplicateObjectID is returned when adding an object whose id already
	// exists in the frame.
	ErrDuplicateObjectID = errors.New("primitives: object id already exists in frame")

	// ErrParentNotFound is returned when an object's parent_id does not
	// reference an existing object in the same frame.
	ErrParentNotFound = errors.New("primitives: parent object not found in frame")

	// ErrCyclicParent is returned when setting a parent link would create a
	// cycle in the object graph.
	ErrCyclicParent = errors.New("primitives: cyclic object parentage")

	// ErrTrackBoxMismatch is returned when TrackID is set without a Track
	// box, or vice versa.
	ErrTrackBoxMismatch = errors.New("primitives: track_id and track_box must both be set or both be absent")

	// ErrObjectNotFound is returned when looking up an object id that does
	// not exist in the frame.
	ErrObjectNotFound = errors.New("primitives: object not found in frame")

	// ErrFrameGone is returned when resolving a borrowed ObjectHandle whose
	// owning frame has already been destroyed.
	ErrFrameGone = errors.New("primitives: owning frame no longer exists")

	// ErrInvalidDimensions is returned when constructing a frame with
	// non-positive width or height.
	ErrInvalidDimensions = errors.New("primitives: frame width and height must be positive")
)
