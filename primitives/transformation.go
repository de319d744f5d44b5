package primitives

// TransformationKind discriminates a Transformation variant.
type TransformationKind int

const (
	TransformInitialSize TransformationKind = iota
	TransformResultingSize
	TransformScale
	TransformPadding
)

// Transformation records one step of a frame's processing history, per
// savant/src/primitives/message/video/pipeline.rs in original_source/ (the
// spec.md data model names the variant set but never an accessor API; this
// is the natural one, grounded on the Rust struct's own accessors).
type Transformation struct {
	Kind TransformationKind

	// InitialSize / ResultingSize
	Width, Height int

	// Scale
	ScaleX, ScaleY float64

	// Padding
	Left, Top, Right, Bottom int
}

// InitialSize records the frame's size as originally received.
func InitialSize(width, height int) Transformation {
	return Transformation{Kind: TransformInitialSize, Width: width, Height: height}
}

// ResultingSize records the frame's size after a resize operation.
func ResultingSize(width, height int) Transformation {
	return Transformation{Kind: TransformResultingSize, Width: width, Height: height}
}

// Scale records a non-uniform scale factor applied to the frame.
func Scale(x, y float64) Transformation {
	return Transformation{Kind: TransformScale, ScaleX: x, ScaleY: y}
}

// Padding records pixel padding added around the frame.
func Padding(left, top, right, bottom int) Transformation {
	return Transformation{Kind: TransformPadding, Left: left, Top: top, Right: right, Bottom: bottom}
}
