// Package bbox implements the oriented bounding box and polygon geometry
// primitives used throughout the match query engine: area, aspect ratio,
// and the IoU/IoSelf/IoOther overlap metrics between two (possibly rotated)
// rectangles.
//
// There is no third-party oriented-rectangle geometry library among the
// example pack's dependencies, so this package is built on stdlib math —
// see DESIGN.md for the grounding note.
package bbox

import "math"

// MetricKind selects which overlap ratio BoxMetric computes.
type MetricKind int

const (
	// IoU is the intersection-over-union ratio |A∩B| / |A∪B|.
	IoU MetricKind = iota
	// IoSelf is the intersection-over-self ratio |A∩B| / |A|.
	IoSelf
	// IoOther is the intersection-over-other ratio |A∩B| / |B|.
	IoOther
)

// Box is an oriented rectangle: center (XC, YC), dimensions, and an optional
// rotation in degrees measured counter-clockwise about the center.
type Box struct {
	XC     float64  `json:"xc" yaml:"xc"`
	YC     float64  `json:"yc" yaml:"yc"`
	Width  float64  `json:"width" yaml:"width"`
	Height float64  `json:"height" yaml:"height"`
	Angle  *float64 `json:"angle,omitempty" yaml:"angle,omitempty"`
}

// New creates a Box. Callers that deserialize a Box should call Validate
// explicitly rather than relying on construction to reject bad input,
// matching how the teacher's config types are validated post-unmarshal.
func New(xc, yc, width, height float64, angle *float64) Box {
	return Box{XC: xc, YC: yc, Width: width, Height: height, Angle: angle}
}

// Validate enforces the width/height ≥ 0 invariant.
func (b Box) Validate() error {
	if b.Width < 0 || b.Height < 0 {
		return ErrNegativeDimension
	}
	return nil
}

// Area returns width * height.
func (b Box) Area() float64 {
	return b.Width * b.Height
}

// WidthToHeightRatio returns Width / Height. When Height is zero this is
// +Inf (or -Inf/NaN for degenerate negative/zero-width inputs), matching the
// original implementation's plain IEEE-754 division rather than trapping or
// special-casing to an error (see SPEC_FULL.md Design Notes, Open Question).
func (b Box) WidthToHeightRatio() float64 {
	return b.Width / b.Height
}

// AngleDefined reports whether the box carries an explicit rotation.
func (b Box) AngleDefined() bool {
	return b.Angle != nil
}

// AngleDegrees returns the rotation in degrees, or 0 if undefined.
func (b Box) AngleDegrees() float64 {
	if b.Angle == nil {
		return 0
	}
	return *b.Angle
}

// Corners returns the box's four corners in counter-clockwise order.
func (b Box) Corners() []Point {
	hw, hh := b.Width/2, b.Height/2
	local := []Point{
		{X: -hw, Y: -hh},
		{X: hw, Y: -hh},
		{X: hw, Y: hh},
		{X: -hw, Y: hh},
	}
	if !b.AngleDefined() || b.AngleDegrees() == 0 {
		out := make([]Point, 4)
		for i, p := range local {
			out[i] = Point{X: p.X + b.XC, Y: p.Y + b.YC}
		}
		return ensureCCW(out)
	}
	rad := b.AngleDegrees() * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	out := make([]Point, 4)
	for i, p := range local {
		out[i] = Point{
			X: p.X*cos-p.Y*sin + b.XC,
			Y: p.X*sin+p.Y*cos + b.YC,
		}
	}
	return ensureCCW(out)
}

// intersectionArea returns the area shared by a and b, treating each as an
// oriented rectangle clipped against the other via Sutherland-Hodgman.
func intersectionArea(a, b Box) float64 {
	if a.Width <= 0 || a.Height <= 0 || b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	inter := polygonClip(a.Corners(), b.Corners())
	if len(inter) < 3 {
		return 0
	}
	return shoelaceArea(inter)
}

// Metric computes the IoU/IoSelf/IoOther ratio between a and b. Per
// spec.md §4.2, an undefined ratio (zero-area or disjoint boxes) yields 0.0
// rather than NaN, so that threshold comparisons downstream behave
// predictably instead of always failing via NaN propagation.
func Metric(a, b Box, kind MetricKind) float64 {
	inter := intersectionArea(a, b)
	if inter <= 0 {
		return 0
	}
	switch kind {
	case IoSelf:
		if a.Area() <= 0 {
			return 0
		}
		return inter / a.Area()
	case IoOther:
		if b.Area() <= 0 {
			return 0
		}
		return inter / b.Area()
	default: // IoU
		union := a.Area() + b.Area() - inter
		if union <= 0 {
			return 0
		}
		return inter / union
	}
}
