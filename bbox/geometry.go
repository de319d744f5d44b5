package bbox

import "math"

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NewPoint creates a Point.
func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

// PolygonalArea is an ordered sequence of vertices with an optional parallel
// sequence of tags. When tags are present they must have the same length as
// Vertices (see Validate).
type PolygonalArea struct {
	Vertices []Point   `json:"vertices" yaml:"vertices"`
	Tags     []*string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// NewPolygonalArea creates a PolygonalArea from vertices and optional tags.
func NewPolygonalArea(vertices []Point, tags []*string) *PolygonalArea {
	return &PolygonalArea{Vertices: vertices, Tags: tags}
}

// Validate checks the tag-length invariant from the original protobuf
// serialization round trip: a present tag sequence must parallel Vertices.
func (p *PolygonalArea) Validate() error {
	if p.Tags != nil && len(p.Tags) != len(p.Vertices) {
		return ErrTagLengthMismatch
	}
	return nil
}

// shoelaceArea returns the unsigned area of a simple polygon via the
// shoelace formula.
func shoelaceArea(pts []Point) float64 {
	n := len(pts)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(sum) / 2
}

// polygonClip clips the subject convex polygon against the convex clip
// polygon using Sutherland-Hodgman, returning the intersection polygon
// (possibly empty). Both inputs must be given in a consistent winding order.
func polygonClip(subject, clip []Point) []Point {
	output := subject
	clipLen := len(clip)
	for i := 0; i < clipLen && len(output) > 0; i++ {
		a := clip[i]
		b := clip[(i+1)%clipLen]
		input := output
		output = nil
		n := len(input)
		for j := 0; j < n; j++ {
			cur := input[j]
			prev := input[(j-1+n)%n]
			curInside := isInside(a, b, cur)
			prevInside := isInside(a, b, prev)
			if curInside {
				if !prevInside {
					output = append(output, lineIntersect(prev, cur, a, b))
				}
				output = append(output, cur)
			} else if prevInside {
				output = append(output, lineIntersect(prev, cur, a, b))
			}
		}
	}
	return output
}

func isInside(a, b, p Point) bool {
	return (b.X-a.X)*(p.Y-a.Y)-(b.Y-a.Y)*(p.X-a.X) >= 0
}

func lineIntersect(p1, p2, a, b Point) Point {
	a1 := p2.Y - p1.Y
	b1 := p1.X - p2.X
	c1 := a1*p1.X + b1*p1.Y

	a2 := b.Y - a.Y
	b2 := a.X - b.X
	c2 := a2*a.X + b2*a.Y

	det := a1*b2 - a2*b1
	if det == 0 {
		return p2
	}
	return Point{
		X: (b2*c1 - b1*c2) / det,
		Y: (a1*c2 - a2*c1) / det,
	}
}

// ensureCCW returns pts reordered counter-clockwise, required by polygonClip's
// half-plane test.
func ensureCCW(pts []Point) []Point {
	if shoelaceSigned(pts) < 0 {
		rev := make([]Point, len(pts))
		for i, p := range pts {
			rev[len(pts)-1-i] = p
		}
		return rev
	}
	return pts
}

func shoelaceSigned(pts []Point) float64 {
	n := len(pts)
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return sum
}
