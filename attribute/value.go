// Package attribute implements the namespaced, typed attribute model
// carried on video frames and objects (persistent vs. temporary scope is a
// caller concern expressed by which Attribute.Namespace is used, not by a
// field on Value itself).
package attribute

import "github.com/insight-platform/go-savant-core/bbox"

// Kind discriminates the tagged variant carried by a Value. Exhaustive
// switches over Kind are the Go analogue of matching a Rust enum — this
// mirrors the same tagged-struct shape used by the teacher's
// types.ContentPart/MediaContent for "exactly one of these fields is set".
type Kind int

const (
	KindNone Kind = iota
	KindString
	KindStringList
	KindInteger
	KindIntegerList
	KindFloat
	KindFloatList
	KindBool
	KindBBox
	KindBBoxList
	KindPoint
	KindPointList
	KindBytes
	KindIntersection
)

// IntersectionKind names the geometry relation captured by an Intersection
// value (e.g. "the result of a BoxMetric evaluation attached for later
// inspection").
type IntersectionKind int

const (
	IntersectionNone IntersectionKind = iota
	IntersectionIoU
	IntersectionIoSelf
	IntersectionIoOther
)

// Value is a single tagged attribute value with an optional confidence.
type Value struct {
	Kind       Kind
	Confidence *float64

	Str      string
	StrList  []string
	Int      int64
	IntList  []int64
	Float    float64
	FloatList []float64
	Bool     bool
	Box      bbox.Box
	BoxList  []bbox.Box
	Point    bbox.Point
	PointList []bbox.Point

	// Bytes carries raw tensor-like data with its shape (e.g. an embedding).
	BytesShape []int
	BytesData  []byte

	IntersectionKind IntersectionKind
}

func withConfidence(v Value, confidence *float64) Value {
	v.Confidence = confidence
	return v
}

// NewString creates a KindString value.
func NewString(s string, confidence *float64) Value {
	return withConfidence(Value{Kind: KindString, Str: s}, confidence)
}

// NewStringList creates a KindStringList value.
func NewStringList(ss []string, confidence *float64) Value {
	return withConfidence(Value{Kind: KindStringList, StrList: ss}, confidence)
}

// NewInteger creates a KindInteger value.
func NewInteger(i int64, confidence *float64) Value {
	return withConfidence(Value{Kind: KindInteger, Int: i}, confidence)
}

// NewIntegerList creates a KindIntegerList value.
func NewIntegerList(is []int64, confidence *float64) Value {
	return withConfidence(Value{Kind: KindIntegerList, IntList: is}, confidence)
}

// NewFloat creates a KindFloat value.
func NewFloat(f float64, confidence *float64) Value {
	return withConfidence(Value{Kind: KindFloat, Float: f}, confidence)
}

// NewFloatList creates a KindFloatList value.
func NewFloatList(fs []float64, confidence *float64) Value {
	return withConfidence(Value{Kind: KindFloatList, FloatList: fs}, confidence)
}

// NewBool creates a KindBool value.
func NewBool(b bool, confidence *float64) Value {
	return withConfidence(Value{Kind: KindBool, Bool: b}, confidence)
}

// NewBBox creates a KindBBox value.
func NewBBox(b bbox.Box, confidence *float64) Value {
	return withConfidence(Value{Kind: KindBBox, Box: b}, confidence)
}

// NewBBoxList creates a KindBBoxList value.
func NewBBoxList(bs []bbox.Box, confidence *float64) Value {
	return withConfidence(Value{Kind: KindBBoxList, BoxList: bs}, confidence)
}

// NewPoint creates a KindPoint value.
func NewPoint(p bbox.Point, confidence *float64) Value {
	return withConfidence(Value{Kind: KindPoint, Point: p}, confidence)
}

// NewPointList creates a KindPointList value.
func NewPointList(ps []bbox.Point, confidence *float64) Value {
	return withConfidence(Value{Kind: KindPointList, PointList: ps}, confidence)
}

// NewBytes creates a KindBytes value carrying a shape and raw payload.
func NewBytes(shape []int, data []byte, confidence *float64) Value {
	return withConfidence(Value{Kind: KindBytes, BytesShape: shape, BytesData: data}, confidence)
}

// NewIntersection creates a KindIntersection value, e.g. to record the
// result of a geometry metric evaluation for downstream inspection.
func NewIntersection(kind IntersectionKind, confidence *float64) Value {
	return withConfidence(Value{Kind: KindIntersection, IntersectionKind: kind}, confidence)
}

// Key identifies an Attribute by (namespace, name) within its owner.
type Key struct {
	Namespace string
	Name      string
}

// Attribute is a namespaced, named, ordered sequence of Values.
type Attribute struct {
	Namespace string  `json:"namespace" yaml:"namespace"`
	Name      string  `json:"name" yaml:"name"`
	Hint      *string `json:"hint,omitempty" yaml:"hint,omitempty"`
	Hidden    bool    `json:"hidden" yaml:"hidden"`
	Values    []Value `json:"-" yaml:"-"`
}

// Key returns the Attribute's identity.
func (a Attribute) Key() Key {
	return Key{Namespace: a.Namespace, Name: a.Name}
}

// New creates an Attribute with the given values.
func New(namespace, name string, hint *string, hidden bool, values ...Value) Attribute {
	return Attribute{Namespace: namespace, Name: name, Hint: hint, Hidden: hidden, Values: values}
}
