package query

import "github.com/insight-platform/go-savant-core/bbox"

// Kind discriminates a Query node, mirroring the tagged-union approach
// attribute.Value uses for its wire representation: one Kind field plus a
// set of sparse payload fields, rather than an interface hierarchy.
type Kind int

const (
	KindObjectID Kind = iota
	KindNamespace
	KindLabel
	KindConfidenceDefined
	KindConfidence
	KindTrackDefined
	KindTrackID
	KindBoxField
	KindBoxMetric
	KindParentDefined
	KindParentID
	KindParentNamespace
	KindParentLabel
	KindWithChildren
	KindAttributeDefined
	KindAttributesEmpty
	KindAttributesJMESQuery
	KindPass
	KindUserDefinedObjectPredicate
	KindEvalExpr
	KindAnd
	KindOr
	KindNot
)

var kindNames = [...]string{
	"object_id", "namespace", "label", "confidence_defined", "confidence",
	"track_defined", "track_id", "box_field", "box_metric", "parent_defined",
	"parent_id", "parent_namespace", "parent_label", "with_children",
	"attribute_defined", "attributes_empty", "attributes_jmes_query", "pass",
	"user_defined_object_predicate", "eval_expr", "and", "or", "not",
}

// String returns the kind's metrics/logging label, e.g. "box_metric".
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// BoxField selects which scalar of a bounding box a KindBoxField node reads.
type BoxField int

const (
	BoxXCenter BoxField = iota
	BoxYCenter
	BoxWidth
	BoxHeight
	BoxArea
	BoxWidthToHeightRatio
	BoxAngleDefined
	BoxAngle
)

// Query is a node in the match-query predicate tree. Exactly one payload
// group is populated, selected by Kind; see ast.go's per-Kind accessors in
// New* constructors for the canonical way to build one.
type Query struct {
	Kind Kind

	Int   IntExpr
	Float FloatExpr
	Str   StrExpr

	// KindBoxField / KindBoxMetric: Track selects the object's track box
	// (true) versus its detection box (false).
	Track      bool
	Field      BoxField
	Other      bbox.Box
	MetricKind bbox.MetricKind
	Threshold  FloatExpr

	// KindAttributeDefined
	Namespace string
	Name      string

	// KindAttributesJMESQuery
	JMESExpr string

	// KindUserDefinedObjectPredicate
	Plugin string
	Symbol string

	// KindEvalExpr
	Source string

	// KindWithChildren
	Child *Query
	Count IntExpr

	// KindAnd / KindOr
	Children []Query

	// KindNot reuses Child above.
}

func ObjectID(e IntExpr) Query    { return Query{Kind: KindObjectID, Int: e} }
func Namespace(e StrExpr) Query   { return Query{Kind: KindNamespace, Str: e} }
func Label(e StrExpr) Query       { return Query{Kind: KindLabel, Str: e} }
func ConfidenceDefined() Query    { return Query{Kind: KindConfidenceDefined} }
func Confidence(e FloatExpr) Query { return Query{Kind: KindConfidence, Float: e} }
func TrackDefined() Query         { return Query{Kind: KindTrackDefined} }
func TrackID(e IntExpr) Query     { return Query{Kind: KindTrackID, Int: e} }

func TrackBoxField(field BoxField, e FloatExpr) Query {
	return Query{Kind: KindBoxField, Track: true, Field: field, Float: e}
}

func BoxFieldQuery(field BoxField, e FloatExpr) Query {
	return Query{Kind: KindBoxField, Track: false, Field: field, Float: e}
}

func TrackBoxMetric(other bbox.Box, kind bbox.MetricKind, threshold FloatExpr) Query {
	return Query{Kind: KindBoxMetric, Track: true, Other: other, MetricKind: kind, Threshold: threshold}
}

func BoxMetric(other bbox.Box, kind bbox.MetricKind, threshold FloatExpr) Query {
	return Query{Kind: KindBoxMetric, Track: false, Other: other, MetricKind: kind, Threshold: threshold}
}

func ParentDefined() Query        { return Query{Kind: KindParentDefined} }
func ParentID(e IntExpr) Query    { return Query{Kind: KindParentID, Int: e} }
func ParentNamespace(e StrExpr) Query { return Query{Kind: KindParentNamespace, Str: e} }
func ParentLabel(e StrExpr) Query { return Query{Kind: KindParentLabel, Str: e} }

func WithChildren(child Query, count IntExpr) Query {
	return Query{Kind: KindWithChildren, Child: &child, Count: count}
}

func AttributeDefined(namespace, name string) Query {
	return Query{Kind: KindAttributeDefined, Namespace: namespace, Name: name}
}

func AttributesEmpty() Query { return Query{Kind: KindAttributesEmpty} }

func AttributesJMESQuery(expr string) Query {
	return Query{Kind: KindAttributesJMESQuery, JMESExpr: expr}
}

func Pass() Query { return Query{Kind: KindPass} }

func UserDefinedObjectPredicate(plugin, symbol string) Query {
	return Query{Kind: KindUserDefinedObjectPredicate, Plugin: plugin, Symbol: symbol}
}

func EvalExpr(source string) Query { return Query{Kind: KindEvalExpr, Source: source} }

func And(children ...Query) Query { return Query{Kind: KindAnd, Children: children} }
func Or(children ...Query) Query  { return Query{Kind: KindOr, Children: children} }
func Not(child Query) Query       { return Query{Kind: KindNot, Child: &child} }
