package query

import (
	"encoding/json"
	"fmt"

	"github.com/insight-platform/go-savant-core/bbox"
)

var boxFieldTag = map[BoxField]string{
	BoxXCenter:            "xc",
	BoxYCenter:             "yc",
	BoxWidth:               "width",
	BoxHeight:              "height",
	BoxArea:                "area",
	BoxWidthToHeightRatio:  "width_to_height_ratio",
	BoxAngleDefined:        "angle.defined",
	BoxAngle:               "angle",
}

var boxFieldByTag = func() map[string]BoxField {
	out := make(map[string]BoxField, len(boxFieldTag))
	for k, v := range boxFieldTag {
		out[v] = k
	}
	return out
}()

var metricKindName = map[bbox.MetricKind]string{
	bbox.IoU:    "IoU",
	bbox.IoSelf: "IoSelf",
	bbox.IoOther: "IoOther",
}

var metricKindByName = map[string]bbox.MetricKind{
	"IoU":     bbox.IoU,
	"IoSelf":  bbox.IoSelf,
	"IoOther": bbox.IoOther,
}

type wireBoxMetric struct {
	Other         []float64 `json:"other"`
	MetricType    string    `json:"metric_type"`
	ThresholdExpr FloatExpr `json:"threshold_expr"`
}

func boxToWire(b bbox.Box) []float64 {
	out := []float64{b.XC, b.YC, b.Width, b.Height}
	if b.AngleDefined() {
		out = append(out, b.AngleDegrees())
	}
	return out
}

func boxFromWire(v []float64) (bbox.Box, error) {
	if len(v) != 4 && len(v) != 5 {
		return bbox.Box{}, fmt.Errorf("query: box wire value must have 4 or 5 elements, got %d", len(v))
	}
	var angle *float64
	if len(v) == 5 {
		a := v[4]
		angle = &a
	}
	return bbox.New(v[0], v[1], v[2], v[3], angle), nil
}

// MarshalJSON renders a Query as the discriminated-union wire form: a
// single-key object keyed by the query's tag.
func (q Query) MarshalJSON() ([]byte, error) {
	obj := map[string]any{}

	switch q.Kind {
	case KindPass:
		obj["pass"] = nil
	case KindObjectID:
		obj["object.id"] = q.Int
	case KindNamespace:
		obj["creator"] = q.Str
	case KindLabel:
		obj["label"] = q.Str
	case KindConfidenceDefined:
		obj["confidence.defined"] = nil
	case KindConfidence:
		obj["confidence"] = q.Float
	case KindTrackDefined:
		obj["track.id.defined"] = nil
	case KindTrackID:
		obj["track.id"] = q.Int
	case KindParentDefined:
		obj["parent.defined"] = nil
	case KindParentID:
		obj["parent.id"] = q.Int
	case KindParentNamespace:
		obj["parent.creator"] = q.Str
	case KindParentLabel:
		obj["parent.label"] = q.Str
	case KindAttributeDefined:
		obj["attribute.defined"] = []string{q.Namespace, q.Name}
	case KindAttributesEmpty:
		obj["attributes.empty"] = nil
	case KindAttributesJMESQuery:
		obj["attributes.jmes_query"] = q.JMESExpr
	case KindUserDefinedObjectPredicate:
		obj["user_defined_object_predicate"] = []string{q.Plugin, q.Symbol}
	case KindEvalExpr:
		obj["eval"] = q.Source
	case KindAnd:
		obj["and"] = q.Children
	case KindOr:
		obj["or"] = q.Children
	case KindNot:
		obj["not"] = q.Child
	case KindWithChildren:
		obj["with_children"] = []any{q.Child, q.Count}
	case KindBoxField:
		tag := boxTagPrefix(q.Track) + boxFieldTag[q.Field]
		if q.Field == BoxAngleDefined {
			obj[tag] = nil
		} else {
			obj[tag] = q.Float
		}
	case KindBoxMetric:
		tag := boxTagPrefix(q.Track) + "metric"
		obj[tag] = wireBoxMetric{
			Other:         boxToWire(q.Other),
			MetricType:    metricKindName[q.MetricKind],
			ThresholdExpr: q.Threshold,
		}
	default:
		return nil, fmt.Errorf("query: unknown kind %d", q.Kind)
	}

	return json.Marshal(obj)
}

func boxTagPrefix(track bool) string {
	if track {
		return "track.bbox."
	}
	return "bbox."
}

// UnmarshalJSON parses a Query from its discriminated-union wire form.
func (q *Query) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("query: query object must have exactly one tag key")
	}
	for tag, payload := range raw {
		return q.unmarshalTag(tag, payload)
	}
	return nil
}

func (q *Query) unmarshalTag(tag string, payload json.RawMessage) error {
	switch tag {
	case "pass":
		*q = Pass()
		return nil
	case "object.id":
		var e IntExpr
		if err := json.Unmarshal(payload, &e); err != nil {
			return err
		}
		*q = ObjectID(e)
		return nil
	case "creator":
		var e StrExpr
		if err := json.Unmarshal(payload, &e); err != nil {
			return err
		}
		*q = Namespace(e)
		return nil
	case "label":
		var e StrExpr
		if err := json.Unmarshal(payload, &e); err != nil {
			return err
		}
		*q = Label(e)
		return nil
	case "confidence.defined":
		*q = ConfidenceDefined()
		return nil
	case "confidence":
		var e FloatExpr
		if err := json.Unmarshal(payload, &e); err != nil {
			return err
		}
		*q = Confidence(e)
		return nil
	case "track.id.defined":
		*q = TrackDefined()
		return nil
	case "track.id":
		var e IntExpr
		if err := json.Unmarshal(payload, &e); err != nil {
			return err
		}
		*q = TrackID(e)
		return nil
	case "parent.defined":
		*q = ParentDefined()
		return nil
	case "parent.id":
		var e IntExpr
		if err := json.Unmarshal(payload, &e); err != nil {
			return err
		}
		*q = ParentID(e)
		return nil
	case "parent.creator":
		var e StrExpr
		if err := json.Unmarshal(payload, &e); err != nil {
			return err
		}
		*q = ParentNamespace(e)
		return nil
	case "parent.label":
		var e StrExpr
		if err := json.Unmarshal(payload, &e); err != nil {
			return err
		}
		*q = ParentLabel(e)
		return nil
	case "attribute.defined":
		var pair [2]string
		if err := json.Unmarshal(payload, &pair); err != nil {
			return err
		}
		*q = AttributeDefined(pair[0], pair[1])
		return nil
	case "attributes.empty":
		*q = AttributesEmpty()
		return nil
	case "attributes.jmes_query":
		var expr string
		if err := json.Unmarshal(payload, &expr); err != nil {
			return err
		}
		*q = AttributesJMESQuery(expr)
		return nil
	case "user_defined_object_predicate":
		var pair [2]string
		if err := json.Unmarshal(payload, &pair); err != nil {
			return err
		}
		*q = UserDefinedObjectPredicate(pair[0], pair[1])
		return nil
	case "eval":
		var src string
		if err := json.Unmarshal(payload, &src); err != nil {
			return err
		}
		*q = EvalExpr(src)
		return nil
	case "and":
		var children []Query
		if err := json.Unmarshal(payload, &children); err != nil {
			return err
		}
		*q = And(children...)
		return nil
	case "or":
		var children []Query
		if err := json.Unmarshal(payload, &children); err != nil {
			return err
		}
		*q = Or(children...)
		return nil
	case "not":
		var child Query
		if err := json.Unmarshal(payload, &child); err != nil {
			return err
		}
		*q = Not(child)
		return nil
	case "with_children":
		var pair [2]json.RawMessage
		if err := json.Unmarshal(payload, &pair); err != nil {
			return err
		}
		var child Query
		if err := json.Unmarshal(pair[0], &child); err != nil {
			return err
		}
		var count IntExpr
		if err := json.Unmarshal(pair[1], &count); err != nil {
			return err
		}
		*q = WithChildren(child, count)
		return nil
	default:
		return q.unmarshalBoxTag(tag, payload)
	}
}

func (q *Query) unmarshalBoxTag(tag string, payload json.RawMessage) error {
	track, rest, ok := stripBoxPrefix(tag)
	if !ok {
		return fmt.Errorf("query: unknown tag %q", tag)
	}
	if rest == "metric" {
		var wm wireBoxMetric
		if err := json.Unmarshal(payload, &wm); err != nil {
			return err
		}
		other, err := boxFromWire(wm.Other)
		if err != nil {
			return err
		}
		kind, ok := metricKindByName[wm.MetricType]
		if !ok {
			return fmt.Errorf("query: unknown metric_type %q", wm.MetricType)
		}
		if track {
			*q = TrackBoxMetric(other, kind, wm.ThresholdExpr)
		} else {
			*q = BoxMetric(other, kind, wm.ThresholdExpr)
		}
		return nil
	}
	field, ok := boxFieldByTag[rest]
	if !ok {
		return fmt.Errorf("query: unknown box field tag %q", rest)
	}
	if field == BoxAngleDefined {
		*q = Query{Kind: KindBoxField, Track: track, Field: field}
		return nil
	}
	var e FloatExpr
	if err := json.Unmarshal(payload, &e); err != nil {
		return err
	}
	if track {
		*q = TrackBoxField(field, e)
	} else {
		*q = BoxFieldQuery(field, e)
	}
	return nil
}

func stripBoxPrefix(tag string) (track bool, rest string, ok bool) {
	const trackPrefix = "track.bbox."
	const boxPrefix = "bbox."
	if len(tag) > len(trackPrefix) && tag[:len(trackPrefix)] == trackPrefix {
		return true, tag[len(trackPrefix):], true
	}
	if len(tag) > len(boxPrefix) && tag[:len(boxPrefix)] == boxPrefix {
		return false, tag[len(boxPrefix):], true
	}
	return false, "", false
}
