package attribute

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/insight-platform/go-savant-core/bbox"
)

// kindNames maps each Kind to its wire tag, used both for JSON/YAML
// marshaling and for the canonical JMESPath document built in package
// query (see query.canonicalizeAttributes).
var kindNames = map[Kind]string{
	KindNone:         "none",
	KindString:       "string",
	KindStringList:   "string_list",
	KindInteger:      "integer",
	KindIntegerList:  "integer_list",
	KindFloat:        "float",
	KindFloatList:    "float_list",
	KindBool:         "bool",
	KindBBox:         "bbox",
	KindBBoxList:     "bbox_list",
	KindPoint:        "point",
	KindPointList:    "point_list",
	KindBytes:        "bytes",
	KindIntersection: "intersection",
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, v := range kindNames {
		m[v] = k
	}
	return m
}()

type wireValue struct {
	Kind       string      `json:"kind"`
	Confidence *float64    `json:"confidence,omitempty"`
	Value      interface{} `json:"value,omitempty"`
	Shape      []int       `json:"shape,omitempty"`
}

// MarshalJSON serializes a Value to its canonical {"kind":...,"value":...} shape.
func (v Value) MarshalJSON() ([]byte, error) {
	w := wireValue{Kind: kindNames[v.Kind], Confidence: v.Confidence}
	switch v.Kind {
	case KindNone:
		// no payload
	case KindString:
		w.Value = v.Str
	case KindStringList:
		w.Value = v.StrList
	case KindInteger:
		w.Value = v.Int
	case KindIntegerList:
		w.Value = v.IntList
	case KindFloat:
		w.Value = v.Float
	case KindFloatList:
		w.Value = v.FloatList
	case KindBool:
		w.Value = v.Bool
	case KindBBox:
		w.Value = v.Box
	case KindBBoxList:
		w.Value = v.BoxList
	case KindPoint:
		w.Value = v.Point
	case KindPointList:
		w.Value = v.PointList
	case KindBytes:
		w.Shape = v.BytesShape
		w.Value = base64.StdEncoding.EncodeToString(v.BytesData)
	case KindIntersection:
		w.Value = v.IntersectionKind
	default:
		return nil, fmt.Errorf("attribute: unknown kind %d", v.Kind)
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses a Value from its canonical wire shape.
func (v *Value) UnmarshalJSON(data []byte) error {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	kind, ok := kindByName[w.Kind]
	if !ok {
		return fmt.Errorf("attribute: unknown kind tag %q", w.Kind)
	}

	raw, err := json.Marshal(w.Value)
	if err != nil {
		return err
	}

	out := Value{Kind: kind, Confidence: w.Confidence}
	switch kind {
	case KindNone:
	case KindString:
		err = json.Unmarshal(raw, &out.Str)
	case KindStringList:
		err = json.Unmarshal(raw, &out.StrList)
	case KindInteger:
		err = json.Unmarshal(raw, &out.Int)
	case KindIntegerList:
		err = json.Unmarshal(raw, &out.IntList)
	case KindFloat:
		err = json.Unmarshal(raw, &out.Float)
	case KindFloatList:
		err = json.Unmarshal(raw, &out.FloatList)
	case KindBool:
		err = json.Unmarshal(raw, &out.Bool)
	case KindBBox:
		var b bbox.Box
		if err = json.Unmarshal(raw, &b); err == nil {
			out.Box = b
		}
	case KindBBoxList:
		err = json.Unmarshal(raw, &out.BoxList)
	case KindPoint:
		err = json.Unmarshal(raw, &out.Point)
	case KindPointList:
		err = json.Unmarshal(raw, &out.PointList)
	case KindBytes:
		out.BytesShape = w.Shape
		var encoded string
		if err = json.Unmarshal(raw, &encoded); err == nil {
			out.BytesData, err = base64.StdEncoding.DecodeString(encoded)
		}
	case KindIntersection:
		err = json.Unmarshal(raw, &out.IntersectionKind)
	default:
		return fmt.Errorf("attribute: unknown kind %d", kind)
	}
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// ToMap renders an Attribute into a canonical map suitable for JMESPath
// evaluation or generic JSON encoding: {namespace, name, hint, hidden, values}.
func (a Attribute) ToMap() (map[string]any, error) {
	raw, err := json.Marshal(a.Values)
	if err != nil {
		return nil, err
	}
	var values []any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	m := map[string]any{
		"namespace": a.Namespace,
		"name":      a.Name,
		"hidden":    a.Hidden,
		"values":    values,
	}
	if a.Hint != nil {
		m["hint"] = *a.Hint
	}
	return m, nil
}
