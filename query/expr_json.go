package query

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON renders the comparator as a single-key object keyed by its
// operator tag, e.g. {"eq":5}, {"between":[1,10]}, {"one_of":[1,2,3]}.
func (e IntExpr) MarshalJSON() ([]byte, error) {
	switch e.Op {
	case IntEQ:
		return json.Marshal(map[string]int64{"eq": e.Value})
	case IntNE:
		return json.Marshal(map[string]int64{"ne": e.Value})
	case IntLT:
		return json.Marshal(map[string]int64{"lt": e.Value})
	case IntLE:
		return json.Marshal(map[string]int64{"le": e.Value})
	case IntGT:
		return json.Marshal(map[string]int64{"gt": e.Value})
	case IntGE:
		return json.Marshal(map[string]int64{"ge": e.Value})
	case IntBetween:
		return json.Marshal(map[string][2]int64{"between": {e.Lo, e.Hi}})
	case IntOneOf:
		return json.Marshal(map[string][]int64{"one_of": e.OneOf})
	default:
		return nil, fmt.Errorf("query: unknown IntOp %d", e.Op)
	}
}

func (e *IntExpr) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("query: int expression must have exactly one operator key")
	}
	for tag, payload := range raw {
		switch tag {
		case "eq":
			*e = IntExpr{Op: IntEQ}
		case "ne":
			*e = IntExpr{Op: IntNE}
		case "lt":
			*e = IntExpr{Op: IntLT}
		case "le":
			*e = IntExpr{Op: IntLE}
		case "gt":
			*e = IntExpr{Op: IntGT}
		case "ge":
			*e = IntExpr{Op: IntGE}
		case "between":
			var pair [2]int64
			if err := json.Unmarshal(payload, &pair); err != nil {
				return err
			}
			*e = IntExpr{Op: IntBetween, Lo: pair[0], Hi: pair[1]}
			return nil
		case "one_of":
			var vs []int64
			if err := json.Unmarshal(payload, &vs); err != nil {
				return err
			}
			*e = IntExpr{Op: IntOneOf, OneOf: vs}
			return nil
		default:
			return fmt.Errorf("query: unknown int operator tag %q", tag)
		}
		return json.Unmarshal(payload, &e.Value)
	}
	return nil
}

func (e FloatExpr) MarshalJSON() ([]byte, error) {
	switch e.Op {
	case FloatEQ:
		return json.Marshal(map[string]float64{"eq": e.Value})
	case FloatNE:
		return json.Marshal(map[string]float64{"ne": e.Value})
	case FloatLT:
		return json.Marshal(map[string]float64{"lt": e.Value})
	case FloatLE:
		return json.Marshal(map[string]float64{"le": e.Value})
	case FloatGT:
		return json.Marshal(map[string]float64{"gt": e.Value})
	case FloatGE:
		return json.Marshal(map[string]float64{"ge": e.Value})
	case FloatBetween:
		return json.Marshal(map[string][2]float64{"between": {e.Lo, e.Hi}})
	case FloatOneOf:
		return json.Marshal(map[string][]float64{"one_of": e.OneOf})
	default:
		return nil, fmt.Errorf("query: unknown FloatOp %d", e.Op)
	}
}

func (e *FloatExpr) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("query: float expression must have exactly one operator key")
	}
	for tag, payload := range raw {
		switch tag {
		case "eq":
			*e = FloatExpr{Op: FloatEQ}
		case "ne":
			*e = FloatExpr{Op: FloatNE}
		case "lt":
			*e = FloatExpr{Op: FloatLT}
		case "le":
			*e = FloatExpr{Op: FloatLE}
		case "gt":
			*e = FloatExpr{Op: FloatGT}
		case "ge":
			*e = FloatExpr{Op: FloatGE}
		case "between":
			var pair [2]float64
			if err := json.Unmarshal(payload, &pair); err != nil {
				return err
			}
			*e = FloatExpr{Op: FloatBetween, Lo: pair[0], Hi: pair[1]}
			return nil
		case "one_of":
			var vs []float64
			if err := json.Unmarshal(payload, &vs); err != nil {
				return err
			}
			*e = FloatExpr{Op: FloatOneOf, OneOf: vs}
			return nil
		default:
			return fmt.Errorf("query: unknown float operator tag %q", tag)
		}
		return json.Unmarshal(payload, &e.Value)
	}
	return nil
}

func (e StrExpr) MarshalJSON() ([]byte, error) {
	switch e.Op {
	case StrEQ:
		return json.Marshal(map[string]string{"eq": e.Value})
	case StrNE:
		return json.Marshal(map[string]string{"ne": e.Value})
	case StrContains:
		return json.Marshal(map[string]string{"contains": e.Value})
	case StrNotContains:
		return json.Marshal(map[string]string{"not_contains": e.Value})
	case StrStartsWith:
		return json.Marshal(map[string]string{"starts_with": e.Value})
	case StrEndsWith:
		return json.Marshal(map[string]string{"ends_with": e.Value})
	case StrOneOf:
		return json.Marshal(map[string][]string{"one_of": e.OneOf})
	default:
		return nil, fmt.Errorf("query: unknown StrOp %d", e.Op)
	}
}

func (e *StrExpr) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("query: string expression must have exactly one operator key")
	}
	for tag, payload := range raw {
		switch tag {
		case "eq":
			*e = StrExpr{Op: StrEQ}
		case "ne":
			*e = StrExpr{Op: StrNE}
		case "contains":
			*e = StrExpr{Op: StrContains}
		case "not_contains":
			*e = StrExpr{Op: StrNotContains}
		case "starts_with":
			*e = StrExpr{Op: StrStartsWith}
		case "ends_with":
			*e = StrExpr{Op: StrEndsWith}
		case "one_of":
			var vs []string
			if err := json.Unmarshal(payload, &vs); err != nil {
				return err
			}
			*e = StrExpr{Op: StrOneOf, OneOf: vs}
			return nil
		default:
			return fmt.Errorf("query: unknown string operator tag %q", tag)
		}
		return json.Unmarshal(payload, &e.Value)
	}
	return nil
}
