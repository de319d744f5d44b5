package query

import "strings"

// Eval evaluates the comparator against operand.
func (e StrExpr) Eval(operand string) bool {
	switch e.Op {
	case StrEQ:
		return operand == e.Value
	case StrNE:
		return operand != e.Value
	case StrContains:
		return strings.Contains(operand, e.Value)
	case StrNotContains:
		return !strings.Contains(operand, e.Value)
	case StrStartsWith:
		return strings.HasPrefix(operand, e.Value)
	case StrEndsWith:
		return strings.HasSuffix(operand, e.Value)
	case StrOneOf:
		for _, v := range e.OneOf {
			if operand == v {
				return true
			}
		}
		return false
	default:
		return false
	}
}
