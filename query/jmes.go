package query

import (
	"sync"

	"github.com/jmespath/go-jmespath"
)

var jmesCache sync.Map // string -> *jmespath.JMESPath

func compileJMES(expr string) (*jmespath.JMESPath, error) {
	if cached, ok := jmesCache.Load(expr); ok {
		return cached.(*jmespath.JMESPath), nil
	}
	compiled, err := jmespath.Compile(expr)
	if err != nil {
		return nil, err
	}
	jmesCache.Store(expr, compiled)
	return compiled, nil
}

// runJMES evaluates expr against data and applies the AttributesJMESQuery
// truthiness rule: the result counts as "true" unless it is nil, an empty
// slice, an empty map, or literal false.
func runJMES(expr string, data any) (bool, error) {
	compiled, err := compileJMES(expr)
	if err != nil {
		return false, err
	}
	result, err := compiled.Search(data)
	if err != nil {
		return false, err
	}
	return isJMESTruthy(result), nil
}

func isJMESTruthy(result any) bool {
	switch v := result.(type) {
	case nil:
		return false
	case bool:
		return v
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}
