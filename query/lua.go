package query

import (
	"context"
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/insight-platform/go-savant-core/primitives"
)

// compileLua parses and compiles source into a reusable FunctionProto.
// Compilation is the expensive half of evaluating an EvalExpr node, so the
// Engine caches the result keyed by the source string itself.
func compileLua(source string) (*lua.FunctionProto, error) {
	chunk, err := parse.Parse(strings.NewReader(source), "<eval>")
	if err != nil {
		return nil, fmt.Errorf("query: parsing expression: %w", err)
	}
	proto, err := lua.Compile(chunk, "<eval>")
	if err != nil {
		return nil, fmt.Errorf("query: compiling expression: %w", err)
	}
	return proto, nil
}

// evalLua evaluates an EvalExpr node's source against o. Free identifiers
// are resolved, in order, from a fixed object-field binding, the Engine's
// ResolverChain, then an undefined-identifier error — never a silent
// false, matching the contract that missing identifiers are runtime
// errors.
func (e *Engine) evalLua(ctx context.Context, source string, o *primitives.Object) (bool, error) {
	proto, err := e.compiledLua(source)
	if err != nil {
		return false, err
	}

	L := lua.NewState()
	defer L.Close()

	if err := bindLuaGlobals(L, e, ctx, o); err != nil {
		return false, err
	}

	lfunc := L.NewFunctionFromProto(proto)
	L.Push(lfunc)
	if err := L.PCall(0, 1, nil); err != nil {
		return false, fmt.Errorf("query: evaluating expression: %w", err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	b, ok := ret.(lua.LBool)
	if !ok {
		return false, fmt.Errorf("query: expression must evaluate to a boolean, got %s", ret.Type().String())
	}
	return bool(b), nil
}

func (e *Engine) compiledLua(source string) (*lua.FunctionProto, error) {
	if cached, ok := e.luaCache.Load(source); ok {
		return cached.(*lua.FunctionProto), nil
	}
	proto, err := compileLua(source)
	if err != nil {
		return nil, err
	}
	e.luaCache.Store(source, proto)
	return proto, nil
}

func bindLuaGlobals(L *lua.LState, e *Engine, ctx context.Context, o *primitives.Object) error {
	known := map[string]lua.LValue{
		"object_id": lua.LNumber(o.ID),
		"namespace": lua.LString(o.Namespace),
		"label":     lua.LString(o.Label),
	}
	if o.Confidence != nil {
		known["confidence"] = lua.LNumber(*o.Confidence)
	}
	if o.TrackID != nil {
		known["track_id"] = lua.LNumber(*o.TrackID)
	}

	if e.Resolvers != nil {
		bindings, err := e.Resolvers.Resolve(ctx)
		if err != nil {
			return fmt.Errorf("query: resolving expression bindings: %w", err)
		}
		for k, v := range bindings {
			if _, exists := known[k]; !exists {
				known[k] = lua.LString(v)
			}
		}
	}

	for k, v := range known {
		L.SetGlobal(k, v)
	}

	// Missing identifiers must raise a runtime error rather than silently
	// evaluate as nil/false, so install a strict __index on the globals
	// table.
	mt := L.NewTable()
	L.SetField(mt, "__index", L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(2)
		if v, ok := known[key]; ok {
			L.Push(v)
			return 1
		}
		L.RaiseError("undefined identifier: %s", key)
		return 0
	}))
	L.SetMetatable(L.Get(lua.GlobalsIndex), mt)

	return nil
}
