package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insight-platform/go-savant-core/bbox"
	"github.com/insight-platform/go-savant-core/primitives"
)

func TestEngine_EvalExpr_ObjectFields(t *testing.T) {
	e := NewEngine(nil, nil)
	f := newEvalFrame(t)
	o := primitives.NewObject(1, "detector", "person", bbox.New(0, 0, 1, 1, nil))
	require.NoError(t, f.AddObject(o))

	ok, err := e.Eval(context.Background(), EvalExpr(`return label == "person"`), o, f)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEngine_EvalExpr_Resolver(t *testing.T) {
	resolvers := NewResolverChain(NewStaticResolver("static", map[string]string{"threshold": "0.5"}))
	e := NewEngine(nil, resolvers)
	f := newEvalFrame(t)
	o := primitives.NewObject(1, "detector", "person", bbox.New(0, 0, 1, 1, nil))
	require.NoError(t, f.AddObject(o))

	ok, err := e.Eval(context.Background(), EvalExpr(`return threshold == "0.5"`), o, f)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEngine_EvalExpr_UndefinedIdentifierErrors(t *testing.T) {
	e := NewEngine(nil, nil)
	f := newEvalFrame(t)
	o := primitives.NewObject(1, "detector", "person", bbox.New(0, 0, 1, 1, nil))
	require.NoError(t, f.AddObject(o))

	_, err := e.Eval(context.Background(), EvalExpr(`return nonexistent_identifier`), o, f)
	assert.Error(t, err)
}

func TestEngine_EvalExpr_CachesCompilation(t *testing.T) {
	e := NewEngine(nil, nil)
	f := newEvalFrame(t)
	o := primitives.NewObject(1, "detector", "person", bbox.New(0, 0, 1, 1, nil))
	require.NoError(t, f.AddObject(o))

	source := `return object_id == 1`
	_, err := e.Eval(context.Background(), EvalExpr(source), o, f)
	require.NoError(t, err)

	_, ok := e.luaCache.Load(source)
	assert.True(t, ok)

	// Second evaluation should hit the cache and still succeed.
	ok2, err := e.Eval(context.Background(), EvalExpr(source), o, f)
	require.NoError(t, err)
	assert.True(t, ok2)
}
