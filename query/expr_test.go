package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntExpr_Eval(t *testing.T) {
	assert.True(t, IntEq(5).Eval(5))
	assert.False(t, IntEq(5).Eval(6))
	assert.True(t, IntNeq(5).Eval(6))
	assert.True(t, IntLt(5).Eval(4))
	assert.True(t, IntLe(5).Eval(5))
	assert.True(t, IntGt(5).Eval(6))
	assert.True(t, IntGe(5).Eval(5))
	assert.True(t, IntBetweenExpr(1, 10).Eval(10))
	assert.False(t, IntBetweenExpr(1, 10).Eval(11))
	assert.True(t, IntOneOfExpr(1, 2, 3).Eval(2))
	assert.False(t, IntOneOfExpr(1, 2, 3).Eval(4))
}

func TestFloatExpr_Eval_NaN(t *testing.T) {
	nan := math.NaN()
	assert.False(t, FloatEq(1).Eval(nan))
	assert.True(t, FloatNeq(1).Eval(nan))
}

func TestFloatExpr_Eval(t *testing.T) {
	assert.True(t, FloatBetweenExpr(0, 1).Eval(0.5))
	assert.True(t, FloatOneOfExpr(1.5, 2.5).Eval(2.5))
}

func TestStrExpr_Eval(t *testing.T) {
	assert.True(t, StrContainsExpr("ell").Eval("hello"))
	assert.True(t, StrNotContainsExpr("xyz").Eval("hello"))
	assert.True(t, StrStartsWithExpr("he").Eval("hello"))
	assert.True(t, StrEndsWithExpr("lo").Eval("hello"))
	assert.True(t, StrOneOfExpr("a", "b").Eval("b"))
	assert.True(t, StrEq("hello").Eval("hello"))
}
