package exprs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scedel-lang/scedel-go/internal/dsl"
	"github.com/scedel-lang/scedel-go/internal/scope"
)

func fixedEnv() Env {
	return Env{Clock: func() time.Time {
		return time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	}}
}

func TestEvaluateLiterals(t *testing.T) {
	env := fixedEnv()
	sc := scope.New(nil)

	assert.Equal(t, ok("hi"), env.Evaluate(dsl.StrLit{Value: "hi"}, sc))
	assert.Equal(t, ok(3.0), env.Evaluate(dsl.NumLit{Value: 3.0}, sc))
	assert.Equal(t, ok(Duration(5000)), env.Evaluate(dsl.DurationLit{Millis: 5000}, sc))
	assert.Equal(t, ok(true), env.Evaluate(dsl.BoolLit{Value: true}, sc))
	assert.Equal(t, ok(nil), env.Evaluate(dsl.NullLit{}, sc))
	assert.Equal(t, ok([]any{}), env.Evaluate(dsl.EmptyArray{}, sc))
}

func TestEvalPathThis(t *testing.T) {
	env := fixedEnv()
	sc := scope.New(map[string]any{"name": "ada"})

	res := env.Evaluate(dsl.Path{RootKind: dsl.ThisRoot, Segments: []string{"name"}}, sc)
	require.True(t, res.OK)
	assert.Equal(t, "ada", res.Value)
}

func TestEvalPathParentUndefined(t *testing.T) {
	env := fixedEnv()
	sc := scope.New(map[string]any{})

	res := env.Evaluate(dsl.Path{RootKind: dsl.ParentRoot}, sc)
	assert.False(t, res.OK)
	assert.Equal(t, CodeParentUndefined, res.Code)
}

func TestEvalPathParentPresent(t *testing.T) {
	env := fixedEnv()
	root := map[string]any{"status": "Rejected"}
	sc := scope.New(root).Child(map[string]any{})

	res := env.Evaluate(dsl.Path{RootKind: dsl.ParentRoot, Segments: []string{"status"}}, sc)
	require.True(t, res.OK)
	assert.Equal(t, "Rejected", res.Value)
}

func TestEvalPathRoot(t *testing.T) {
	env := fixedEnv()
	root := map[string]any{"id": "x"}
	sc := scope.New(root).Child(map[string]any{})

	res := env.Evaluate(dsl.Path{RootKind: dsl.RootRoot, Segments: []string{"id"}}, sc)
	require.True(t, res.OK)
	assert.Equal(t, "x", res.Value)
}

func TestEvalPathMissingSegmentYieldsNull(t *testing.T) {
	env := fixedEnv()
	sc := scope.New(map[string]any{"name": "ada"})

	res := env.Evaluate(dsl.Path{RootKind: dsl.ThisRoot, Segments: []string{"missing"}}, sc)
	require.True(t, res.OK)
	assert.Nil(t, res.Value)
}

func TestEvalPathVariableWithOrWithoutDollar(t *testing.T) {
	env := fixedEnv()
	sc := scope.New(nil).WithVariables(map[string]any{"limit": 10.0})

	res := env.Evaluate(dsl.Path{RootKind: dsl.VariableRoot, RootName: "$limit"}, sc)
	require.True(t, res.OK)
	assert.Equal(t, 10.0, res.Value)

	res2 := env.Evaluate(dsl.Path{RootKind: dsl.VariableRoot, RootName: "limit"}, sc)
	require.True(t, res2.OK)
	assert.Equal(t, 10.0, res2.Value)
}

func TestEvalUnaryArith(t *testing.T) {
	env := fixedEnv()
	sc := scope.New(nil)

	res := env.Evaluate(dsl.UnaryArith{Op: "-", Operand: dsl.NumLit{Value: 4}}, sc)
	require.True(t, res.OK)
	assert.Equal(t, -4.0, res.Value)

	res = env.Evaluate(dsl.UnaryArith{Op: "-", Operand: dsl.StrLit{Value: "x"}}, sc)
	assert.False(t, res.OK)
	assert.Equal(t, CodeInvalidArithmetic, res.Code)
}

func TestEvalBinaryArithNumeric(t *testing.T) {
	env := fixedEnv()
	sc := scope.New(nil)

	res := env.Evaluate(dsl.BinaryArith{Op: "+", Left: dsl.NumLit{Value: 2}, Right: dsl.NumLit{Value: 3}}, sc)
	require.True(t, res.OK)
	assert.Equal(t, 5.0, res.Value)

	res = env.Evaluate(dsl.BinaryArith{Op: "/", Left: dsl.NumLit{Value: 1}, Right: dsl.NumLit{Value: 0}}, sc)
	assert.False(t, res.OK)
	assert.Equal(t, CodeInvalidArithmetic, res.Code)
}

func TestArithmeticTemporalPlusDuration(t *testing.T) {
	res := arithmetic("+", "2026-07-30", Duration(86400000))
	require.True(t, res.OK)
	assert.Equal(t, "2026-07-31", res.Value)
}

func TestArithmeticTemporalMinusTemporal(t *testing.T) {
	res := arithmetic("-", "2026-07-30", "2026-07-29")
	require.True(t, res.OK)
	assert.Equal(t, Duration(86400000), res.Value)
}

func TestArithmeticTemporalPlusPlainNumberDuration(t *testing.T) {
	res := arithmetic("+", "2026-07-30 00:00:00", 3600000.0)
	require.True(t, res.OK)
	assert.Equal(t, "2026-07-30 01:00:00", res.Value)
}

func TestArithmeticPlainNumbersStayNumericNotDuration(t *testing.T) {
	res := arithmetic("+", 3.0, 4.0)
	require.True(t, res.OK)
	assert.IsType(t, float64(0), res.Value)
	assert.Equal(t, 7.0, res.Value)
}

func TestArithmeticDurationScale(t *testing.T) {
	res := arithmetic("*", Duration(1000), 3.0)
	require.True(t, res.OK)
	assert.Equal(t, Duration(3000), res.Value)
}

func TestEvalCallBuiltins(t *testing.T) {
	env := fixedEnv()

	res := env.evalCall(dsl.Call{Name: "now"})
	require.True(t, res.OK)
	assert.Equal(t, "2026-07-30 12:00:00", res.Value)

	res = env.evalCall(dsl.Call{Name: "midnight"})
	require.True(t, res.OK)
	assert.Equal(t, "2026-07-30 00:00:00", res.Value)

	res = env.evalCall(dsl.Call{Name: "pi"})
	require.True(t, res.OK)
	assert.InDelta(t, 3.14159, res.Value, 0.001)

	res = env.evalCall(dsl.Call{Name: "unknown"})
	assert.False(t, res.OK)
}

func TestPredicateAsExprLiftsToBool(t *testing.T) {
	env := fixedEnv()
	sc := scope.New(nil)

	res := env.Evaluate(dsl.PredicateAsExpr{Pred: dsl.Compare{
		Left: dsl.NumLit{Value: 1}, Op: "==", Right: dsl.NumLit{Value: 1},
	}}, sc)
	require.True(t, res.OK)
	assert.Equal(t, true, res.Value)
}

func TestInjectVariables(t *testing.T) {
	out := InjectVariables("^$name-\\d+$", map[string]any{"name": "ada"})
	assert.Equal(t, "^ada-\\d+$", out)
}

func TestCompileRegex(t *testing.T) {
	re, ok := CompileRegex(`^\d+$`)
	require.True(t, ok)
	assert.True(t, re.MatchString("123"))

	_, ok = CompileRegex(`(unclosed`)
	assert.False(t, ok)
}
