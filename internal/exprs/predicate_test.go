package exprs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scedel-lang/scedel-go/internal/dsl"
	"github.com/scedel-lang/scedel-go/internal/scope"
)

func TestEvalPredicateCompare(t *testing.T) {
	env := fixedEnv()
	sc := scope.New(map[string]any{"status": "Rejected"})

	tri := env.EvalPredicate(dsl.Compare{
		Left:  dsl.Path{RootKind: dsl.ThisRoot, Segments: []string{"status"}},
		Op:    "==",
		Right: dsl.StrLit{Value: "Rejected"},
	}, sc)
	assert.Equal(t, True, tri)

	tri = env.EvalPredicate(dsl.Compare{
		Left:  dsl.Path{RootKind: dsl.ThisRoot, Segments: []string{"status"}},
		Op:    "==",
		Right: dsl.StrLit{Value: "Approved"},
	}, sc)
	assert.Equal(t, False, tri)
}

func TestEvalPredicateCompareUndefinedOnBadOperand(t *testing.T) {
	env := fixedEnv()
	sc := scope.New(map[string]any{})

	tri := env.EvalPredicate(dsl.Compare{
		Left:  dsl.Path{RootKind: dsl.ParentRoot},
		Op:    "==",
		Right: dsl.StrLit{Value: "x"},
	}, sc)
	assert.Equal(t, Undefined, tri)
}

func TestEvalPredicateNot(t *testing.T) {
	env := fixedEnv()
	sc := scope.New(nil)

	assert.Equal(t, False, env.EvalPredicate(dsl.Not{Operand: dsl.ExprAsPredicate{Value: dsl.BoolLit{Value: true}}}, sc))
	assert.Equal(t, True, env.EvalPredicate(dsl.Not{Operand: dsl.ExprAsPredicate{Value: dsl.BoolLit{Value: false}}}, sc))
}

func TestAndOrNoShortCircuit(t *testing.T) {
	// Open Question 2: both sides always evaluate, so Undefined propagates
	// even when the other side alone would decide the result.
	assert.Equal(t, Undefined, andTri(True, Undefined))
	assert.Equal(t, Undefined, andTri(False, Undefined), "no short-circuit on a false left side either")
	assert.Equal(t, True, andTri(True, True))
	assert.Equal(t, False, andTri(True, False))

	assert.Equal(t, Undefined, orTri(False, Undefined))
	assert.Equal(t, Undefined, orTri(True, Undefined), "no short-circuit on a true left side either")
	assert.Equal(t, True, orTri(True, False))
	assert.Equal(t, False, orTri(False, False))
}

func TestEvalPredicateOrderedComparison(t *testing.T) {
	env := fixedEnv()
	sc := scope.New(nil)

	tri := env.EvalPredicate(dsl.Compare{Left: dsl.NumLit{Value: 5}, Op: ">", Right: dsl.NumLit{Value: 3}}, sc)
	assert.Equal(t, True, tri)

	tri = env.EvalPredicate(dsl.Compare{
		Left:  dsl.StrLit{Value: "2026-01-01"},
		Op:    "<",
		Right: dsl.StrLit{Value: "2026-12-31"},
	}, sc)
	assert.Equal(t, True, tri, "date strings compare temporally, not lexically")
}

func TestEvalMatches(t *testing.T) {
	env := fixedEnv()
	sc := scope.New("abc123").WithVariables(map[string]any{"prefix": "abc"})

	tri := env.EvalPredicate(dsl.Matches{
		Target:  dsl.Path{RootKind: dsl.ThisRoot},
		Pattern: `^$prefix\d+$`,
	}, sc)
	assert.Equal(t, True, tri)
}

func TestEvalMatchesUndefinedOnNonString(t *testing.T) {
	env := fixedEnv()
	sc := scope.New(42.0)

	tri := env.EvalPredicate(dsl.Matches{Target: dsl.Path{RootKind: dsl.ThisRoot}, Pattern: `\d+`}, sc)
	assert.Equal(t, Undefined, tri)
}

func TestCoerceBool(t *testing.T) {
	assert.Equal(t, True, coerceBool(true))
	assert.Equal(t, False, coerceBool(false))
	assert.Equal(t, False, coerceBool(nil))
	assert.Equal(t, False, coerceBool(0.0))
	assert.Equal(t, True, coerceBool(1.0))
	assert.Equal(t, False, coerceBool(""))
	assert.Equal(t, True, coerceBool("x"))
	assert.Equal(t, False, coerceBool([]any{}))
	assert.Equal(t, Undefined, coerceBool(struct{}{}))
}

func TestExprAsPredicateUndefinedOnEvalFailure(t *testing.T) {
	env := fixedEnv()
	sc := scope.New(map[string]any{})

	tri := env.EvalPredicate(dsl.ExprAsPredicate{Value: dsl.Path{RootKind: dsl.ParentRoot}}, sc)
	assert.Equal(t, Undefined, tri)
}
