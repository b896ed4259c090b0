package exprs

import (
	"strings"

	"github.com/scedel-lang/scedel-go/internal/dsl"
	"github.com/scedel-lang/scedel-go/internal/jsonvalue"
	"github.com/scedel-lang/scedel-go/internal/scope"
	"github.com/scedel-lang/scedel-go/internal/temporal"
)

// Tri is a tri-valued predicate result (spec §9 "tri-valued predicates" —
// modeled as a closed sum rather than a lossy bool).
type Tri int

const (
	True Tri = iota
	False
	Undefined
)

// EvalPredicate evaluates a predicate AST node against sc.
func (env Env) EvalPredicate(p dsl.PredicateExpr, sc scope.Scope) Tri {
	switch n := p.(type) {
	case dsl.Not:
		inner := env.EvalPredicate(n.Operand, sc)
		if inner == Undefined {
			return Undefined
		}
		if inner == True {
			return False
		}
		return True
	case dsl.And:
		// Both sides are always evaluated; undefined from either side
		// propagates without short-circuit bypass (spec §9 resolved).
		l := env.EvalPredicate(n.Left, sc)
		r := env.EvalPredicate(n.Right, sc)
		return andTri(l, r)
	case dsl.Or:
		l := env.EvalPredicate(n.Left, sc)
		r := env.EvalPredicate(n.Right, sc)
		return orTri(l, r)
	case dsl.Compare:
		return env.evalCompare(n, sc)
	case dsl.Matches:
		return env.evalMatches(n, sc)
	case dsl.ExprAsPredicate:
		res := env.Evaluate(n.Value, sc)
		if !res.OK {
			return Undefined
		}
		return coerceBool(res.Value)
	default:
		return Undefined
	}
}

func andTri(l, r Tri) Tri {
	if l == Undefined || r == Undefined {
		return Undefined
	}
	if l == True && r == True {
		return True
	}
	return False
}

func orTri(l, r Tri) Tri {
	if l == Undefined || r == Undefined {
		return Undefined
	}
	if l == True || r == True {
		return True
	}
	return False
}

func boolToTri(b bool) Tri {
	if b {
		return True
	}
	return False
}

func (env Env) evalCompare(c dsl.Compare, sc scope.Scope) Tri {
	left := env.Evaluate(c.Left, sc)
	if !left.OK {
		return Undefined
	}
	right := env.Evaluate(c.Right, sc)
	if !right.OK {
		return Undefined
	}

	switch c.Op {
	case "==":
		return boolToTri(jsonvalue.Equal(left.Value, right.Value))
	case "!=":
		return boolToTri(!jsonvalue.Equal(left.Value, right.Value))
	case "<", "<=", ">", ">=":
		return compareOrdered(c.Op, left.Value, right.Value)
	default:
		return Undefined
	}
}

func compareOrdered(op string, l, r any) Tri {
	lNum, lIsNum := l.(float64)
	rNum, rIsNum := r.(float64)
	if lIsNum && rIsNum {
		return boolToTri(applyOrder(op, cmpFloat(lNum, rNum)))
	}

	lStr, lIsStr := l.(string)
	rStr, rIsStr := r.(string)
	if lIsStr && rIsStr {
		lt, lOK := temporal.Parse(lStr)
		rt, rOK := temporal.Parse(rStr)
		if lOK && rOK {
			return boolToTri(applyOrder(op, lt.Time.Compare(rt.Time)))
		}
		return boolToTri(applyOrder(op, strings.Compare(lStr, rStr)))
	}

	return Undefined
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func applyOrder(op string, cmp int) bool {
	switch op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	}
	return false
}

func (env Env) evalMatches(m dsl.Matches, sc scope.Scope) Tri {
	target := env.Evaluate(m.Target, sc)
	if !target.OK {
		return Undefined
	}
	str, isStr := target.Value.(string)
	if !isStr {
		return Undefined
	}
	pattern := InjectVariables(m.Pattern, sc.Variables)
	re, compiled := CompileRegex(pattern)
	if !compiled {
		return Undefined
	}
	return boolToTri(re.MatchString(str))
}

func coerceBool(v any) Tri {
	switch x := v.(type) {
	case bool:
		return boolToTri(x)
	case nil:
		return False
	case float64:
		return boolToTri(x != 0)
	case Duration:
		return boolToTri(x != 0)
	case string:
		return boolToTri(x != "")
	case []any:
		return boolToTri(len(x) != 0)
	case map[string]any:
		return boolToTri(len(x) != 0)
	default:
		return Undefined
	}
}
