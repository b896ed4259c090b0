// Package exprs implements the Expression Evaluator and Predicate
// Evaluator (spec §4.5): recursive evaluation of the value-expression AST
// to a value or failure, path resolution against a scope, arithmetic
// (including temporal/duration rules), nullary function calls, and
// tri-valued predicate evaluation.
package exprs

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/scedel-lang/scedel-go/internal/codes"
	"github.com/scedel-lang/scedel-go/internal/dsl"
	"github.com/scedel-lang/scedel-go/internal/jsonvalue"
	"github.com/scedel-lang/scedel-go/internal/scope"
	"github.com/scedel-lang/scedel-go/internal/temporal"
)

// Code is the expression evaluator's error-code scratch value (spec
// §4.5.1's "error-code scratch field" design note, resolved here as a
// field on the returned Result rather than a mutable out-of-band field).
type Code = codes.Code

const (
	CodeInvalidExpression = codes.InvalidExpression
	CodeInvalidArithmetic = codes.InvalidArithmetic
	CodeParentUndefined   = codes.ParentUndefined
)

// Duration is a millisecond count produced by a duration literal or by
// duration-valued arithmetic. It is kept distinct from a plain JSON number
// (float64) so that e.g. "3 + 4" stays ordinary numeric addition while
// "1h + 1h" stays duration addition, per spec §4.5.2.
type Duration int64

// Result is the outcome of evaluating an Expr: either a value, or a
// failure carrying the most precise Code available (spec §4.5.1).
type Result struct {
	OK    bool
	Value any
	Code  Code
}

func ok(v any) Result         { return Result{OK: true, Value: v} }
func fail(code Code) Result   { return Result{OK: false, Code: code} }
func failExpr() Result        { return fail(CodeInvalidExpression) }
func failArith() Result       { return fail(CodeInvalidArithmetic) }
func failParentUndef() Result { return fail(CodeParentUndefined) }

// Env carries the evaluator's only external dependency: the clock used by
// now()/midnight(). Tests inject a fixed clock for determinism.
type Env struct {
	Clock func() time.Time
}

// DefaultEnv uses the real wall clock.
func DefaultEnv() Env { return Env{Clock: time.Now} }

// Evaluate recursively evaluates expr against sc.
func (env Env) Evaluate(expr dsl.Expr, sc scope.Scope) Result {
	switch e := expr.(type) {
	case dsl.StrLit:
		return ok(e.Value)
	case dsl.NumLit:
		return ok(e.Value)
	case dsl.DurationLit:
		return ok(Duration(e.Millis))
	case dsl.BoolLit:
		return ok(e.Value)
	case dsl.NullLit:
		return ok(nil)
	case dsl.EmptyArray:
		return ok([]any{})
	case dsl.Path:
		return env.evalPath(e, sc)
	case dsl.UnaryArith:
		return env.evalUnary(e, sc)
	case dsl.BinaryArith:
		return env.evalBinary(e, sc)
	case dsl.Call:
		return env.evalCall(e)
	case dsl.PredicateAsExpr:
		tri := env.EvalPredicate(e.Pred, sc)
		if tri == Undefined {
			return failExpr()
		}
		return ok(tri == True)
	default:
		return failExpr()
	}
}

func (env Env) evalPath(p dsl.Path, sc scope.Scope) Result {
	base, baseOK := resolveBase(p.RootKind, p.RootName, sc)
	if !baseOK {
		if p.RootKind == dsl.ParentRoot {
			return failParentUndef()
		}
		return failExpr()
	}
	cur := base
	for _, seg := range p.Segments {
		val, present := jsonvalue.Lookup(cur, seg)
		if !present {
			cur = nil
			break
		}
		cur = val
	}
	return ok(cur)
}

func resolveBase(kind dsl.RootKind, name string, sc scope.Scope) (any, bool) {
	switch kind {
	case dsl.ThisRoot:
		return sc.Current, true
	case dsl.ParentRoot:
		if !sc.HasParent {
			return nil, false
		}
		return sc.Parent, true
	case dsl.RootRoot:
		return sc.Root, true
	case dsl.IdentifierRoot:
		return jsonvalue.Lookup(sc.Current, name)
	case dsl.VariableRoot:
		if v, found := sc.Variables[name]; found {
			return v, true
		}
		stripped := strings.TrimPrefix(name, "$")
		if v, found := sc.Variables[stripped]; found {
			return v, true
		}
		return nil, false
	default:
		return nil, false
	}
}

func (env Env) evalUnary(u dsl.UnaryArith, sc scope.Scope) Result {
	operand := env.Evaluate(u.Operand, sc)
	if !operand.OK {
		return operand
	}
	switch v := operand.Value.(type) {
	case float64:
		if u.Op == "-" {
			return ok(-v)
		}
		return ok(v)
	case Duration:
		if u.Op == "-" {
			return ok(-v)
		}
		return ok(v)
	case string:
		d, isDur := asDuration(v)
		if !isDur {
			return failArith()
		}
		if u.Op == "-" {
			return ok(-d)
		}
		return ok(d)
	default:
		return failArith()
	}
}

func (env Env) evalBinary(b dsl.BinaryArith, sc scope.Scope) Result {
	left := env.Evaluate(b.Left, sc)
	if !left.OK {
		return left
	}
	right := env.Evaluate(b.Right, sc)
	if !right.OK {
		return right
	}
	return arithmetic(b.Op, left.Value, right.Value)
}

func asTemporal(v any) (temporal.Value, bool) {
	s, isStr := v.(string)
	if !isStr {
		return temporal.Value{}, false
	}
	return temporal.Parse(s)
}

func asDuration(v any) (Duration, bool) {
	switch x := v.(type) {
	case Duration:
		return x, true
	case string:
		ms, ok := temporal.DurationMillis(x)
		if !ok {
			return 0, false
		}
		return Duration(ms), true
	default:
		return 0, false
	}
}

// asDurationOperand recognizes a duration value paired with an operand
// already confirmed temporal, where spec §4.5.2's durationMs(x) applies in
// full: a Duration, a duration string, or a plain number (an integer, or a
// float with an integral value) — unlike asDuration, a bare JSON number
// counts here because there is no ambiguity with "3 + 4" once one side of
// the operation is already a temporal value.
func asDurationOperand(v any) (Duration, bool) {
	if d, ok := v.(Duration); ok {
		return d, true
	}
	ms, ok := temporal.DurationMillis(v)
	if !ok {
		return 0, false
	}
	return Duration(ms), true
}

func arithmetic(op string, l, r any) Result {
	if op == "+" || op == "-" {
		if lt, lok := asTemporal(l); lok {
			if rd, rok := asDurationOperand(r); rok {
				delta := int64(rd)
				if op == "-" {
					delta = -delta
				}
				return ok(temporal.Format(temporal.Shift(lt, delta)))
			}
			if rt, rok := asTemporal(r); rok && op == "-" {
				diff, diffOK := temporal.DiffMillis(lt, rt)
				if !diffOK {
					return failArith()
				}
				return ok(Duration(diff))
			}
		}
		if op == "+" {
			if rt, rok := asTemporal(r); rok {
				if ld, lok := asDurationOperand(l); lok {
					return ok(temporal.Format(temporal.Shift(rt, int64(ld))))
				}
			}
		}
		if ld, lok := asDuration(l); lok {
			if rd, rok := asDuration(r); rok {
				if op == "+" {
					return ok(Duration(int64(ld) + int64(rd)))
				}
				return ok(Duration(int64(ld) - int64(rd)))
			}
		}
	}

	if op == "*" || op == "/" {
		if ld, lok := l.(Duration); lok {
			if rn, rok := r.(float64); rok {
				return durationScale(ld, rn, op)
			}
		}
		if rd, rok := r.(Duration); rok && op == "*" {
			if ln, lok := l.(float64); lok {
				return durationScale(rd, ln, op)
			}
		}
	}

	lNum, lok := l.(float64)
	rNum, rok := r.(float64)
	if !lok || !rok {
		return failArith()
	}
	switch op {
	case "+":
		return ok(lNum + rNum)
	case "-":
		return ok(lNum - rNum)
	case "*":
		return ok(lNum * rNum)
	case "/":
		if rNum == 0 {
			return failArith()
		}
		return ok(lNum / rNum)
	default:
		return failArith()
	}
}

func durationScale(d Duration, n float64, op string) Result {
	if op == "/" && n == 0 {
		return failArith()
	}
	var result float64
	if op == "*" {
		result = float64(d) * n
	} else {
		result = float64(d) / n
	}
	return ok(Duration(math.Round(result)))
}

func (env Env) evalCall(c dsl.Call) Result {
	clock := env.Clock
	if clock == nil {
		clock = time.Now
	}
	switch c.Name {
	case "now":
		return ok(temporal.Now(clock))
	case "midnight":
		return ok(temporal.Midnight(clock))
	case "pi":
		return ok(math.Pi)
	default:
		return failExpr()
	}
}

// InjectVariables textually substitutes every named scope variable into a
// regex pattern (spec §4.5.4): for every (name, value) where name is a
// string, the pattern's occurrences of the variable (prefixed with "$" if
// it isn't already) are replaced with value's string form.
func InjectVariables(pattern string, vars map[string]any) string {
	for name, value := range vars {
		key := name
		if !strings.HasPrefix(key, "$") {
			key = "$" + key
		}
		pattern = strings.ReplaceAll(pattern, key, stringForm(value))
	}
	return pattern
}

func stringForm(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case Duration:
		return fmt.Sprintf("%d", int64(x))
	case float64:
		if x == math.Trunc(x) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%v", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// CompileRegex compiles pattern as the engine's single regex dialect
// (Go's RE2 with Unicode mode, the closest ecosystem equivalent to the
// PCRE-with-/u-flag semantics spec §9 calls for). Compilation failure is
// reported by returning ok=false so callers can map it to the spec's
// "undefined" outcome rather than panicking.
func CompileRegex(pattern string) (*regexp.Regexp, bool) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, false
	}
	return re, true
}
