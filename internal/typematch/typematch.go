// Package typematch implements the Type Matcher (spec §4.2) and the
// Constraint Applier (spec §4.3): the recursive descent that unifies a
// decoded JSON value with a type expression tree, and the per-constraint
// resolution/binding/evaluation protocol invoked along the way.
package typematch

import (
	"fmt"

	"github.com/scedel-lang/scedel-go/internal/binder"
	"github.com/scedel-lang/scedel-go/internal/codes"
	"github.com/scedel-lang/scedel-go/internal/dsl"
	"github.com/scedel-lang/scedel-go/internal/exprs"
	"github.com/scedel-lang/scedel-go/internal/jsonvalue"
	"github.com/scedel-lang/scedel-go/internal/schema"
	"github.com/scedel-lang/scedel-go/internal/scope"
	"github.com/scedel-lang/scedel-go/internal/verr"
)

// DefaultMaxDepth is the per-type-name recursion bound (spec §4.2.2).
const DefaultMaxDepth = 64

// Matcher holds the dependencies the recursive descent needs: the
// read-only schema repository and the expression/predicate evaluator.
type Matcher struct {
	Repo     schema.Repository
	Env      exprs.Env
	MaxDepth int
}

// New creates a Matcher with the spec's default recursion bound.
func New(repo schema.Repository, env exprs.Env) *Matcher {
	return &Matcher{Repo: repo, Env: env, MaxDepth: DefaultMaxDepth}
}

// Match dispatches on t's variant against value, accumulating violations
// into errs and returning local success. stack tracks nested resolutions
// of the same user-defined type name across the whole validate() call.
func (m *Matcher) Match(t dsl.TypeExpr, value any, sc scope.Scope, path string, errs *verr.List, stack map[string]int) bool {
	switch tt := t.(type) {
	case dsl.Absent:
		errs.Add(path, "Value must be absent.", codes.FieldMustBeAbsent)
		return false
	case dsl.Literal:
		if jsonvalue.Equal(value, tt.Value) {
			return true
		}
		errs.Add(path, "Value does not equal the expected literal.", codes.TypeMismatch)
		return false
	case dsl.Named:
		return m.matchNamed(tt, value, sc, path, errs, stack)
	case dsl.NullableNamed:
		if jsonvalue.IsNull(value) {
			return true
		}
		return m.matchNamed(dsl.Named{Name: tt.Name}, value, sc, path, errs, stack)
	case dsl.Nullable:
		if jsonvalue.IsNull(value) {
			return true
		}
		return m.Match(tt.Inner, value, sc, path, errs, stack)
	case dsl.Array:
		return m.matchArray(tt, value, sc, path, errs, stack)
	case dsl.Record:
		return m.matchRecord(tt, value, sc, path, errs, stack)
	case dsl.Dict:
		return m.matchDict(tt, value, sc, path, errs, stack)
	case dsl.Union:
		return m.matchUnion(tt, value, sc, path, errs, stack)
	case dsl.Intersection:
		return m.matchIntersection(tt, value, sc, path, errs, stack)
	case dsl.Conditional:
		return m.matchConditional(tt, value, sc, path, errs, stack)
	default:
		errs.Add(path, "Unrecognized type expression.", codes.InvalidExpression)
		return false
	}
}

func (m *Matcher) matchNamed(t dsl.Named, value any, sc scope.Scope, path string, errs *verr.List, stack map[string]int) bool {
	def, found := m.Repo.LookupType(t.Name)
	if !found {
		errs.Add(path, fmt.Sprintf("Type %q is not defined.", t.Name), codes.UnknownType)
		return false
	}
	ok := true
	switch d := def.(type) {
	case schema.BuiltinTypeDef:
		if !d.Matches(value) {
			errs.Add(path, fmt.Sprintf("Value does not match type %q.", t.Name), codes.TypeMismatch)
			ok = false
		}
	case schema.UserTypeDef:
		if !m.enterType(stack, t.Name) {
			errs.Add(path, fmt.Sprintf("Type recursion depth limit exceeded while resolving %q.", t.Name), codes.UnknownType)
			m.exitType(stack, t.Name)
			return false
		}
		ok = m.Match(d.Expr, value, sc, path, errs, stack)
		m.exitType(stack, t.Name)
	default:
		errs.Add(path, fmt.Sprintf("Type %q has an unrecognized definition.", t.Name), codes.UnknownType)
		return false
	}
	if !m.applyConstraints(t.Constraints, t.Name, value, sc, path, errs, stack) {
		ok = false
	}
	return ok
}

func (m *Matcher) matchArray(t dsl.Array, value any, sc scope.Scope, path string, errs *verr.List, stack map[string]int) bool {
	arr, isArr := jsonvalue.AsArray(value)
	if !isArr {
		errs.Add(path, "Expected a JSON array.", codes.TypeMismatch)
		return false
	}
	ok := true
	childScope := sc
	for i, item := range arr {
		itemScope := childScope.Child(item)
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		if !m.Match(t.Item, item, itemScope, itemPath, errs, stack) {
			ok = false
		}
	}
	if !m.applyConstraints(t.Constraints, "Array", value, sc, path, errs, stack) {
		ok = false
	}
	return ok
}

func (m *Matcher) matchRecord(t dsl.Record, value any, sc scope.Scope, path string, errs *verr.List, stack map[string]int) bool {
	obj, isObj := jsonvalue.AsObject(value)
	if !isObj {
		errs.Add(path, "Expected a JSON object.", codes.TypeMismatch)
		return false
	}
	ok := true
	declared := make(map[string]bool, len(t.Fields))
	recordScope := sc.Child(value)
	for _, field := range t.Fields {
		declared[field.Name] = true
		fieldPath := path + "." + field.Name
		fv, present := obj[field.Name]
		if !present {
			if field.Optional || field.Default != nil || m.admitsAbsence(field.Type, sc) {
				continue
			}
			errs.Add(fieldPath, fmt.Sprintf("Field %q is missing.", field.Name), codes.FieldMissing)
			ok = false
			continue
		}
		if _, isAbsent := field.Type.(dsl.Absent); isAbsent {
			errs.Add(fieldPath, fmt.Sprintf("Field %q must be absent.", field.Name), codes.FieldMustBeAbsent)
			ok = false
			continue
		}
		if !m.Match(field.Type, fv, recordScope.WithCurrent(fv), fieldPath, errs, stack) {
			ok = false
		}
	}
	for _, key := range jsonvalue.SortedKeys(obj) {
		if declared[key] {
			continue
		}
		errs.Add(path+"."+key, fmt.Sprintf("Unexpected field %q.", key), codes.UnknownField)
		ok = false
	}
	return ok
}

func (m *Matcher) matchDict(t dsl.Dict, value any, sc scope.Scope, path string, errs *verr.List, stack map[string]int) bool {
	obj, isObj := jsonvalue.AsObject(value)
	if !isObj {
		errs.Add(path, "Expected a JSON object.", codes.TypeMismatch)
		return false
	}
	ok := true
	for _, key := range jsonvalue.SortedKeys(obj) {
		keyScope := sc.Child(key)
		if !m.Match(t.KeyType, key, keyScope, fmt.Sprintf("%s.{key:%s}", path, key), errs, stack) {
			ok = false
		}
		valScope := sc.Child(obj[key])
		if !m.Match(t.ValueType, obj[key], valScope, path+"."+key, errs, stack) {
			ok = false
		}
	}
	return ok
}

func (m *Matcher) matchUnion(t dsl.Union, value any, sc scope.Scope, path string, errs *verr.List, stack map[string]int) bool {
	for _, branch := range t.Items {
		buf := &verr.List{}
		if m.Match(branch, value, sc, path, buf, stack) {
			return true
		}
	}
	errs.Add(path, "Value does not match any union branch.", codes.ConstraintViolation)
	return false
}

func (m *Matcher) matchIntersection(t dsl.Intersection, value any, sc scope.Scope, path string, errs *verr.List, stack map[string]int) bool {
	ok := true
	for _, branch := range t.Items {
		if !m.Match(branch, value, sc, path, errs, stack) {
			ok = false
		}
	}
	return ok
}

func (m *Matcher) matchConditional(t dsl.Conditional, value any, sc scope.Scope, path string, errs *verr.List, stack map[string]int) bool {
	switch m.Env.EvalPredicate(t.Cond, sc) {
	case exprs.True:
		return m.Match(t.Then, value, sc, path, errs, stack)
	case exprs.False:
		return m.Match(t.Else, value, sc, path, errs, stack)
	default:
		thenBuf := &verr.List{}
		if m.Match(t.Then, value, sc, path, thenBuf, stack) {
			return true
		}
		elseBuf := &verr.List{}
		if m.Match(t.Else, value, sc, path, elseBuf, stack) {
			return true
		}
		errs.Add(path, "Value does not satisfy conditional type.", codes.ConstraintViolation)
		return false
	}
}

// admitsAbsence is the structural query of spec §4.2.1: whether a missing
// field under type t is acceptable. sc is the enclosing record's scope
// (current = the record itself), used to resolve a Conditional's predicate
// against sibling fields even though the field being checked doesn't exist
// (spec scenario #3: whether rejectReason may be absent depends on the
// sibling field status, which is present).
func (m *Matcher) admitsAbsence(t dsl.TypeExpr, sc scope.Scope) bool {
	if t == nil {
		return false
	}
	return m.admitsAbsenceDepth(t, sc, map[string]int{})
}

func (m *Matcher) admitsAbsenceDepth(t dsl.TypeExpr, sc scope.Scope, stack map[string]int) bool {
	switch tt := t.(type) {
	case dsl.Absent:
		return true
	case dsl.Union:
		for _, item := range tt.Items {
			if m.admitsAbsenceDepth(item, sc, stack) {
				return true
			}
		}
		return false
	case dsl.Intersection:
		for _, item := range tt.Items {
			if !m.admitsAbsenceDepth(item, sc, stack) {
				return false
			}
		}
		return len(tt.Items) > 0
	case dsl.Conditional:
		switch m.Env.EvalPredicate(tt.Cond, sc) {
		case exprs.True:
			return m.admitsAbsenceDepth(tt.Then, sc, stack)
		case exprs.False:
			return m.admitsAbsenceDepth(tt.Else, sc, stack)
		default:
			return m.admitsAbsenceDepth(tt.Then, sc, stack) || m.admitsAbsenceDepth(tt.Else, sc, stack)
		}
	case dsl.Named:
		def, found := m.Repo.LookupType(tt.Name)
		if !found {
			return false
		}
		userDef, isUser := def.(schema.UserTypeDef)
		if !isUser {
			return false
		}
		stack[tt.Name]++
		defer func() { stack[tt.Name]-- }()
		if stack[tt.Name] > m.MaxDepth {
			return false
		}
		return m.admitsAbsenceDepth(userDef.Expr, sc, stack)
	default:
		return false
	}
}

func (m *Matcher) enterType(stack map[string]int, name string) bool {
	stack[name]++
	return stack[name] <= m.MaxDepth
}

func (m *Matcher) exitType(stack map[string]int, name string) {
	stack[name]--
}

// CheckTypeHint implements binder.TypeHintChecker: it lets the Validator
// Argument Binder verify a bound argument against a type name without the
// binder importing this package directly (spec §4.4 "optional type-hint
// check"). Unknown hint names are reported as hintKnown=false so the
// binder tolerates them silently, per spec.
func (m *Matcher) CheckTypeHint(value any, typeName string) (matches bool, hintKnown bool) {
	def, found := m.Repo.LookupType(typeName)
	if !found {
		return false, false
	}
	switch d := def.(type) {
	case schema.BuiltinTypeDef:
		return d.Matches(value), true
	case schema.UserTypeDef:
		buf := &verr.List{}
		ok := m.Match(d.Expr, value, scope.New(value), "$", buf, map[string]int{})
		return ok, true
	default:
		return false, false
	}
}

// applyConstraints is the Constraint Applier (spec §4.3): constraints run
// in source order, every one attempted regardless of previous outcomes. It
// reports whether all of them passed (no error was added).
func (m *Matcher) applyConstraints(constraints []dsl.Constraint, targetType string, value any, sc scope.Scope, path string, errs *verr.List, stack map[string]int) bool {
	before := errs.Len()
	for _, c := range constraints {
		def, found := m.Repo.LookupValidator(targetType, c.Name)
		if !found {
			errs.Add(path, fmt.Sprintf("Unknown constraint %q for type %q.", c.Name, targetType), codes.UnknownConstraint)
			continue
		}
		switch d := def.(type) {
		case schema.BuiltinValidatorDef:
			m.applyBuiltinConstraint(d, c, value, sc, path, errs)
		case schema.UserValidatorDef:
			m.applyUserConstraint(d, c, targetType, value, sc, path, errs)
		}
	}
	return errs.Len() == before
}

type argFailure struct {
	Code    codes.Code
	Message string
}

func (m *Matcher) applyBuiltinConstraint(d schema.BuiltinValidatorDef, c dsl.Constraint, value any, sc scope.Scope, path string, errs *verr.List) {
	argument, hasArgument, fail := resolveBuiltinArgument(c, sc, m.Env)
	if fail != nil {
		errs.Add(path, fail.Message, fail.Code)
		return
	}
	if d.RequiresArgument && !hasArgument {
		errs.Add(path, fmt.Sprintf("Constraint %q requires an argument.", c.Name), codes.MissingArgument)
		return
	}
	result, defined := d.Evaluate(value, argument, hasArgument)
	if !defined {
		errs.Add(path, fmt.Sprintf("Constraint %q is not supported for current value.", c.Name), codes.ConstraintViolation)
		return
	}
	if c.Negated {
		result = !result
	}
	if !result {
		errs.Add(path, fmt.Sprintf("Constraint %q failed: expected %v against %v.", c.Name, value, argument), codes.ConstraintViolation)
	}
}

func resolveBuiltinArgument(c dsl.Constraint, sc scope.Scope, env exprs.Env) (argument any, hasArgument bool, fail *argFailure) {
	if c.UsesCallSyntax {
		positional := 0
		for _, ca := range c.CallArgs {
			if ca.Name != "" {
				return nil, false, &argFailure{codes.UnknownArgumentName, "Built-in constraints do not accept named arguments."}
			}
			positional++
			if positional > 1 {
				return nil, false, &argFailure{codes.TooManyArguments, "Built-in constraints accept at most one argument."}
			}
			res := env.Evaluate(ca.Value, sc)
			if !res.OK {
				return nil, false, &argFailure{orDefault(res.Code), "Failed to evaluate constraint argument."}
			}
			argument, hasArgument = res.Value, true
		}
		return argument, hasArgument, nil
	}
	if c.LegacyArgs != nil {
		if len(c.LegacyArgs) == 0 {
			return nil, false, nil
		}
		if len(c.LegacyArgs) > 1 {
			return nil, false, &argFailure{codes.TooManyArguments, "Built-in constraints accept at most one argument."}
		}
		res := env.Evaluate(c.LegacyArgs[0], sc)
		if !res.OK {
			return nil, false, &argFailure{orDefault(res.Code), "Failed to evaluate constraint argument."}
		}
		return res.Value, true, nil
	}
	if c.LegacyArg != nil {
		res := env.Evaluate(c.LegacyArg, sc)
		if !res.OK {
			return nil, false, &argFailure{orDefault(res.Code), "Failed to evaluate constraint argument."}
		}
		return res.Value, true, nil
	}
	return nil, false, nil
}

// orDefault falls back to InvalidExpression when the evaluator didn't
// attach a more specific code, per spec §9's open question on the
// canonical code for constraint-argument evaluation failure.
func orDefault(code codes.Code) codes.Code {
	if code == "" {
		return codes.InvalidExpression
	}
	return code
}

func (m *Matcher) applyUserConstraint(d schema.UserValidatorDef, c dsl.Constraint, targetType string, value any, sc scope.Scope, path string, errs *verr.List) {
	bindRes := binder.Bind(d.Params, c, sc, m.Env, m.CheckTypeHint)
	if !bindRes.OK {
		errs.Add(path, bindRes.Failure.Message, bindRes.Failure.Code)
		return
	}
	extra := make(map[string]any, len(bindRes.Bindings)*2)
	for name, v := range bindRes.Bindings {
		extra[name] = v
		extra["$"+name] = v
	}
	validatorScope := sc.Child(value).WithVariables(extra)

	var result exprs.Tri
	var customMessage string

	switch body := d.Body.(type) {
	case dsl.RegexBody:
		result = evalRegexBody(value, body.Pattern, body.Negated, validatorScope)
	case dsl.PredicateBody:
		result = m.Env.EvalPredicate(body.Pred, validatorScope)
	case dsl.ObjectRegexBody:
		customMessage = body.Message
		// Per the resolved open question, the object body's own negation
		// flag is not applied here; only the constraint-level flag is.
		result = evalRegexBody(value, body.Pattern, false, validatorScope)
	case dsl.ObjectPredicateBody:
		customMessage = body.Message
		result = m.Env.EvalPredicate(body.Pred, validatorScope)
	default:
		result = exprs.Undefined
	}

	if result == exprs.Undefined {
		errs.Add(path, fmt.Sprintf("Validator %q(%q) cannot be evaluated by current runtime.", targetType, c.Name), codes.ValidatorFailed)
		return
	}
	passed := result == exprs.True
	if c.Negated {
		passed = !passed
	}
	if !passed {
		msg := customMessage
		if msg == "" {
			msg = fmt.Sprintf("Validator %q(%q) failed.", targetType, c.Name)
		}
		errs.Add(path, msg, codes.ValidatorFailed)
	}
}

func evalRegexBody(value any, pattern string, negated bool, sc scope.Scope) exprs.Tri {
	str, isStr := value.(string)
	if !isStr {
		return exprs.False
	}
	injected := exprs.InjectVariables(pattern, sc.Variables)
	re, compiled := exprs.CompileRegex(injected)
	if !compiled {
		return exprs.Undefined
	}
	matched := re.MatchString(str)
	if negated {
		matched = !matched
	}
	if matched {
		return exprs.True
	}
	return exprs.False
}
