// Package binder implements the Validator Argument Binder (spec §4.4): it
// enforces calling conventions (positional-before-named, no duplicates,
// unknown names, default expressions, optional type-hint checks) for
// invoking a user-defined validator.
package binder

import (
	"github.com/scedel-lang/scedel-go/internal/codes"
	"github.com/scedel-lang/scedel-go/internal/dsl"
	"github.com/scedel-lang/scedel-go/internal/exprs"
	"github.com/scedel-lang/scedel-go/internal/scope"
)

// TypeHintChecker validates a bound argument against a type-hint name. It
// is supplied by the Type Matcher (binder cannot import it directly
// without creating an import cycle, since the matcher's Constraint
// Applier is the binder's caller).
type TypeHintChecker func(value any, typeName string) (matches bool, hintKnown bool)

// Failure describes why binding failed; the caller (Constraint Applier)
// turns it into a ValidationError at the constraint's path.
type Failure struct {
	Code    codes.Code
	Message string
}

// Result is the outcome of binding a validator call's arguments.
type Result struct {
	OK       bool
	Bindings map[string]any
	Failure  Failure
}

// Bind resolves constraint's arguments against params, producing a
// paramName -> value mapping, or a Failure.
func Bind(params []dsl.Param, c dsl.Constraint, outerScope scope.Scope, env exprs.Env, checkHint TypeHintChecker) Result {
	bindings := make(map[string]any, len(params))
	boundSet := make(map[string]bool, len(params))

	if c.UsesCallSyntax {
		if fail, ok := bindCallArgs(params, c.CallArgs, outerScope, env, bindings, boundSet); !ok {
			return Result{Failure: fail}
		}
	} else if c.LegacyArgs != nil {
		if fail, ok := bindPositional(params, c.LegacyArgs, outerScope, env, bindings, boundSet); !ok {
			return Result{Failure: fail}
		}
	} else if c.LegacyArg != nil {
		if fail, ok := bindPositional(params, []dsl.Expr{c.LegacyArg}, outerScope, env, bindings, boundSet); !ok {
			return Result{Failure: fail}
		}
	}

	if fail, ok := applyDefaults(params, outerScope, env, bindings, boundSet); !ok {
		return Result{Failure: fail}
	}

	if fail, ok := checkRequired(params, boundSet); !ok {
		return Result{Failure: fail}
	}

	if fail, ok := checkHints(params, bindings, boundSet, checkHint); !ok {
		return Result{Failure: fail}
	}

	return Result{OK: true, Bindings: bindings}
}

func bindCallArgs(params []dsl.Param, args []dsl.CallArg, outerScope scope.Scope, env exprs.Env, bindings map[string]any, boundSet map[string]bool) (Failure, bool) {
	seenNamed := false
	positionalIdx := 0
	for _, arg := range args {
		if arg.Name == "" {
			if seenNamed {
				return Failure{
					Code:    codes.UnknownArgumentName,
					Message: "Positional arguments must precede named arguments in this call.",
				}, false
			}
			if positionalIdx >= len(params) {
				return Failure{Code: codes.TooManyArguments, Message: "Too many positional arguments supplied."}, false
			}
			param := params[positionalIdx]
			positionalIdx++
			if fail, ok := bindOne(param, arg.Value, outerScope, env, bindings, boundSet); !ok {
				return fail, false
			}
			continue
		}
		seenNamed = true
		param, found := findParam(params, arg.Name)
		if !found {
			return Failure{Code: codes.UnknownArgumentName, Message: "Unknown argument name: " + arg.Name}, false
		}
		if fail, ok := bindOne(param, arg.Value, outerScope, env, bindings, boundSet); !ok {
			return fail, false
		}
	}
	return Failure{}, true
}

func bindPositional(params []dsl.Param, args []dsl.Expr, outerScope scope.Scope, env exprs.Env, bindings map[string]any, boundSet map[string]bool) (Failure, bool) {
	if len(args) > len(params) {
		return Failure{Code: codes.TooManyArguments, Message: "Too many arguments supplied."}, false
	}
	for i, arg := range args {
		if fail, ok := bindOne(params[i], arg, outerScope, env, bindings, boundSet); !ok {
			return fail, false
		}
	}
	return Failure{}, true
}

func bindOne(param dsl.Param, valueExpr dsl.Expr, outerScope scope.Scope, env exprs.Env, bindings map[string]any, boundSet map[string]bool) (Failure, bool) {
	if boundSet[param.Name] {
		return Failure{Code: codes.DuplicateArgument, Message: "Argument bound more than once: " + param.Name}, false
	}
	res := env.Evaluate(valueExpr, augmentedScope(outerScope, bindings))
	if !res.OK {
		return Failure{Code: codes.Code(res.Code), Message: "Failed to evaluate argument for " + param.Name}, false
	}
	bindings[param.Name] = res.Value
	boundSet[param.Name] = true
	return Failure{}, true
}

func applyDefaults(params []dsl.Param, outerScope scope.Scope, env exprs.Env, bindings map[string]any, boundSet map[string]bool) (Failure, bool) {
	for _, param := range params {
		if boundSet[param.Name] || param.Default == nil {
			continue
		}
		res := env.Evaluate(param.Default, augmentedScope(outerScope, bindings))
		if !res.OK {
			code := codes.Code(res.Code)
			if code == "" {
				code = codes.InvalidExpression
			}
			return Failure{Code: code, Message: "Failed to evaluate default for " + param.Name}, false
		}
		bindings[param.Name] = res.Value
		boundSet[param.Name] = true
	}
	return Failure{}, true
}

func checkRequired(params []dsl.Param, boundSet map[string]bool) (Failure, bool) {
	for _, param := range params {
		if !boundSet[param.Name] {
			return Failure{Code: codes.MissingArgument, Message: "Missing required argument: " + param.Name}, false
		}
	}
	return Failure{}, true
}

func checkHints(params []dsl.Param, bindings map[string]any, boundSet map[string]bool, checkHint TypeHintChecker) (Failure, bool) {
	if checkHint == nil {
		return Failure{}, true
	}
	for _, param := range params {
		if param.Hint == "" || !boundSet[param.Name] {
			continue
		}
		value := bindings[param.Name]
		matches, hintKnown := checkHint(value, param.Hint)
		if !hintKnown {
			continue // unknown type hints are silently tolerated
		}
		if !matches {
			return Failure{
				Code:    codes.TypeMismatch,
				Message: "Argument " + param.Name + " does not satisfy type hint " + param.Hint,
			}, false
		}
	}
	return Failure{}, true
}

func findParam(params []dsl.Param, name string) (dsl.Param, bool) {
	for _, p := range params {
		if p.Name == name {
			return p, true
		}
	}
	return dsl.Param{}, false
}

// augmentedScope extends outerScope's variables with the arguments bound so
// far, each visible under both "name" and "$name" (spec §4.4: default
// expressions and §4.3.2: the validator scope's variable extension use the
// same dual-visibility rule).
func augmentedScope(outerScope scope.Scope, bound map[string]any) scope.Scope {
	if len(bound) == 0 {
		return outerScope
	}
	extra := make(map[string]any, len(bound)*2)
	for name, value := range bound {
		extra[name] = value
		extra["$"+name] = value
	}
	return outerScope.WithVariables(extra)
}
