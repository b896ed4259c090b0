// Package scedel implements the core of a JSON validation engine driven by
// a user-authored schema language: given a parsed schema repository and a
// decoded (or raw) JSON value, Validate walks the value in lockstep with a
// type expression tree, evaluates inline constraints and user-defined
// validators, and returns a structured list of validation errors.
//
// Parsing schema source text, the JSON decoder's transport, and CLI
// plumbing are external collaborators; see internal/schemaio and
// cmd/scedel for the reference implementations this module ships.
package scedel

import (
	goccyjson "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/scedel-lang/scedel-go/internal/builtins"
	"github.com/scedel-lang/scedel-go/internal/codes"
	"github.com/scedel-lang/scedel-go/internal/dsl"
	"github.com/scedel-lang/scedel-go/internal/exprs"
	"github.com/scedel-lang/scedel-go/internal/schema"
	"github.com/scedel-lang/scedel-go/internal/scope"
	"github.com/scedel-lang/scedel-go/internal/typematch"
	"github.com/scedel-lang/scedel-go/internal/verr"
)

// SupportedVersion is the Schema DSL version this engine implements.
const SupportedVersion = "0.14.2"

// ErrorCode is one of the engine's closed, machine-readable error codes.
type ErrorCode = codes.Code

// The closed set of error codes (spec §6).
const (
	InvalidExpression   = codes.InvalidExpression
	InvalidArithmetic   = codes.InvalidArithmetic
	ParentUndefined     = codes.ParentUndefined
	UnknownType         = codes.UnknownType
	UnknownConstraint   = codes.UnknownConstraint
	UnknownField        = codes.UnknownField
	UnknownArgumentName = codes.UnknownArgumentName
	MissingArgument     = codes.MissingArgument
	TooManyArguments    = codes.TooManyArguments
	DuplicateArgument   = codes.DuplicateArgument
	ConstraintViolation = codes.ConstraintViolation
	ValidatorFailed     = codes.ValidatorFailed
	FieldMissing        = codes.FieldMissing
	FieldMustBeAbsent   = codes.FieldMustBeAbsent
	TypeMismatch        = codes.TypeMismatch
)

// ErrorCategory is one of the engine's closed error categories.
type ErrorCategory = codes.Category

// The closed set of error categories (spec §6).
const (
	ParseError      = codes.ParseError
	TypeError       = codes.TypeError
	SemanticError   = codes.SemanticError
	ValidationError = codes.ValidationError
)

// Error is one reported validation failure.
type Error struct {
	Path     string
	Message  string
	Code     ErrorCode
	Category ErrorCategory
}

// EngineOptions configures Validate's behavior beyond the spec's fixed
// defaults. The only tunable the spec names is the type-name recursion
// bound (§4.2.2); everything else about the engine is deliberately not
// configurable, mirroring the teacher's narrow ValidatorOptions surface.
type EngineOptions struct {
	// MaxTypeRecursionDepth bounds nested resolutions of the same
	// user-defined type name. Zero uses the spec's default of 64.
	MaxTypeRecursionDepth int
}

// DefaultEngineOptions returns the spec's default engine configuration.
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{MaxTypeRecursionDepth: typematch.DefaultMaxDepth}
}

// NewBuiltinRepository returns a schema.MapRepository pre-populated with
// the engine's built-in type and validator catalogue (internal/builtins),
// ready for a schema loader to layer user-defined types and validators on
// top via RegisterType / RegisterValidator.
func NewBuiltinRepository() *schema.MapRepository {
	repo := schema.NewMapRepository()
	builtins.Register(repo)
	return repo
}

// Validate is the Orchestrator (spec §4.1). jsonInput is either an
// already-decoded value (map[string]any, []any, string, float64, bool,
// nil) or a raw JSON string/[]byte, decoded once via goccy/go-json.
// requestedRootType optionally pins the root type by name; omitted or
// empty defers to the repository-driven inference rules.
func Validate(jsonInput any, repo schema.Repository, requestedRootType string, opts ...EngineOptions) []Error {
	options := DefaultEngineOptions()
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.MaxTypeRecursionDepth <= 0 {
		options.MaxTypeRecursionDepth = typematch.DefaultMaxDepth
	}

	errs := &verr.List{}

	value, decodeErr := decode(jsonInput)
	if decodeErr != nil {
		errs.AddWithCategory("$", "Invalid JSON: "+decodeErr.Error(), codes.InvalidExpression, codes.ParseError)
		return toPublic(errs.Errors())
	}

	rootType, rootErr := resolveRootType(repo, requestedRootType)
	if rootErr != "" {
		errs.Add("$", rootErr, codes.UnknownType)
		return toPublic(errs.Errors())
	}

	env := exprs.DefaultEnv()
	matcher := typematch.New(repo, env)
	matcher.MaxDepth = options.MaxTypeRecursionDepth

	rootScope := scope.New(value)
	matcher.Match(dsl.Named{Name: rootType}, value, rootScope, "$", errs, map[string]int{})

	return toPublic(errs.Errors())
}

func decode(jsonInput any) (any, error) {
	switch v := jsonInput.(type) {
	case string:
		var out any
		if err := goccyjson.Unmarshal([]byte(v), &out); err != nil {
			return nil, errors.Wrap(err, "decode root JSON")
		}
		return out, nil
	case []byte:
		var out any
		if err := goccyjson.Unmarshal(v, &out); err != nil {
			return nil, errors.Wrap(err, "decode root JSON")
		}
		return out, nil
	default:
		return jsonInput, nil
	}
}

// resolveRootType implements spec §4.1 step 2. Returns (name, "") on
// success or ("", message) on failure; the message is empty iff the
// returned name is usable.
func resolveRootType(repo schema.Repository, requested string) (string, string) {
	if requested != "" {
		if _, found := repo.LookupType(requested); found {
			return requested, ""
		}
		return "", "Requested root type \"" + requested + "\" is not defined."
	}
	if _, found := repo.LookupType("Root"); found {
		return "Root", ""
	}
	if mapRepo, ok := repo.(*schema.MapRepository); ok {
		names := mapRepo.UserTypeNames()
		if len(names) == 1 {
			return names[0], ""
		}
	}
	return "", "Unable to infer root type. Available types: " + joinSorted(repo.TypeNames())
}

func joinSorted(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}

func toPublic(internalErrs []verr.Error) []Error {
	out := make([]Error, 0, len(internalErrs))
	for _, e := range internalErrs {
		out = append(out, Error{Path: e.Path, Message: e.Message, Code: e.Code, Category: e.Category})
	}
	return out
}
