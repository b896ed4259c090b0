// Package schema defines the read-only lookup contract the engine consumes
// (spec §3 "Schema repository") and a concrete, concurrency-safe in-memory
// implementation. Building this repository from Schema DSL source text is
// out of scope (spec §1); this package only fixes the shape the rest of
// the engine depends on, grounded on the teacher's registration-under-
// concurrent-access pattern in registry.go (sync-guarded maps mutated via
// explicit Register* calls, read freely afterwards).
package schema

import (
	"sort"
	"sync"

	"github.com/scedel-lang/scedel-go/internal/dsl"
)

// TypeDef is either a built-in type (opaque predicate, spec §1 non-goals)
// or a user-defined type (an inner type expression).
type TypeDef interface {
	typeDef()
}

// BuiltinTypeDef wraps an opaque `(value) -> bool` predicate supplied by
// the (out-of-scope) built-in type catalogue.
type BuiltinTypeDef struct {
	Matches func(value any) bool
}

// UserTypeDef is a schema-author-defined type: validating a value against
// it means validating against Expr.
type UserTypeDef struct {
	Expr dsl.TypeExpr
}

func (BuiltinTypeDef) typeDef() {}
func (UserTypeDef) typeDef()    {}

// ValidatorDef is either a built-in validator (opaque predicate) or a
// user-defined validator (parameter list + body).
type ValidatorDef interface {
	validatorDef()
}

// BuiltinValidatorDef wraps an opaque `(value, argument?) -> bool|undefined`
// predicate. Evaluate returns (result, defined): defined=false models the
// spec's "undefined" outcome.
type BuiltinValidatorDef struct {
	RequiresArgument bool
	Evaluate         func(value any, argument any, hasArgument bool) (result bool, defined bool)
}

// UserValidatorDef is a schema-author-defined validator.
type UserValidatorDef struct {
	TargetType string
	Name       string
	Params     []dsl.Param
	Body       dsl.ValidatorBody
}

func (BuiltinValidatorDef) validatorDef() {}
func (UserValidatorDef) validatorDef()    {}

// validatorKey identifies a validator by its target type and name.
type validatorKey struct {
	TargetType string
	Name       string
}

// Repository is the read-only lookup surface the engine depends on. A
// single validate() call treats it as immutable (spec §5); Register*
// methods below are for building a repository before validation begins.
type Repository interface {
	LookupType(name string) (TypeDef, bool)
	LookupValidator(targetType, name string) (ValidatorDef, bool)
	TypeNames() []string
}

// MapRepository is a concurrency-safe in-memory Repository. Multiple
// validate() calls may read it in parallel (spec §5); mutation is intended
// to happen once, before any concurrent reads start, via RegisterType /
// RegisterValidator.
type MapRepository struct {
	mu         sync.RWMutex
	types      map[string]TypeDef
	validators map[validatorKey]ValidatorDef
}

// NewMapRepository creates an empty repository ready for registration.
func NewMapRepository() *MapRepository {
	return &MapRepository{
		types:      make(map[string]TypeDef),
		validators: make(map[validatorKey]ValidatorDef),
	}
}

// RegisterType adds or replaces a type definition.
func (r *MapRepository) RegisterType(name string, def TypeDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[name] = def
}

// RegisterValidator adds or replaces a validator definition for
// (targetType, name).
func (r *MapRepository) RegisterValidator(targetType, name string, def ValidatorDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators[validatorKey{TargetType: targetType, Name: name}] = def
}

// LookupType implements Repository.
func (r *MapRepository) LookupType(name string) (TypeDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.types[name]
	return def, ok
}

// LookupValidator implements Repository.
func (r *MapRepository) LookupValidator(targetType, name string) (ValidatorDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.validators[validatorKey{TargetType: targetType, Name: name}]
	return def, ok
}

// TypeNames implements Repository, returning a sorted snapshot for
// deterministic error messages (spec §4.1 "Available types: <sorted
// list>").
func (r *MapRepository) TypeNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UserTypeNames returns the sorted names of user-defined types only, used
// by the Orchestrator's "exactly one user-defined type" root inference
// rule (spec §4.1 step 2).
func (r *MapRepository) UserTypeNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for name, def := range r.types {
		if _, ok := def.(UserTypeDef); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
