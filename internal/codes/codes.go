// Package codes centralizes the engine's closed error-code and
// error-category enumerations (spec §6) so every internal package
// (expression evaluator, binder, constraint applier, type matcher) and the
// public root package agree on the exact wire values without importing
// each other.
package codes

// Code is one of the closed set of machine-readable error codes.
type Code string

const (
	InvalidExpression   Code = "InvalidExpression"
	InvalidArithmetic   Code = "InvalidArithmetic"
	ParentUndefined     Code = "ParentUndefined"
	UnknownType         Code = "UnknownType"
	UnknownConstraint   Code = "UnknownConstraint"
	UnknownField        Code = "UnknownField"
	UnknownArgumentName Code = "UnknownArgumentName"
	MissingArgument     Code = "MissingArgument"
	TooManyArguments    Code = "TooManyArguments"
	DuplicateArgument   Code = "DuplicateArgument"
	ConstraintViolation Code = "ConstraintViolation"
	ValidatorFailed     Code = "ValidatorFailed"
	FieldMissing        Code = "FieldMissing"
	FieldMustBeAbsent   Code = "FieldMustBeAbsent"
	TypeMismatch        Code = "TypeMismatch"
)

// Category is one of the closed set of error categories.
type Category string

const (
	ParseError      Category = "ParseError"
	TypeError       Category = "TypeError"
	SemanticError   Category = "SemanticError"
	ValidationError Category = "ValidationError"
)

// CategoryFor returns the default category for a code, per the taxonomy in
// spec §7. Call sites that need a different category for the same code in
// context (there are none in this spec) would override explicitly; every
// code here maps to exactly one category.
func CategoryFor(code Code) Category {
	switch code {
	case InvalidExpression, InvalidArithmetic, ParentUndefined, UnknownType, TypeMismatch:
		return TypeError
	case UnknownConstraint, UnknownField:
		return SemanticError
	default:
		return ValidationError
	}
}
