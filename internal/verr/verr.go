// Package verr defines the validation error value and the accumulator
// threaded through the Type Matcher's recursion (spec §3 "Validation
// error", §5 "error accumulator"). It is internal so the Type Matcher,
// Constraint Applier, and Orchestrator can share one shape without the
// root public package creating an import cycle; the root package
// re-exports this shape under its own exported names.
package verr

import "github.com/scedel-lang/scedel-go/internal/codes"

// Error is one emitted validation failure.
type Error struct {
	Path     string
	Message  string
	Code     codes.Code
	Category codes.Category
}

// List is the append-only accumulator threaded through a single validate()
// call (spec §5: call-local, no shared mutable state across calls).
type List struct {
	errors []Error
}

// Add appends an error whose Category is codes.CategoryFor(code) (for
// example, InvalidExpression gets TypeError). Callers that need another
// category use AddWithCategory.
func (l *List) Add(path, message string, code codes.Code) {
	l.errors = append(l.errors, Error{Path: path, Message: message, Code: code, Category: codes.CategoryFor(code)})
}

// AddWithCategory appends an error with an explicit category override, for
// the Orchestrator's JSON-decode-failure case (InvalidExpression paired
// with ParseError rather than CategoryFor's default TypeError).
func (l *List) AddWithCategory(path, message string, code codes.Code, category codes.Category) {
	l.errors = append(l.errors, Error{Path: path, Message: message, Code: code, Category: category})
}

// Errors returns the accumulated errors in traversal order.
func (l *List) Errors() []Error {
	return l.errors
}

// Len reports how many errors have been accumulated so far, used to detect
// whether a sub-traversal (e.g. a union branch) added anything.
func (l *List) Len() int {
	return len(l.errors)
}
