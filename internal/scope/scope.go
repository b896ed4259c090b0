// Package scope implements the immutable lexical frame threaded through
// expression and type-matcher evaluation (spec §3, §9 "immutable scope
// frames"). Frames are derived by structural copy-on-write; a parent scope
// is never mutated when a child is created.
package scope

// Scope is the lexical frame {root, current, parent, variables}. Parent
// holds the enclosing value, not a nested Scope: spec §4.5.3 resolves
// `PARENT` to "scope.parent" as a value, and §4.3.2 sets a validator
// scope's parent to "the outer scope's current" (also a value). HasParent
// distinguishes "no parent" (root scope) from "parent is the JSON null
// value", which spec §4.5.3 treats differently: ParentUndefined only fires
// when there genuinely is no parent frame.
type Scope struct {
	Root      any
	Current   any
	Parent    any
	HasParent bool
	Variables map[string]any
}

// New creates the root scope seeded by the Orchestrator (spec §4.1 step 3).
func New(root any) Scope {
	return Scope{
		Root:      root,
		Current:   root,
		HasParent: false,
		Variables: map[string]any{},
	}
}

// Child derives a scope for descending into value, with this scope's
// Current becoming the child's Parent. The variable map is shared by
// reference since it is never mutated in place (copy-on-write happens in
// WithVariables).
func (s Scope) Child(value any) Scope {
	return Scope{
		Root:      s.Root,
		Current:   value,
		Parent:    s.Current,
		HasParent: true,
		Variables: s.Variables,
	}
}

// WithCurrent derives a scope identical to s but with a different Current,
// preserving Parent/HasParent. The matcher uses it to descend into a record
// field's value while keeping the record's frame (Parent unchanged).
func (s Scope) WithCurrent(value any) Scope {
	n := s
	n.Current = value
	return n
}

// WithVariables derives a scope whose variable map extends s.Variables with
// extra, without mutating s.Variables. Keys in extra shadow keys in s.
func (s Scope) WithVariables(extra map[string]any) Scope {
	merged := make(map[string]any, len(s.Variables)+len(extra))
	for k, v := range s.Variables {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	n := s
	n.Variables = merged
	return n
}
