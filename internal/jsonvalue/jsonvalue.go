// Package jsonvalue gives the engine uniform access to decoded JSON values
// (as produced by encoding/json or github.com/goccy/go-json unmarshaling
// into `any`): object-like key lookup/enumeration and list-vs-map
// discrimination. There is no third-party library in the retrieval pack
// that does generic any-shaped JSON introspection; this is plain type
// assertion over the handful of shapes `any` can hold after JSON decoding,
// so it stays on the standard library by necessity rather than choice.
package jsonvalue

import (
	"reflect"
	"sort"
)

// IsObject reports whether v decodes as a JSON object.
func IsObject(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

// IsArray reports whether v decodes as a JSON array.
func IsArray(v any) bool {
	_, ok := v.([]any)
	return ok
}

// AsObject returns v as a JSON object and whether the assertion succeeded.
func AsObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// AsArray returns v as a JSON array and whether the assertion succeeded.
func AsArray(v any) ([]any, bool) {
	a, ok := v.([]any)
	return a, ok
}

// Lookup returns the value of key in an object-like v. ok is false when v
// is not object-like or the key is absent.
func Lookup(v any, key string) (any, bool) {
	obj, isObj := AsObject(v)
	if !isObj {
		return nil, false
	}
	val, present := obj[key]
	return val, present
}

// Has reports whether key is present in an object-like v.
func Has(v any, key string) bool {
	_, ok := Lookup(v, key)
	return ok
}

// SortedKeys returns an object's keys in a fixed, deterministic order
// (lexical), independent of Go's randomized map iteration order. The engine
// relies on this wherever an error-list order must be deterministic across
// repeated calls (spec §8 property 1) but the source has no declared field
// order to fall back on (Dict entries, unknown-field enumeration).
func SortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsNull reports whether v is the decoded JSON null value.
func IsNull(v any) bool {
	return v == nil
}

// Equal is strict equality between two already-evaluated values: same Go
// type, same contents. Used everywhere the spec calls for "strict
// equality" (Literal matching, §4.2; Compare ==/!=, §4.5.4) rather than
// permissive cross-type coercion.
func Equal(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
