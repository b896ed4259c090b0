package jsonvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsObjectAndIsArray(t *testing.T) {
	assert.True(t, IsObject(map[string]any{"a": 1}))
	assert.False(t, IsObject([]any{1, 2}))
	assert.False(t, IsObject("nope"))

	assert.True(t, IsArray([]any{1, 2}))
	assert.False(t, IsArray(map[string]any{}))
}

func TestAsObjectAndAsArray(t *testing.T) {
	obj, ok := AsObject(map[string]any{"a": 1})
	assert.True(t, ok)
	assert.Equal(t, 1, obj["a"])

	_, ok = AsObject(42)
	assert.False(t, ok)

	arr, ok := AsArray([]any{"x", "y"})
	assert.True(t, ok)
	assert.Equal(t, []any{"x", "y"}, arr)

	_, ok = AsArray(map[string]any{})
	assert.False(t, ok)
}

func TestLookupAndHas(t *testing.T) {
	obj := map[string]any{"name": "ada"}

	v, ok := Lookup(obj, "name")
	assert.True(t, ok)
	assert.Equal(t, "ada", v)

	_, ok = Lookup(obj, "missing")
	assert.False(t, ok)

	_, ok = Lookup("not an object", "name")
	assert.False(t, ok)

	assert.True(t, Has(obj, "name"))
	assert.False(t, Has(obj, "missing"))
}

func TestSortedKeysIsDeterministic(t *testing.T) {
	obj := map[string]any{"zeta": 1, "alpha": 2, "mid": 3}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, SortedKeys(obj))
	assert.Empty(t, SortedKeys(map[string]any{}))
}

func TestIsNull(t *testing.T) {
	assert.True(t, IsNull(nil))
	assert.False(t, IsNull(0))
	assert.False(t, IsNull(""))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("a", "a"))
	assert.True(t, Equal(1.0, 1.0))
	assert.False(t, Equal(1.0, "1"))
	assert.True(t, Equal([]any{1.0, "x"}, []any{1.0, "x"}))
	assert.False(t, Equal([]any{1.0}, []any{2.0}))
	assert.True(t, Equal(map[string]any{"a": 1.0}, map[string]any{"a": 1.0}))
}
