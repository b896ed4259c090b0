package scedel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scedel-lang/scedel-go/internal/dsl"
	"github.com/scedel-lang/scedel-go/internal/schema"
)

func TestValidateSimpleRootTypeValid(t *testing.T) {
	repo := NewBuiltinRepository()
	repo.RegisterType("Root", schema.UserTypeDef{Expr: dsl.Record{Fields: []dsl.Field{
		{Name: "name", Type: dsl.Named{Name: "String"}},
	}}})

	errs := Validate(map[string]any{"name": "ada"}, repo, "")
	assert.Empty(t, errs)
}

func TestValidateSimpleRootTypeInvalid(t *testing.T) {
	repo := NewBuiltinRepository()
	repo.RegisterType("Root", schema.UserTypeDef{Expr: dsl.Record{Fields: []dsl.Field{
		{Name: "name", Type: dsl.Named{Name: "String"}},
	}}})

	errs := Validate(map[string]any{"name": 42.0}, repo, "")
	require.Len(t, errs, 1)
	assert.Equal(t, "$.name", errs[0].Path)
	assert.Equal(t, TypeMismatch, errs[0].Code)
}

func TestValidateAcceptsRawJSONString(t *testing.T) {
	repo := NewBuiltinRepository()
	repo.RegisterType("Root", schema.UserTypeDef{Expr: dsl.Named{Name: "String"}})

	errs := Validate(`"hello"`, repo, "")
	assert.Empty(t, errs)
}

func TestValidateAcceptsRawJSONBytes(t *testing.T) {
	repo := NewBuiltinRepository()
	repo.RegisterType("Root", schema.UserTypeDef{Expr: dsl.Named{Name: "Int"}})

	errs := Validate([]byte(`5`), repo, "")
	assert.Empty(t, errs)
}

func TestValidateMalformedJSONYieldsParseError(t *testing.T) {
	repo := NewBuiltinRepository()
	repo.RegisterType("Root", schema.UserTypeDef{Expr: dsl.Named{Name: "String"}})

	errs := Validate(`{not json`, repo, "")
	require.Len(t, errs, 1)
	assert.Equal(t, ParseError, errs[0].Category)
	assert.Equal(t, InvalidExpression, errs[0].Code)
}

func TestValidateExplicitRootTypeOverridesInference(t *testing.T) {
	repo := NewBuiltinRepository()
	repo.RegisterType("Root", schema.UserTypeDef{Expr: dsl.Named{Name: "String"}})
	repo.RegisterType("Other", schema.UserTypeDef{Expr: dsl.Named{Name: "Int"}})

	errs := Validate(7.0, repo, "Other")
	assert.Empty(t, errs)
}

func TestValidateExplicitRootTypeUnknownYieldsUnknownType(t *testing.T) {
	repo := NewBuiltinRepository()

	errs := Validate(map[string]any{}, repo, "Nonexistent")
	require.Len(t, errs, 1)
	assert.Equal(t, UnknownType, errs[0].Code)
	assert.Equal(t, "$", errs[0].Path)
}

func TestValidateSingleUserTypeInferredWhenNoRoot(t *testing.T) {
	repo := NewBuiltinRepository()
	repo.RegisterType("OnlyType", schema.UserTypeDef{Expr: dsl.Named{Name: "Bool"}})

	errs := Validate(true, repo, "")
	assert.Empty(t, errs)
}

func TestValidateAmbiguousInferenceYieldsError(t *testing.T) {
	repo := NewBuiltinRepository()
	repo.RegisterType("First", schema.UserTypeDef{Expr: dsl.Named{Name: "String"}})
	repo.RegisterType("Second", schema.UserTypeDef{Expr: dsl.Named{Name: "Int"}})

	errs := Validate(map[string]any{}, repo, "")
	require.Len(t, errs, 1)
	assert.Equal(t, UnknownType, errs[0].Code)
	assert.Contains(t, errs[0].Message, "Unable to infer root type")
}

func TestDefaultEngineOptionsUsesSpecDefault(t *testing.T) {
	opts := DefaultEngineOptions()
	assert.Equal(t, 64, opts.MaxTypeRecursionDepth)
}

func TestValidateAcceptsCustomMaxDepthOption(t *testing.T) {
	repo := NewBuiltinRepository()
	repo.RegisterType("Root", schema.UserTypeDef{Expr: dsl.Named{Name: "String"}})

	errs := Validate(`"ok"`, repo, "", EngineOptions{MaxTypeRecursionDepth: 2})
	assert.Empty(t, errs)
}

func TestValidateZeroMaxDepthOptionFallsBackToDefault(t *testing.T) {
	repo := NewBuiltinRepository()
	repo.RegisterType("Root", schema.UserTypeDef{Expr: dsl.Named{Name: "String"}})

	errs := Validate(`"ok"`, repo, "", EngineOptions{})
	assert.Empty(t, errs)
}

func TestNewBuiltinRepositoryHasCoreBuiltinTypes(t *testing.T) {
	repo := NewBuiltinRepository()
	for _, name := range []string{"String", "Int", "Number", "Bool"} {
		_, found := repo.LookupType(name)
		assert.True(t, found, "builtin type %q should be registered", name)
	}
}
