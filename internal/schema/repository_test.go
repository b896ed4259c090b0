package schema

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scedel-lang/scedel-go/internal/dsl"
)

func TestRegisterAndLookupType(t *testing.T) {
	repo := NewMapRepository()
	repo.RegisterType("Name", UserTypeDef{Expr: dsl.Named{Name: "String"}})

	def, found := repo.LookupType("Name")
	require.True(t, found)
	userDef, ok := def.(UserTypeDef)
	require.True(t, ok)
	assert.Equal(t, dsl.Named{Name: "String"}, userDef.Expr)

	_, found = repo.LookupType("Missing")
	assert.False(t, found)
}

func TestRegisterAndLookupValidator(t *testing.T) {
	repo := NewMapRepository()
	repo.RegisterValidator("String", "nonBlank", UserValidatorDef{TargetType: "String", Name: "nonBlank"})

	def, found := repo.LookupValidator("String", "nonBlank")
	require.True(t, found)
	_, ok := def.(UserValidatorDef)
	assert.True(t, ok)

	_, found = repo.LookupValidator("String", "missing")
	assert.False(t, found)

	_, found = repo.LookupValidator("Int", "nonBlank")
	assert.False(t, found, "validator key is scoped by target type")
}

func TestTypeNamesSortedSnapshot(t *testing.T) {
	repo := NewMapRepository()
	repo.RegisterType("Zeta", UserTypeDef{})
	repo.RegisterType("Alpha", UserTypeDef{})

	assert.Equal(t, []string{"Alpha", "Zeta"}, repo.TypeNames())
}

func TestUserTypeNamesExcludesBuiltins(t *testing.T) {
	repo := NewMapRepository()
	repo.RegisterType("String", BuiltinTypeDef{Matches: func(any) bool { return true }})
	repo.RegisterType("Account", UserTypeDef{})

	assert.Equal(t, []string{"Account"}, repo.UserTypeNames())
}

func TestRegisterTypeOverwritesExisting(t *testing.T) {
	repo := NewMapRepository()
	repo.RegisterType("Thing", UserTypeDef{Expr: dsl.Named{Name: "String"}})
	repo.RegisterType("Thing", UserTypeDef{Expr: dsl.Named{Name: "Int"}})

	def, _ := repo.LookupType("Thing")
	assert.Equal(t, dsl.Named{Name: "Int"}, def.(UserTypeDef).Expr)
}

func TestConcurrentReadsDoNotRace(t *testing.T) {
	repo := NewMapRepository()
	repo.RegisterType("String", BuiltinTypeDef{Matches: func(any) bool { return true }})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.LookupType("String")
			_ = repo.TypeNames()
		}()
	}
	wg.Wait()
}
