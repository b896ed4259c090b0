package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const simpleSchema = `{
	"types": {
		"Root": {
			"kind": "record",
			"fields": [
				{"name": "name", "type": {"kind": "named", "name": "String"}}
			]
		}
	}
}`

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestRunValidDocumentExitsZero(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", simpleSchema)

	code := run([]string{`{"name": "ada"}`, schemaPath})
	require.Equal(t, 0, code)
}

func TestRunInvalidDocumentExitsOne(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", simpleSchema)

	code := run([]string{`{"name": 42}`, schemaPath})
	require.Equal(t, 1, code)
}

func TestRunMissingArgsExitsTwo(t *testing.T) {
	code := run([]string{"onlyone"})
	require.Equal(t, 2, code)
}

func TestRunUnreadableSchemaExitsTwo(t *testing.T) {
	code := run([]string{`{"name": "ada"}`, "/nonexistent/schema.json"})
	require.Equal(t, 2, code)
}

func TestRunMalformedSchemaExitsTwo(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", `{not json`)

	code := run([]string{`{"name": "ada"}`, schemaPath})
	require.Equal(t, 2, code)
}

func TestRunReadsJSONFromFilePath(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", simpleSchema)
	jsonPath := writeFile(t, dir, "doc.json", `{"name": "ada"}`)

	code := run([]string{jsonPath, schemaPath})
	require.Equal(t, 0, code)
}

func TestRunExplicitRootTypeFlag(t *testing.T) {
	dir := t.TempDir()
	schema := `{
		"types": {
			"Username": {"kind": "named", "name": "String"}
		}
	}`
	schemaPath := writeFile(t, dir, "schema.json", schema)

	code := run([]string{"-type", "Username", `"ada"`, schemaPath})
	require.Equal(t, 0, code)
}

func TestRunUnknownFlagExitsTwo(t *testing.T) {
	code := run([]string{"-bogus", "x", "y", "z"})
	require.Equal(t, 2, code)
}
