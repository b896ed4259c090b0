// Package schemaio loads a schema repository from a JSON document into an
// internal/schema.MapRepository. Parsing genuine Schema DSL source text
// into an AST is explicitly out of scope (spec §1); this package instead
// decodes a JSON *rendering* of that same AST shape (internal/dsl) so the
// CLI and tests have a concrete way to hand the engine a schema without
// hand-building Go literals. Decoding uses goccy/go-json, mirroring the
// teacher pack's preferred JSON library (see kaptinlin-jsonschema).
package schemaio

import (
	"encoding/json"

	goccyjson "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/scedel-lang/scedel-go/internal/dsl"
	"github.com/scedel-lang/scedel-go/internal/schema"
)

// LoadRepository decodes doc (a JSON document, see package doc for shape)
// and registers every user-defined type and validator it declares into
// repo. Built-in types/validators are expected to already be present
// (e.g. via internal/builtins.Register) since this loader only ever
// produces schema.UserTypeDef / schema.UserValidatorDef entries.
func LoadRepository(doc []byte, repo *schema.MapRepository) error {
	var root struct {
		Types      map[string]json.RawMessage `json:"types"`
		Validators []json.RawMessage          `json:"validators"`
	}
	if err := goccyjson.Unmarshal(doc, &root); err != nil {
		return errors.Wrap(err, "decode schema document")
	}
	for name, raw := range root.Types {
		expr, err := decodeTypeExpr(raw)
		if err != nil {
			return errors.Wrapf(err, "type %q", name)
		}
		repo.RegisterType(name, schema.UserTypeDef{Expr: expr})
	}
	for i, raw := range root.Validators {
		var v struct {
			TargetType string          `json:"targetType"`
			Name       string          `json:"name"`
			Params     []paramJSON     `json:"params"`
			Body       json.RawMessage `json:"body"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return errors.Wrapf(err, "validator[%d]", i)
		}
		body, err := decodeValidatorBody(v.Body)
		if err != nil {
			return errors.Wrapf(err, "validator %s(%s)", v.TargetType, v.Name)
		}
		params := make([]dsl.Param, 0, len(v.Params))
		for _, p := range v.Params {
			param := dsl.Param{Name: p.Name, Hint: p.Hint}
			if len(p.Default) > 0 {
				def, err := decodeExpr(p.Default)
				if err != nil {
					return errors.Wrapf(err, "validator %s(%s) param %s default", v.TargetType, v.Name, p.Name)
				}
				param.Default = def
			}
			params = append(params, param)
		}
		repo.RegisterValidator(v.TargetType, v.Name, schema.UserValidatorDef{
			TargetType: v.TargetType,
			Name:       v.Name,
			Params:     params,
			Body:       body,
		})
	}
	return nil
}

type paramJSON struct {
	Name    string          `json:"name"`
	Hint    string          `json:"hint"`
	Default json.RawMessage `json:"default"`
}
