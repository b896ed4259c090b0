package schemaio

import (
	"encoding/json"
	"fmt"

	goccyjson "github.com/goccy/go-json"

	"github.com/scedel-lang/scedel-go/internal/dsl"
)

type kindTag struct {
	Kind string `json:"kind"`
}

func decodeTypeExpr(raw json.RawMessage) (dsl.TypeExpr, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("missing type expression")
	}
	var k kindTag
	if err := goccyjson.Unmarshal(raw, &k); err != nil {
		return nil, err
	}
	switch k.Kind {
	case "absent":
		return dsl.Absent{}, nil
	case "literal":
		var v struct {
			Value any `json:"value"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return dsl.Literal{Value: v.Value}, nil
	case "named":
		var v struct {
			Name        string          `json:"name"`
			Constraints []constraintRaw `json:"constraints"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		constraints, err := decodeConstraints(v.Constraints)
		if err != nil {
			return nil, err
		}
		return dsl.Named{Name: v.Name, Constraints: constraints}, nil
	case "nullableNamed":
		var v struct {
			Name string `json:"name"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return dsl.NullableNamed{Name: v.Name}, nil
	case "nullable":
		var v struct {
			Inner json.RawMessage `json:"inner"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		inner, err := decodeTypeExpr(v.Inner)
		if err != nil {
			return nil, err
		}
		return dsl.Nullable{Inner: inner}, nil
	case "array":
		var v struct {
			Item        json.RawMessage `json:"item"`
			Constraints []constraintRaw `json:"constraints"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		item, err := decodeTypeExpr(v.Item)
		if err != nil {
			return nil, err
		}
		constraints, err := decodeConstraints(v.Constraints)
		if err != nil {
			return nil, err
		}
		return dsl.Array{Item: item, Constraints: constraints}, nil
	case "record":
		var v struct {
			Fields []fieldRaw `json:"fields"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		fields := make([]dsl.Field, 0, len(v.Fields))
		for _, f := range v.Fields {
			ft, err := decodeTypeExpr(f.Type)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Name, err)
			}
			field := dsl.Field{Name: f.Name, Type: ft, Optional: f.Optional}
			if len(f.Default) > 0 {
				def, err := decodeExpr(f.Default)
				if err != nil {
					return nil, fmt.Errorf("field %q default: %w", f.Name, err)
				}
				field.Default = def
			}
			fields = append(fields, field)
		}
		return dsl.Record{Fields: fields}, nil
	case "dict":
		var v struct {
			KeyType   json.RawMessage `json:"keyType"`
			ValueType json.RawMessage `json:"valueType"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		keyType, err := decodeTypeExpr(v.KeyType)
		if err != nil {
			return nil, err
		}
		valueType, err := decodeTypeExpr(v.ValueType)
		if err != nil {
			return nil, err
		}
		return dsl.Dict{KeyType: keyType, ValueType: valueType}, nil
	case "union":
		items, err := decodeTypeExprList(raw)
		if err != nil {
			return nil, err
		}
		return dsl.Union{Items: items}, nil
	case "intersection":
		items, err := decodeTypeExprList(raw)
		if err != nil {
			return nil, err
		}
		return dsl.Intersection{Items: items}, nil
	case "conditional":
		var v struct {
			Cond json.RawMessage `json:"cond"`
			Then json.RawMessage `json:"then"`
			Else json.RawMessage `json:"else"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		cond, err := decodePredicate(v.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeTypeExpr(v.Then)
		if err != nil {
			return nil, err
		}
		els, err := decodeTypeExpr(v.Else)
		if err != nil {
			return nil, err
		}
		return dsl.Conditional{Cond: cond, Then: then, Else: els}, nil
	default:
		return nil, fmt.Errorf("unknown type expression kind %q", k.Kind)
	}
}

func decodeTypeExprList(raw json.RawMessage) ([]dsl.TypeExpr, error) {
	var v struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := goccyjson.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	out := make([]dsl.TypeExpr, 0, len(v.Items))
	for _, item := range v.Items {
		te, err := decodeTypeExpr(item)
		if err != nil {
			return nil, err
		}
		out = append(out, te)
	}
	return out, nil
}

type fieldRaw struct {
	Name     string          `json:"name"`
	Type     json.RawMessage `json:"type"`
	Optional bool            `json:"optional"`
	Default  json.RawMessage `json:"default"`
}

type constraintRaw struct {
	Name           string            `json:"name"`
	Negated        bool              `json:"negated"`
	UsesCallSyntax bool              `json:"usesCallSyntax"`
	CallArgs       []callArgRaw      `json:"callArgs"`
	LegacyArg      json.RawMessage   `json:"legacyArg"`
	LegacyArgs     []json.RawMessage `json:"legacyArgs"`
}

type callArgRaw struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

func decodeConstraints(raws []constraintRaw) ([]dsl.Constraint, error) {
	out := make([]dsl.Constraint, 0, len(raws))
	for _, r := range raws {
		c := dsl.Constraint{Name: r.Name, Negated: r.Negated, UsesCallSyntax: r.UsesCallSyntax}
		if len(r.CallArgs) > 0 {
			c.UsesCallSyntax = true
			args := make([]dsl.CallArg, 0, len(r.CallArgs))
			for _, a := range r.CallArgs {
				val, err := decodeExpr(a.Value)
				if err != nil {
					return nil, fmt.Errorf("constraint %q arg %q: %w", r.Name, a.Name, err)
				}
				args = append(args, dsl.CallArg{Name: a.Name, Value: val})
			}
			c.CallArgs = args
		}
		if len(r.LegacyArg) > 0 {
			val, err := decodeExpr(r.LegacyArg)
			if err != nil {
				return nil, fmt.Errorf("constraint %q legacy arg: %w", r.Name, err)
			}
			c.LegacyArg = val
		}
		if len(r.LegacyArgs) > 0 {
			args := make([]dsl.Expr, 0, len(r.LegacyArgs))
			for _, a := range r.LegacyArgs {
				val, err := decodeExpr(a)
				if err != nil {
					return nil, fmt.Errorf("constraint %q legacy args: %w", r.Name, err)
				}
				args = append(args, val)
			}
			c.LegacyArgs = args
		}
		out = append(out, c)
	}
	return out, nil
}

func decodeExpr(raw json.RawMessage) (dsl.Expr, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("missing expression")
	}
	var k kindTag
	if err := goccyjson.Unmarshal(raw, &k); err != nil {
		return nil, err
	}
	switch k.Kind {
	case "str":
		var v struct {
			Value string `json:"value"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return dsl.StrLit{Value: v.Value}, nil
	case "num":
		var v struct {
			Value float64 `json:"value"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return dsl.NumLit{Value: v.Value}, nil
	case "duration":
		var v struct {
			Millis int64 `json:"millis"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return dsl.DurationLit{Millis: v.Millis}, nil
	case "bool":
		var v struct {
			Value bool `json:"value"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return dsl.BoolLit{Value: v.Value}, nil
	case "null":
		return dsl.NullLit{}, nil
	case "emptyArray":
		return dsl.EmptyArray{}, nil
	case "path":
		var v struct {
			Root     string   `json:"root"`
			Name     string   `json:"name"`
			Segments []string `json:"segments"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		rootKind, err := decodeRootKind(v.Root)
		if err != nil {
			return nil, err
		}
		return dsl.Path{RootKind: rootKind, RootName: v.Name, Segments: v.Segments}, nil
	case "unary":
		var v struct {
			Op      string          `json:"op"`
			Operand json.RawMessage `json:"operand"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		operand, err := decodeExpr(v.Operand)
		if err != nil {
			return nil, err
		}
		return dsl.UnaryArith{Op: v.Op, Operand: operand}, nil
	case "binary":
		var v struct {
			Op    string          `json:"op"`
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		left, err := decodeExpr(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(v.Right)
		if err != nil {
			return nil, err
		}
		return dsl.BinaryArith{Op: v.Op, Left: left, Right: right}, nil
	case "call":
		var v struct {
			Name string `json:"name"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return dsl.Call{Name: v.Name}, nil
	case "predicate":
		var v struct {
			Pred json.RawMessage `json:"pred"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		pred, err := decodePredicate(v.Pred)
		if err != nil {
			return nil, err
		}
		return dsl.PredicateAsExpr{Pred: pred}, nil
	default:
		return nil, fmt.Errorf("unknown expression kind %q", k.Kind)
	}
}

func decodeRootKind(s string) (dsl.RootKind, error) {
	switch s {
	case "this":
		return dsl.ThisRoot, nil
	case "parent":
		return dsl.ParentRoot, nil
	case "root":
		return dsl.RootRoot, nil
	case "identifier":
		return dsl.IdentifierRoot, nil
	case "variable":
		return dsl.VariableRoot, nil
	default:
		return 0, fmt.Errorf("unknown path root kind %q", s)
	}
}

func decodePredicate(raw json.RawMessage) (dsl.PredicateExpr, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("missing predicate")
	}
	var k kindTag
	if err := goccyjson.Unmarshal(raw, &k); err != nil {
		return nil, err
	}
	switch k.Kind {
	case "not":
		var v struct {
			Operand json.RawMessage `json:"operand"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		operand, err := decodePredicate(v.Operand)
		if err != nil {
			return nil, err
		}
		return dsl.Not{Operand: operand}, nil
	case "and", "or":
		var v struct {
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		left, err := decodePredicate(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodePredicate(v.Right)
		if err != nil {
			return nil, err
		}
		if k.Kind == "and" {
			return dsl.And{Left: left, Right: right}, nil
		}
		return dsl.Or{Left: left, Right: right}, nil
	case "compare":
		var v struct {
			Left  json.RawMessage `json:"left"`
			Op    string          `json:"op"`
			Right json.RawMessage `json:"right"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		left, err := decodeExpr(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(v.Right)
		if err != nil {
			return nil, err
		}
		return dsl.Compare{Left: left, Op: v.Op, Right: right}, nil
	case "matches":
		var v struct {
			Target  json.RawMessage `json:"target"`
			Pattern string          `json:"pattern"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		target, err := decodeExpr(v.Target)
		if err != nil {
			return nil, err
		}
		return dsl.Matches{Target: target, Pattern: v.Pattern}, nil
	case "expr":
		var v struct {
			Value json.RawMessage `json:"value"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		val, err := decodeExpr(v.Value)
		if err != nil {
			return nil, err
		}
		return dsl.ExprAsPredicate{Value: val}, nil
	default:
		return nil, fmt.Errorf("unknown predicate kind %q", k.Kind)
	}
}

func decodeValidatorBody(raw json.RawMessage) (dsl.ValidatorBody, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("missing validator body")
	}
	var k kindTag
	if err := goccyjson.Unmarshal(raw, &k); err != nil {
		return nil, err
	}
	switch k.Kind {
	case "regex":
		var v struct {
			Pattern string `json:"pattern"`
			Negated bool   `json:"negated"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return dsl.RegexBody{Pattern: v.Pattern, Negated: v.Negated}, nil
	case "predicate":
		var v struct {
			Pred json.RawMessage `json:"pred"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		pred, err := decodePredicate(v.Pred)
		if err != nil {
			return nil, err
		}
		return dsl.PredicateBody{Pred: pred}, nil
	case "objectRegex":
		var v struct {
			Pattern string `json:"pattern"`
			Negated bool   `json:"negated"`
			Message string `json:"message"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return dsl.ObjectRegexBody{Pattern: v.Pattern, Negated: v.Negated, Message: v.Message}, nil
	case "objectPredicate":
		var v struct {
			Pred    json.RawMessage `json:"pred"`
			Message string          `json:"message"`
		}
		if err := goccyjson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		pred, err := decodePredicate(v.Pred)
		if err != nil {
			return nil, err
		}
		return dsl.ObjectPredicateBody{Pred: pred, Message: v.Message}, nil
	default:
		return nil, fmt.Errorf("unknown validator body kind %q", k.Kind)
	}
}
