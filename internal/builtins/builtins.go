// Package builtins supplies the catalogue of built-in types and validators
// the engine treats as opaque predicate objects (spec §1, §4.2, §4.3 treat
// built-ins as out of scope for their own definition, but something has to
// populate a repository for the engine to be useful end to end). The
// predicates here are adapted from the teacher's internal/constraints
// package (pedantigo), re-expressed as schema.BuiltinTypeDef /
// schema.BuiltinValidatorDef opaque objects instead of struct-tag-bound
// constraint types.
package builtins

import (
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/scedel-lang/scedel-go/internal/jsonvalue"
	"github.com/scedel-lang/scedel-go/internal/schema"
	"github.com/scedel-lang/scedel-go/internal/temporal"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)
	uuidRegex  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	alphaRegex = regexp.MustCompile(`^[a-zA-Z]+$`)
	alnumRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// Register populates repo with the engine's built-in type and validator
// catalogue. Callers that want a usable engine without authoring every
// built-in by hand (the CLI, tests) call this before loading any
// user-defined schema on top.
func Register(repo *schema.MapRepository) {
	registerTypes(repo)
	registerStringValidators(repo)
	registerNumericValidators(repo)
	registerArrayValidators(repo)
	registerGenericValidators(repo)
}

func registerTypes(repo *schema.MapRepository) {
	repo.RegisterType("String", schema.BuiltinTypeDef{Matches: func(v any) bool {
		_, ok := v.(string)
		return ok
	}})
	repo.RegisterType("Int", schema.BuiltinTypeDef{Matches: func(v any) bool {
		f, ok := v.(float64)
		return ok && f == float64(int64(f))
	}})
	repo.RegisterType("Float", schema.BuiltinTypeDef{Matches: func(v any) bool {
		_, ok := v.(float64)
		return ok
	}})
	repo.RegisterType("Number", schema.BuiltinTypeDef{Matches: func(v any) bool {
		_, ok := v.(float64)
		return ok
	}})
	repo.RegisterType("Bool", schema.BuiltinTypeDef{Matches: func(v any) bool {
		_, ok := v.(bool)
		return ok
	}})
	repo.RegisterType("Null", schema.BuiltinTypeDef{Matches: func(v any) bool {
		return v == nil
	}})
	repo.RegisterType("Any", schema.BuiltinTypeDef{Matches: func(v any) bool {
		return true
	}})
	repo.RegisterType("Array", schema.BuiltinTypeDef{Matches: func(v any) bool {
		return jsonvalue.IsArray(v)
	}})
	repo.RegisterType("Object", schema.BuiltinTypeDef{Matches: func(v any) bool {
		return jsonvalue.IsObject(v)
	}})
	repo.RegisterType("DateTime", schema.BuiltinTypeDef{Matches: func(v any) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		_, parsed := temporal.Parse(s)
		return parsed
	}})
}

// stringValidator adapts a (string) -> error-or-nil predicate from the
// teacher's constraint shape into an argument-free BuiltinValidatorDef:
// non-string values are "defined=false" (undefined), matching the spec's
// treatment of constraints applied to a value the predicate cannot judge.
func stringValidator(pred func(s string) bool) schema.BuiltinValidatorDef {
	return schema.BuiltinValidatorDef{
		Evaluate: func(value, _ any, _ bool) (bool, bool) {
			s, ok := value.(string)
			if !ok {
				return false, false
			}
			return pred(s), true
		},
	}
}

func registerStringValidators(repo *schema.MapRepository) {
	const t = "String"

	repo.RegisterValidator(t, "email", stringValidator(func(s string) bool {
		return s != "" && emailRegex.MatchString(s)
	}))
	repo.RegisterValidator(t, "uuid", stringValidator(func(s string) bool {
		return s != "" && uuidRegex.MatchString(s)
	}))
	repo.RegisterValidator(t, "alpha", stringValidator(func(s string) bool {
		return s != "" && alphaRegex.MatchString(s)
	}))
	repo.RegisterValidator(t, "alphanumeric", stringValidator(func(s string) bool {
		return s != "" && alnumRegex.MatchString(s)
	}))
	repo.RegisterValidator(t, "lowercase", stringValidator(func(s string) bool {
		return s != "" && s == strings.ToLower(s)
	}))
	repo.RegisterValidator(t, "uppercase", stringValidator(func(s string) bool {
		return s != "" && s == strings.ToUpper(s)
	}))
	repo.RegisterValidator(t, "ascii", stringValidator(func(s string) bool {
		for _, r := range s {
			if r > unicode.MaxASCII {
				return false
			}
		}
		return true
	}))
	repo.RegisterValidator(t, "url", stringValidator(func(s string) bool {
		if s == "" {
			return false
		}
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" {
			return false
		}
		return u.Host != "" || u.Path != "" || u.Opaque != ""
	}))
	repo.RegisterValidator(t, "httpUrl", stringValidator(func(s string) bool {
		u, err := url.Parse(s)
		if err != nil {
			return false
		}
		return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	}))
	repo.RegisterValidator(t, "ipv4", stringValidator(func(s string) bool {
		ip := net.ParseIP(s)
		return ip != nil && ip.To4() != nil
	}))
	repo.RegisterValidator(t, "ipv6", stringValidator(func(s string) bool {
		ip := net.ParseIP(s)
		return ip != nil && ip.To4() == nil
	}))
	repo.RegisterValidator(t, "hexadecimal", stringValidator(func(s string) bool {
		s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
		if s == "" {
			return false
		}
		for _, r := range s {
			isDigit := r >= '0' && r <= '9'
			isHex := (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
			if !isDigit && !isHex {
				return false
			}
		}
		return true
	}))

	repo.RegisterValidator(t, "length", schema.BuiltinValidatorDef{
		RequiresArgument: true,
		Evaluate: func(value, argument any, hasArgument bool) (bool, bool) {
			s, ok := value.(string)
			n, nOK := asInt(argument)
			if !ok || !hasArgument || !nOK {
				return false, false
			}
			return len([]rune(s)) == n, true
		},
	})
	repo.RegisterValidator(t, "minLength", schema.BuiltinValidatorDef{
		RequiresArgument: true,
		Evaluate: func(value, argument any, hasArgument bool) (bool, bool) {
			s, ok := value.(string)
			n, nOK := asInt(argument)
			if !ok || !hasArgument || !nOK {
				return false, false
			}
			return len([]rune(s)) >= n, true
		},
	})
	repo.RegisterValidator(t, "maxLength", schema.BuiltinValidatorDef{
		RequiresArgument: true,
		Evaluate: func(value, argument any, hasArgument bool) (bool, bool) {
			s, ok := value.(string)
			n, nOK := asInt(argument)
			if !ok || !hasArgument || !nOK {
				return false, false
			}
			return len([]rune(s)) <= n, true
		},
	})
	repo.RegisterValidator(t, "contains", schema.BuiltinValidatorDef{
		RequiresArgument: true,
		Evaluate: func(value, argument any, hasArgument bool) (bool, bool) {
			s, ok := value.(string)
			sub, subOK := argument.(string)
			if !ok || !hasArgument || !subOK {
				return false, false
			}
			return strings.Contains(s, sub), true
		},
	})
	repo.RegisterValidator(t, "startsWith", schema.BuiltinValidatorDef{
		RequiresArgument: true,
		Evaluate: func(value, argument any, hasArgument bool) (bool, bool) {
			s, ok := value.(string)
			prefix, prefixOK := argument.(string)
			if !ok || !hasArgument || !prefixOK {
				return false, false
			}
			return strings.HasPrefix(s, prefix), true
		},
	})
	repo.RegisterValidator(t, "endsWith", schema.BuiltinValidatorDef{
		RequiresArgument: true,
		Evaluate: func(value, argument any, hasArgument bool) (bool, bool) {
			s, ok := value.(string)
			suffix, suffixOK := argument.(string)
			if !ok || !hasArgument || !suffixOK {
				return false, false
			}
			return strings.HasSuffix(s, suffix), true
		},
	})
	repo.RegisterValidator(t, "pattern", schema.BuiltinValidatorDef{
		RequiresArgument: true,
		Evaluate: func(value, argument any, hasArgument bool) (bool, bool) {
			s, ok := value.(string)
			pattern, patOK := argument.(string)
			if !ok || !hasArgument || !patOK {
				return false, false
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return false, false
			}
			return re.MatchString(s), true
		},
	})
	repo.RegisterValidator(t, "datetime", schema.BuiltinValidatorDef{
		RequiresArgument: true,
		Evaluate: func(value, argument any, hasArgument bool) (bool, bool) {
			s, ok := value.(string)
			layout, layoutOK := argument.(string)
			if !ok || !hasArgument || !layoutOK {
				return false, false
			}
			return matchesLayout(s, layout), true
		},
	})
}

func registerNumericValidators(repo *schema.MapRepository) {
	repo.RegisterValidator("DateTime", "min", schema.BuiltinValidatorDef{
		RequiresArgument: true,
		Evaluate: func(value, argument any, hasArgument bool) (bool, bool) {
			return compareTemporal(value, argument, hasArgument, func(cmp int) bool { return cmp >= 0 })
		},
	})
	repo.RegisterValidator("DateTime", "max", schema.BuiltinValidatorDef{
		RequiresArgument: true,
		Evaluate: func(value, argument any, hasArgument bool) (bool, bool) {
			return compareTemporal(value, argument, hasArgument, func(cmp int) bool { return cmp <= 0 })
		},
	})
	for _, t := range []string{"Int", "Float", "Number"} {
		repo.RegisterValidator(t, "min", schema.BuiltinValidatorDef{
			RequiresArgument: true,
			Evaluate: func(value, argument any, hasArgument bool) (bool, bool) {
				v, ok := value.(float64)
				n, nOK := argument.(float64)
				if !ok || !hasArgument || !nOK {
					return false, false
				}
				return v >= n, true
			},
		})
		repo.RegisterValidator(t, "max", schema.BuiltinValidatorDef{
			RequiresArgument: true,
			Evaluate: func(value, argument any, hasArgument bool) (bool, bool) {
				v, ok := value.(float64)
				n, nOK := argument.(float64)
				if !ok || !hasArgument || !nOK {
					return false, false
				}
				return v <= n, true
			},
		})
		repo.RegisterValidator(t, "positive", schema.BuiltinValidatorDef{
			Evaluate: func(value, _ any, _ bool) (bool, bool) {
				v, ok := value.(float64)
				if !ok {
					return false, false
				}
				return v > 0, true
			},
		})
	}
}

// compareTemporal parses value and argument as temporal.Values (same parser
// compareOrdered uses for "<"/">" in internal/exprs/predicate.go) and
// reports whether accept holds for their time.Compare result. Mismatched
// kinds (date vs date-time) and non-parseable operands yield
// (false, false), matching the rest of the catalogue's "not applicable"
// convention for RequiresArgument validators.
func compareTemporal(value, argument any, hasArgument bool, accept func(cmp int) bool) (bool, bool) {
	if !hasArgument {
		return false, false
	}
	vs, ok := value.(string)
	as, aok := argument.(string)
	if !ok || !aok {
		return false, false
	}
	vt, ok := temporal.Parse(vs)
	at, aok := temporal.Parse(as)
	if !ok || !aok || vt.Kind != at.Kind {
		return false, false
	}
	return accept(vt.Time.Compare(at.Time)), true
}

func registerArrayValidators(repo *schema.MapRepository) {
	const t = "Array"
	repo.RegisterValidator(t, "minItems", schema.BuiltinValidatorDef{
		RequiresArgument: true,
		Evaluate: func(value, argument any, hasArgument bool) (bool, bool) {
			arr, ok := jsonvalue.AsArray(value)
			n, nOK := asInt(argument)
			if !ok || !hasArgument || !nOK {
				return false, false
			}
			return len(arr) >= n, true
		},
	})
	repo.RegisterValidator(t, "maxItems", schema.BuiltinValidatorDef{
		RequiresArgument: true,
		Evaluate: func(value, argument any, hasArgument bool) (bool, bool) {
			arr, ok := jsonvalue.AsArray(value)
			n, nOK := asInt(argument)
			if !ok || !hasArgument || !nOK {
				return false, false
			}
			return len(arr) <= n, true
		},
	})
	repo.RegisterValidator(t, "unique", schema.BuiltinValidatorDef{
		Evaluate: func(value, _ any, _ bool) (bool, bool) {
			arr, ok := jsonvalue.AsArray(value)
			if !ok {
				return false, false
			}
			for i := range arr {
				for j := i + 1; j < len(arr); j++ {
					if jsonvalue.Equal(arr[i], arr[j]) {
						return false, true
					}
				}
			}
			return true, true
		},
	})
}

func registerGenericValidators(repo *schema.MapRepository) {
	for _, t := range []string{"String", "Array", "Object"} {
		repo.RegisterValidator(t, "nonEmpty", schema.BuiltinValidatorDef{
			Evaluate: func(value, _ any, _ bool) (bool, bool) {
				switch v := value.(type) {
				case string:
					return v != "", true
				case []any:
					return len(v) != 0, true
				case map[string]any:
					return len(v) != 0, true
				default:
					return false, false
				}
			},
		})
	}
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		if x != float64(int64(x)) {
			return 0, false
		}
		return int(x), true
	case string:
		n, err := strconv.Atoi(x)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func matchesLayout(value, layout string) bool {
	_, ok := temporal.ParseWithLayout(value, layout)
	return ok
}
