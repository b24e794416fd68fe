package validation

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Spec is the explicit record form of a validator spec. Fn may be nil, in
// which case Type is resolved through the registry.
type Spec struct {
	Type       string `mapstructure:"type"`
	Fn         domain.ValidatorFunc
	Arguments  any `mapstructure:"arguments"`
	ErrorGroup string
}

// Named wraps a custom validator function with its name, the in-code
// equivalent of a named function in a declarative definition. A spec built
// from an empty or generic name is rejected at resolve time.
func Named(name string, fn domain.ValidatorFunc) Spec {
	return Spec{Type: name, Fn: fn}
}

// generic function names carry no information about what failed, so they are
// rejected the same way an anonymous function would be.
func genericName(name string) bool {
	return name == "" || name == "fn" || name == "validate"
}

// Resolve turns one raw validator spec into a Rule. Accepted forms:
//
//   - string: a registry name
//   - Spec / *Spec: explicit record, Fn resolved by Type when absent
//   - domain.Rule: passed through (arguments normalized)
//   - map[string]any: the decoded YAML form of a record
//
// Nil entries resolve to a zero Rule with ok=false and are dropped by the
// caller. Any malformed spec fails with a *domain.ConfigurationError.
func Resolve(reg *Registry, scope string, raw any) (domain.Rule, bool, error) {
	switch v := raw.(type) {
	case nil:
		return domain.Rule{}, false, nil

	case string:
		if v == "" {
			return domain.Rule{}, false, nil
		}
		fn, ok := reg.Lookup(v)
		if !ok {
			return domain.Rule{}, false, &domain.ConfigurationError{
				Scope:  scope,
				Detail: fmt.Sprintf("undefined validator %q", v),
			}
		}
		return domain.Rule{Type: v, Fn: fn, Arguments: []any{}}, true, nil

	case domain.ValidatorFunc:
		// A bare function has no usable name in Go; it must be wrapped with
		// Named to be accepted.
		return domain.Rule{}, false, &domain.ConfigurationError{
			Scope:  scope,
			Detail: "bare validator function: wrap it with validation.Named",
		}

	case func(*domain.Context, any, ...any) bool:
		return Resolve(reg, scope, domain.ValidatorFunc(v))

	case Spec:
		return resolveSpec(reg, scope, v)

	case *Spec:
		return resolveSpec(reg, scope, *v)

	case domain.Rule:
		v.Arguments = wrapArguments(v.Arguments)
		if v.Fn == nil {
			return resolveSpec(reg, scope, Spec{Type: v.Type, Arguments: v.Arguments, ErrorGroup: v.ErrorGroup})
		}
		if genericName(v.Type) {
			return domain.Rule{}, false, &domain.ConfigurationError{
				Scope:  scope,
				Detail: "validator rule has no usable type name",
			}
		}
		return v, true, nil

	case map[string]any:
		var spec Spec
		if err := mapstructure.Decode(v, &spec); err != nil {
			return domain.Rule{}, false, &domain.ConfigurationError{
				Scope:  scope,
				Detail: fmt.Sprintf("malformed validator record: %v", err),
			}
		}
		return resolveSpec(reg, scope, spec)

	default:
		return domain.Rule{}, false, &domain.ConfigurationError{
			Scope:  scope,
			Detail: fmt.Sprintf("unsupported validator spec of type %T", raw),
		}
	}
}

func resolveSpec(reg *Registry, scope string, spec Spec) (domain.Rule, bool, error) {
	if genericName(spec.Type) {
		return domain.Rule{}, false, &domain.ConfigurationError{
			Scope:  scope,
			Detail: "validator function must have a non-generic name",
		}
	}

	fn := spec.Fn
	if fn == nil {
		var ok bool
		fn, ok = reg.Lookup(spec.Type)
		if !ok {
			return domain.Rule{}, false, &domain.ConfigurationError{
				Scope:  scope,
				Detail: fmt.Sprintf("undefined validator %q", spec.Type),
			}
		}
	}

	return domain.Rule{
		Type:       spec.Type,
		Fn:         fn,
		Arguments:  wrapArguments(spec.Arguments),
		ErrorGroup: spec.ErrorGroup,
	}, true, nil
}

// wrapArguments normalizes the arguments field: absent becomes an empty
// sequence, a scalar becomes a single-element sequence.
func wrapArguments(raw any) []any {
	switch v := raw.(type) {
	case nil:
		return []any{}
	case []any:
		return v
	default:
		return []any{v}
	}
}

// CompileField resolves a FieldSpec into an immutable Field. It flattens the
// validate list (dropping nil entries), appends the options-derived "equal"
// rule exactly once, and normalizes the dependent spec. All configuration
// errors for the field surface here.
func CompileField(reg *Registry, key string, spec *domain.FieldSpec) (*domain.Field, error) {
	scope := "field " + key
	field := &domain.Field{Key: key}

	if spec == nil {
		return field, nil
	}
	field.Invalidates = append([]string(nil), spec.Invalidates...)

	for _, raw := range spec.Validate {
		rule, ok, err := Resolve(reg, scope, raw)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if rule.ErrorGroup == "" {
			rule.ErrorGroup = spec.ErrorGroup
		}
		field.Rules = append(field.Rules, rule)
	}

	options := spec.Options
	if len(options) == 0 {
		options = spec.Items
	}
	if len(options) > 0 {
		field.Options = optionValues(options)
		field.Rules = append(field.Rules, domain.Rule{
			Type:       "equal",
			Fn:         equal,
			Arguments:  field.Options,
			ErrorGroup: spec.ErrorGroup,
		})
	}

	dep, err := resolveDependent(scope, spec.Dependent)
	if err != nil {
		return nil, err
	}
	field.Dependent = dep

	return field, nil
}

// optionValues extracts the allowed values from an options list, where each
// entry is either a literal or a {value: ...} record.
func optionValues(options []any) []any {
	values := make([]any, 0, len(options))
	for _, opt := range options {
		if m, ok := opt.(map[string]any); ok {
			if v, ok := m["value"]; ok {
				values = append(values, v)
				continue
			}
		}
		values = append(values, opt)
	}
	return values
}

func resolveDependent(scope string, raw any) (*domain.Dependent, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		// "otherField" is shorthand for {field: otherField, value: true}.
		return &domain.Dependent{Field: v, Values: []any{true}}, nil
	case domain.Dependent:
		return normalizeDependent(&v), nil
	case *domain.Dependent:
		return normalizeDependent(v), nil
	case map[string]any:
		field, _ := v["field"].(string)
		if field == "" {
			return nil, &domain.ConfigurationError{
				Scope:  scope,
				Detail: "dependent record missing field",
			}
		}
		return &domain.Dependent{Field: field, Values: wrapArguments(v["value"])}, nil
	default:
		return nil, &domain.ConfigurationError{
			Scope:  scope,
			Detail: fmt.Sprintf("unsupported dependent spec of type %T", raw),
		}
	}
}

func normalizeDependent(d *domain.Dependent) *domain.Dependent {
	out := &domain.Dependent{Field: d.Field, Values: d.Values}
	if len(out.Values) == 0 {
		out.Values = []any{true}
	}
	return out
}
