package validation

import "github.com/aretw0/arbor/pkg/domain"

// Validate applies the field's rules to a value and returns the first
// failure, or nil when the value is valid or the field is not defined (the
// caller treats an unknown key as a no-op, not an error).
//
// A sequence value is checked value-by-value: the first value is run against
// every rule before the next value is considered, and the first failing
// (value, rule) pair wins.
func Validate(fields domain.Fields, key string, value any, ctx *domain.Context) *domain.ValidationError {
	field, ok := fields[key]
	if !ok || field == nil {
		return nil
	}

	for _, v := range ToSlice(value) {
		for _, rule := range field.Rules {
			if !rule.Fn(ctx, v, rule.Arguments...) {
				return &domain.ValidationError{
					Key:        key,
					Type:       rule.Type,
					ErrorGroup: rule.ErrorGroup,
					Arguments:  rule.Arguments,
				}
			}
		}
	}
	return nil
}

// ValidateAll runs Validate for every listed field that passes the dependent
// gate, reading each field's value from values. The result maps field
// identifiers to their first failure; an empty map means all valid.
func ValidateAll(fields domain.Fields, keys []string, values map[string]any, ctx *domain.Context) map[string]*domain.ValidationError {
	errs := make(map[string]*domain.ValidationError)
	for _, key := range keys {
		if !IsAllowedDependent(fields, key, values) {
			continue
		}
		if verr := Validate(fields, key, values[key], ctx); verr != nil {
			errs[key] = verr
		}
	}
	return errs
}

// IsAllowedDependent reports whether a field is in play given the current
// values. A field with no dependent spec is always allowed, as is a field
// whose dependency target does not exist in the registry. Otherwise the
// target field's current value(s) must intersect the dependent's allowed
// value(s).
//
// The gate is advisory: callers use it to decide whether to run validation
// for a field at all.
func IsAllowedDependent(fields domain.Fields, key string, values map[string]any) bool {
	field, ok := fields[key]
	if !ok || field == nil || field.Dependent == nil {
		return true
	}
	if _, ok := fields[field.Dependent.Field]; !ok {
		return true
	}

	current := ToSlice(values[field.Dependent.Field])
	for _, want := range field.Dependent.Values {
		for _, have := range current {
			if LooseEqual(want, have) {
				return true
			}
		}
	}
	return false
}

// ToSlice treats a value uniformly as a sequence, wrapping scalars. A nil
// value becomes a one-element sequence holding nil so that rules such as
// "required" still run against it.
func ToSlice(value any) []any {
	switch v := value.(type) {
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	default:
		return []any{value}
	}
}
