package compiler

import (
	"reflect"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/validation"
)

// defaultComparators returns the built-in comparison operators. Strict
// equality ("===") is the default when a condition names no op. The loose
// forms ("==", "!=") coerce across the numeric types YAML and JSON decoding
// produce; the ordered forms coerce both sides to float64 and never match
// non-numeric input.
func defaultComparators() map[string]domain.CompareFunc {
	cmp := map[string]domain.CompareFunc{
		"===": func(v any, _ *domain.Context, c *domain.Branch) bool {
			return reflect.DeepEqual(v, c.Value)
		},
		"!==": func(v any, _ *domain.Context, c *domain.Branch) bool {
			return !reflect.DeepEqual(v, c.Value)
		},
		"==": func(v any, _ *domain.Context, c *domain.Branch) bool {
			return validation.LooseEqual(v, c.Value)
		},
		"!=": func(v any, _ *domain.Context, c *domain.Branch) bool {
			return !validation.LooseEqual(v, c.Value)
		},
		"<":  ordered(func(a, b float64) bool { return a < b }),
		"<=": ordered(func(a, b float64) bool { return a <= b }),
		">":  ordered(func(a, b float64) bool { return a > b }),
		">=": ordered(func(a, b float64) bool { return a >= b }),
		"in": func(v any, _ *domain.Context, c *domain.Branch) bool {
			for _, want := range validation.ToSlice(c.Value) {
				if validation.LooseEqual(v, want) {
					return true
				}
			}
			return false
		},
	}
	return cmp
}

func ordered(test func(a, b float64) bool) domain.CompareFunc {
	return func(v any, _ *domain.Context, c *domain.Branch) bool {
		a, aok := validation.AsFloat(v)
		b, bok := validation.AsFloat(c.Value)
		return aok && bok && test(a, b)
	}
}
