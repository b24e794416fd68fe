package runtime

import (
	"testing"
	"time"

	"github.com/aretw0/arbor/internal/compiler"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/require"
)

// newEngine compiles a raw spec and wraps it in an engine with a fixed clock.
func newEngine(t *testing.T, spec *compiler.Spec, opts ...Option) *Engine {
	t.Helper()
	def, err := compiler.New().Compile(spec)
	require.NoError(t, err)

	base := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	opts = append([]Option{WithClock(func() time.Time { return base })}, opts...)
	return New(def.Steps, def.Fields, opts...)
}

// licenceSpec is a small journey used across the engine tests:
//
//	/start -> /age -> (/exit when under 18) -> /details -> /confirm -> done
func licenceSpec() *compiler.Spec {
	return &compiler.Spec{
		Name: "licence",
		Steps: map[string]*domain.StepSpec{
			"/start": {
				EntryPoint: true,
				Next:       "/age",
			},
			"/age": {
				Fields: []string{"age"},
				Next: []any{
					map[string]any{"field": "age", "op": "<", "value": 18, "next": "/exit"},
					"/details",
				},
			},
			"/exit": {},
			"/details": {
				Fields: []string{"name", "postcode"},
				Next:   "/confirm",
			},
			"/confirm": {
				Next: "https://payments.example.com/checkout",
			},
		},
		Fields: map[string]*domain.FieldSpec{
			"age":      {Validate: []any{"required", "numeric"}, Invalidates: []string{"name", "postcode"}},
			"name":     {Validate: []any{"required"}},
			"postcode": {Validate: []any{"postcode"}},
		},
	}
}
