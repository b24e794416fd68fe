package domain

// ValidatorFunc checks a single value. It receives the evaluation context so
// validators may reference sibling form data, the value under test, and the
// arguments configured on the rule. A falsy (false) result is a failure.
type ValidatorFunc func(ctx *Context, value any, args ...any) bool

// Rule is a resolved validation unit. Rules are produced by the compiler from
// raw validator specs (string name, named function, or full record) and are
// immutable after compilation.
type Rule struct {
	// Type identifies the rule (e.g. "required", "minlength"). It is reported
	// back to the caller in ValidationError.
	Type string

	// Fn performs the check.
	Fn ValidatorFunc

	// Arguments are passed to Fn after the value (e.g. the length for
	// "minlength"). Always non-nil after compilation.
	Arguments []any

	// ErrorGroup optionally groups related failures for rendering.
	ErrorGroup string
}

// Dependent gates a field's applicability on another field's current value.
type Dependent struct {
	// Field is the identifier of the controlling field.
	Field string

	// Values are the controlling values that activate this field. Membership
	// is tested by set intersection against the controlling field's current
	// value(s).
	Values []any
}

// FieldSpec is the raw, declarative definition of a field as authored in
// YAML or via the dsl builder. It is decoded loosely (mapstructure) and
// compiled once into a Field; compilation is where all configuration errors
// surface.
type FieldSpec struct {
	// Validate lists validator specs in evaluation order. Each entry is a
	// string name, a validation.Named(...) record, or a map/record with
	// type/fn/arguments. Falsy entries are dropped during compilation.
	Validate []any `mapstructure:"validate" yaml:"validate"`

	// Options restricts the field to an enumerated set of values. Each entry
	// is a literal or a {value: ...} record. A non-empty list implicitly
	// appends an "is one of these values" rule, exactly once.
	Options []any `mapstructure:"options" yaml:"options"`

	// Items is an alias for Options (select-style fields).
	Items []any `mapstructure:"items" yaml:"items"`

	// Dependent gates this field on another field's value. Accepts the full
	// record form or the string shorthand "otherField" (meaning value true).
	Dependent any `mapstructure:"dependent" yaml:"dependent"`

	// Invalidates lists field identifiers cleared when this field's value
	// changes.
	Invalidates []string `mapstructure:"invalidates" yaml:"invalidates"`

	// ErrorGroup is applied to every rule compiled from this spec.
	ErrorGroup string `mapstructure:"errorGroup" yaml:"errorGroup"`
}

// Field is the compiled, immutable form of a FieldSpec.
type Field struct {
	Key         string
	Rules       []Rule
	Options     []any
	Dependent   *Dependent
	Invalidates []string
}

// Fields maps field identifiers to their compiled definitions.
type Fields map[string]*Field
