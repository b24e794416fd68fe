package dsl

import (
	"github.com/aretw0/arbor/internal/compiler"
	"github.com/aretw0/arbor/pkg/domain"
)

// Builder manages journey spec construction.
type Builder struct {
	name   string
	steps  map[string]*StepBuilder
	fields map[string]*FieldBuilder
}

// New creates a new journey builder.
func New(name string) *Builder {
	return &Builder{
		name:   name,
		steps:  make(map[string]*StepBuilder),
		fields: make(map[string]*FieldBuilder),
	}
}

// Step creates (or returns) the builder for a step path.
func (b *Builder) Step(path string) *StepBuilder {
	if sb, ok := b.steps[path]; ok {
		return sb
	}
	sb := &StepBuilder{spec: &domain.StepSpec{}, builder: b}
	b.steps[path] = sb
	return sb
}

// Field creates (or returns) the builder for a field identifier.
func (b *Builder) Field(key string) *FieldBuilder {
	if fb, ok := b.fields[key]; ok {
		return fb
	}
	fb := &FieldBuilder{spec: &domain.FieldSpec{}, builder: b}
	b.fields[key] = fb
	return fb
}

// Build assembles the raw spec, ready for arbor.New.
func (b *Builder) Build() *compiler.Spec {
	spec := &compiler.Spec{
		Name:   b.name,
		Steps:  make(map[string]*domain.StepSpec, len(b.steps)),
		Fields: make(map[string]*domain.FieldSpec, len(b.fields)),
	}
	for path, sb := range b.steps {
		spec.Steps[path] = sb.spec
	}
	for key, fb := range b.fields {
		spec.Fields[key] = fb.spec
	}
	return spec
}

// StepBuilder configures one step.
type StepBuilder struct {
	spec    *domain.StepSpec
	builder *Builder
}

// Next declares the next-step resolution: a step path, an external URL, a
// domain.TargetFunc, or a sequence of condition specs.
func (s *StepBuilder) Next(next any) *StepBuilder {
	s.spec.Next = next
	return s
}

// Fields lists the field identifiers collected on this step.
func (s *StepBuilder) Fields(keys ...string) *StepBuilder {
	s.spec.Fields = append(s.spec.Fields, keys...)
	return s
}

// EntryPoint marks the step as a journey entry point.
func (s *StepBuilder) EntryPoint() *StepBuilder {
	s.spec.EntryPoint = true
	return s
}

// CheckJourney sets reachability enforcement (default true).
func (s *StepBuilder) CheckJourney(check bool) *StepBuilder {
	s.spec.CheckJourney = &check
	return s
}

// Prereqs adds step paths that satisfy reachability when present in history.
func (s *StepBuilder) Prereqs(paths ...string) *StepBuilder {
	s.spec.Prereqs = append(s.spec.Prereqs, paths...)
	return s
}

// Reset clears the step's own field values on entry.
func (s *StepBuilder) Reset() *StepBuilder {
	s.spec.Reset = true
	return s
}

// ResetJourney clears the whole journey history when this step completes.
func (s *StepBuilder) ResetJourney() *StepBuilder {
	s.spec.ResetJourney = true
	return s
}

// NoPost marks a link-only step that completes on render.
func (s *StepBuilder) NoPost() *StepBuilder {
	s.spec.NoPost = true
	return s
}

// Editable allows revisiting the step after completion.
func (s *StepBuilder) Editable() *StepBuilder {
	s.spec.Editable = true
	return s
}

// Title sets the step's display title.
func (s *StepBuilder) Title(title string) *StepBuilder {
	s.spec.Title = title
	return s
}

// Content sets the step's markdown content.
func (s *StepBuilder) Content(md string) *StepBuilder {
	s.spec.Content = md
	return s
}

// Builder returns to the parent builder for chaining.
func (s *StepBuilder) Builder() *Builder {
	return s.builder
}

// FieldBuilder configures one field.
type FieldBuilder struct {
	spec    *domain.FieldSpec
	builder *Builder
}

// Validate appends validator specs in evaluation order.
func (f *FieldBuilder) Validate(specs ...any) *FieldBuilder {
	f.spec.Validate = append(f.spec.Validate, specs...)
	return f
}

// Options restricts the field to an enumerated value set.
func (f *FieldBuilder) Options(values ...any) *FieldBuilder {
	f.spec.Options = append(f.spec.Options, values...)
	return f
}

// Dependent gates this field on another field's value(s).
func (f *FieldBuilder) Dependent(field string, values ...any) *FieldBuilder {
	if len(values) == 0 {
		f.spec.Dependent = field
		return f
	}
	f.spec.Dependent = &domain.Dependent{Field: field, Values: values}
	return f
}

// Invalidates lists fields cleared when this field's value changes.
func (f *FieldBuilder) Invalidates(keys ...string) *FieldBuilder {
	f.spec.Invalidates = append(f.spec.Invalidates, keys...)
	return f
}

// ErrorGroup tags every rule compiled from this field.
func (f *FieldBuilder) ErrorGroup(group string) *FieldBuilder {
	f.spec.ErrorGroup = group
	return f
}

// Builder returns to the parent builder for chaining.
func (f *FieldBuilder) Builder() *Builder {
	return f.builder
}
