// Package compiler turns raw journey specs (authored in YAML or in code)
// into the compiled, immutable definitions the runtime evaluates. All
// configuration errors surface here, before any request is served.
package compiler

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/validation"
	"github.com/mitchellh/mapstructure"
)

// Spec is a raw journey definition: step and field specs keyed by path and
// identifier.
type Spec struct {
	Name   string                      `yaml:"name"`
	Steps  map[string]*domain.StepSpec `yaml:"-"`
	Fields map[string]*domain.FieldSpec `yaml:"-"`
}

// Definition is the compiled journey: read-mostly after compilation, shared
// across requests.
type Definition struct {
	Name   string
	Steps  domain.Steps
	Fields domain.Fields
}

// Compiler resolves raw specs against its registries.
type Compiler struct {
	validators  *validation.Registry
	predicates  map[string]domain.PredicateFunc
	comparators map[string]domain.CompareFunc
}

// Option configures the Compiler.
type Option func(*Compiler)

// WithValidators replaces the validator registry.
func WithValidators(reg *validation.Registry) Option {
	return func(c *Compiler) { c.validators = reg }
}

// WithPredicate registers a named condition function, referenceable as
// `fn: name` in declarative definitions.
func WithPredicate(name string, fn domain.PredicateFunc) Option {
	return func(c *Compiler) { c.predicates[name] = fn }
}

// WithComparator registers a named comparison operator.
func WithComparator(name string, fn domain.CompareFunc) Option {
	return func(c *Compiler) { c.comparators[name] = fn }
}

// New creates a compiler with the built-in validators and comparators.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		validators:  validation.NewRegistry(),
		predicates:  make(map[string]domain.PredicateFunc),
		comparators: defaultComparators(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validators exposes the compiler's validator registry so hosts can register
// custom validators before compiling.
func (c *Compiler) Validators() *validation.Registry {
	return c.validators
}

// Compile resolves every field and step spec. The input specs are not
// mutated; the returned Definition is a separate structure.
func (c *Compiler) Compile(spec *Spec) (*Definition, error) {
	def := &Definition{
		Name:   spec.Name,
		Steps:  make(domain.Steps, len(spec.Steps)),
		Fields: make(domain.Fields, len(spec.Fields)),
	}

	for key, fs := range spec.Fields {
		field, err := validation.CompileField(c.validators, key, fs)
		if err != nil {
			return nil, err
		}
		def.Fields[key] = field
	}

	for path, ss := range spec.Steps {
		step, err := c.compileStep(path, ss)
		if err != nil {
			return nil, err
		}
		def.Steps[path] = step
	}

	return def, nil
}

func (c *Compiler) compileStep(path string, spec *domain.StepSpec) (*domain.Step, error) {
	scope := "step " + path
	step := &domain.Step{
		Path:         path,
		Fields:       append([]string(nil), spec.Fields...),
		EntryPoint:   spec.EntryPoint,
		CheckJourney: true,
		Prereqs:      append([]string(nil), spec.Prereqs...),
		Reset:        spec.Reset,
		ResetJourney: spec.ResetJourney,
		Skip:         spec.Skip,
		NoPost:       spec.NoPost,
		Editable:     spec.Editable,
		Title:        spec.Title,
		Content:      spec.Content,
	}
	if spec.CheckJourney != nil {
		step.CheckJourney = *spec.CheckJourney
	}

	next, err := c.compileNext(scope, spec.Next)
	if err != nil {
		return nil, err
	}
	step.Next = next
	return step, nil
}

// compileNext builds the recursive next-resolution tree.
func (c *Compiler) compileNext(scope string, raw any) (domain.Next, error) {
	switch v := raw.(type) {
	case nil:
		return domain.Next{}, nil

	case string:
		return domain.Next{Target: v}, nil

	case domain.TargetFunc:
		return domain.Next{TargetFn: v}, nil

	case func(*domain.Context) string:
		return domain.Next{TargetFn: v}, nil

	case []any:
		branches := make([]domain.Branch, 0, len(v))
		for _, entry := range v {
			branch, err := c.compileBranch(scope, entry)
			if err != nil {
				return domain.Next{}, err
			}
			branches = append(branches, branch)
		}
		return domain.Next{Branches: branches}, nil

	case []domain.ConditionSpec:
		entries := make([]any, len(v))
		for i := range v {
			entries[i] = v[i]
		}
		return c.compileNext(scope, entries)

	default:
		return domain.Next{}, &domain.ConfigurationError{
			Scope:  scope,
			Detail: fmt.Sprintf("unsupported next spec of type %T", raw),
		}
	}
}

func (c *Compiler) compileBranch(scope string, raw any) (domain.Branch, error) {
	switch v := raw.(type) {
	case string:
		// A bare identifier is the unconditional fallback.
		return domain.Branch{Kind: domain.BranchFallback, Next: domain.Next{Target: v}}, nil

	case domain.ConditionSpec:
		return c.compileCondition(scope, v)

	case *domain.ConditionSpec:
		return c.compileCondition(scope, *v)

	case map[string]any:
		spec := domain.ConditionSpec{
			Fn:    v["fn"],
			Op:    v["op"],
			Value: v["value"],
			Next:  v["next"],
		}
		if f, ok := v["field"].(string); ok {
			spec.Field = f
		}
		return c.compileCondition(scope, spec)

	default:
		return domain.Branch{}, &domain.ConfigurationError{
			Scope:  scope,
			Detail: fmt.Sprintf("unsupported condition entry of type %T", raw),
		}
	}
}

func (c *Compiler) compileCondition(scope string, spec domain.ConditionSpec) (domain.Branch, error) {
	next, err := c.compileNext(scope, spec.Next)
	if err != nil {
		return domain.Branch{}, err
	}
	if next.IsZero() {
		return domain.Branch{}, &domain.ConfigurationError{
			Scope:  scope,
			Detail: "condition without next target",
		}
	}

	if spec.Fn != nil {
		fn, err := c.resolvePredicate(scope, spec.Fn)
		if err != nil {
			return domain.Branch{}, err
		}
		return domain.Branch{Kind: domain.BranchFunc, Fn: fn, Next: next}, nil
	}

	if spec.Field != "" {
		opName, op, err := c.resolveOp(scope, spec.Op)
		if err != nil {
			return domain.Branch{}, err
		}
		return domain.Branch{
			Kind:   domain.BranchField,
			Field:  spec.Field,
			OpName: opName,
			Op:     op,
			Value:  spec.Value,
			Next:   next,
		}, nil
	}

	return domain.Branch{}, &domain.ConfigurationError{
		Scope:  scope,
		Detail: "condition needs either fn or field",
	}
}

func (c *Compiler) resolvePredicate(scope string, raw any) (domain.PredicateFunc, error) {
	switch v := raw.(type) {
	case domain.PredicateFunc:
		return v, nil
	case func(*domain.Context) bool:
		return v, nil
	case string:
		fn, ok := c.predicates[v]
		if !ok {
			return nil, &domain.ConfigurationError{
				Scope:  scope,
				Detail: fmt.Sprintf("undefined condition function %q", v),
			}
		}
		return fn, nil
	default:
		return nil, &domain.ConfigurationError{
			Scope:  scope,
			Detail: fmt.Sprintf("unsupported condition fn of type %T", raw),
		}
	}
}

func (c *Compiler) resolveOp(scope string, raw any) (string, domain.CompareFunc, error) {
	switch v := raw.(type) {
	case nil:
		return "===", c.comparators["==="], nil
	case domain.CompareFunc:
		return "fn", v, nil
	case func(any, *domain.Context, *domain.Branch) bool:
		return "fn", v, nil
	case string:
		op, ok := c.comparators[v]
		if !ok {
			return "", nil, &domain.ConfigurationError{
				Scope:  scope,
				Detail: fmt.Sprintf("undefined comparison operator %q", v),
			}
		}
		return v, op, nil
	default:
		return "", nil, &domain.ConfigurationError{
			Scope:  scope,
			Detail: fmt.Sprintf("unsupported op of type %T", raw),
		}
	}
}

// decodeSpec is shared by the YAML loader: it decodes a loose map into a
// typed spec struct while leaving `next`, `validate` and friends untyped.
func decodeSpec(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
