package arbor

import (
	"context"
	"log/slog"

	"github.com/aretw0/arbor/internal/compiler"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/validation"
)

// Version is the library version reported by the CLI.
const Version = "0.1.0"

// Spec is a raw journey definition: step and field specs keyed by path and
// identifier. Re-exported so consumers outside the module can construct one.
type Spec = compiler.Spec

// LoadSpec reads a YAML journey definition from disk.
func LoadSpec(path string) (*Spec, error) {
	return compiler.LoadFile(path)
}

// ParseSpec parses a YAML journey definition.
func ParseSpec(data []byte) (*Spec, error) {
	return compiler.LoadBytes(data)
}

// Wizard is the high-level entry point for the Arbor library. It compiles a
// declarative journey definition once and answers, per request: may this
// step be entered, is this submission valid, and what comes next.
//
// A Wizard holds no per-user state. The journey is passed by reference into
// every call and owned by the caller's session layer.
type Wizard struct {
	def     *compiler.Definition
	engine  *runtime.Engine
	metrics *observability.Metrics
	logger  *slog.Logger
	Name    string
}

// Option defines a functional option for configuring the Wizard.
type Option func(*settings)

type settings struct {
	logger       *slog.Logger
	hooks        domain.LifecycleHooks
	metrics      *observability.Metrics
	compilerOpts []compiler.Option
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *settings) { s.hooks = hooks }
}

// WithMetrics wires prometheus collectors into the engine lifecycle.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithValidators replaces the validator registry used during compilation.
func WithValidators(reg *validation.Registry) Option {
	return func(s *settings) {
		s.compilerOpts = append(s.compilerOpts, compiler.WithValidators(reg))
	}
}

// WithPredicate registers a named condition function for `fn:` references in
// declarative definitions.
func WithPredicate(name string, fn domain.PredicateFunc) Option {
	return func(s *settings) {
		s.compilerOpts = append(s.compilerOpts, compiler.WithPredicate(name, fn))
	}
}

// WithComparator registers a named comparison operator for `op:` references.
func WithComparator(name string, fn domain.CompareFunc) Option {
	return func(s *settings) {
		s.compilerOpts = append(s.compilerOpts, compiler.WithComparator(name, fn))
	}
}

// New compiles a raw journey spec into a Wizard. All configuration errors
// (unknown validators, malformed conditions) surface here; a returned error
// wraps a *domain.ConfigurationError and should abort startup.
func New(spec *compiler.Spec, opts ...Option) (*Wizard, error) {
	s := &settings{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	def, err := compiler.New(s.compilerOpts...).Compile(spec)
	if err != nil {
		return nil, err
	}

	hooks := s.hooks
	if s.metrics != nil {
		hooks = s.metrics.Hooks(hooks)
	}

	w := &Wizard{
		def:     def,
		metrics: s.metrics,
		logger:  s.logger,
		Name:    def.Name,
	}
	w.engine = runtime.New(def.Steps, def.Fields,
		runtime.WithLogger(s.logger),
		runtime.WithLifecycleHooks(hooks),
	)
	return w, nil
}

// NewFromFile loads a YAML journey definition and compiles it.
func NewFromFile(path string, opts ...Option) (*Wizard, error) {
	spec, err := compiler.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(spec, opts...)
}

// Steps returns the compiled step registry.
func (w *Wizard) Steps() domain.Steps { return w.def.Steps }

// Fields returns the compiled field registry.
func (w *Wizard) Fields() domain.Fields { return w.def.Fields }

// CheckStep reports whether the step may be entered given the journey's
// history: nil when allowed, a *domain.JourneyError carrying the fallback
// step (or CodeMissingPrereq) otherwise.
func (w *Wizard) CheckStep(journey *domain.Journey, path string) error {
	return w.engine.CheckStep(path, journey)
}

// Enter prepares a step for rendering: reachability check, reset handling,
// step-enter hook. Link-only (noPost) steps are completed immediately, since
// rendering is the only interaction they have.
func (w *Wizard) Enter(ctx context.Context, journey *domain.Journey, path string) error {
	if err := w.engine.Enter(ctx, journey, path); err != nil {
		return err
	}
	step, err := w.engine.Step(path)
	if err != nil {
		return err
	}
	if step.NoPost && !journey.Visited(path) {
		_, err = w.engine.CompleteLink(ctx, journey, path)
	}
	return err
}

// ValidateStep checks every field of the step against the given values.
// Fields gated off by a dependent spec are skipped. The returned map is
// empty when the submission is valid.
func (w *Wizard) ValidateStep(path string, values map[string]any) (map[string]*domain.ValidationError, error) {
	step, err := w.engine.Step(path)
	if err != nil {
		return nil, err
	}

	ctx := domain.NewContext(values)
	errs := validation.ValidateAll(w.def.Fields, step.Fields, values, ctx)
	if w.metrics != nil {
		for _, verr := range errs {
			w.metrics.ObserveValidation(verr)
		}
	}
	return errs, nil
}

// Submit runs a full submission cycle for a step: reachability, validation,
// then completion with the invalidation cascade applied and the next target
// resolved.
//
// On validation failure the error map is returned and the journey is not
// modified. On success the map is empty and next holds the resolved target
// (step path or external URL; empty for a terminal step).
func (w *Wizard) Submit(ctx context.Context, journey *domain.Journey, path string, submitted map[string]any) (map[string]*domain.ValidationError, string, error) {
	if err := w.engine.CheckStep(path, journey); err != nil {
		return nil, "", err
	}
	step, err := w.engine.Step(path)
	if err != nil {
		return nil, "", err
	}

	// Validators and dependent gates see the stored values overlaid with the
	// submission, so cross-field rules observe the request's full picture.
	merged := make(map[string]any, len(journey.Values)+len(submitted))
	for k, v := range journey.Values {
		merged[k] = v
	}
	for _, key := range step.Fields {
		if v, ok := submitted[key]; ok {
			merged[key] = v
		}
	}

	errs := validation.ValidateAll(w.def.Fields, step.Fields, merged, domain.NewContext(merged))
	if w.metrics != nil {
		for _, verr := range errs {
			w.metrics.ObserveValidation(verr)
		}
	}
	if len(errs) > 0 {
		return errs, "", nil
	}

	// Only this step's fields are stored, and only those that are in play.
	accepted := make(map[string]any, len(step.Fields))
	for _, key := range step.Fields {
		if !validation.IsAllowedDependent(w.def.Fields, key, merged) {
			continue
		}
		if v, ok := submitted[key]; ok {
			accepted[key] = v
		}
	}

	next, err := w.engine.Complete(ctx, journey, path, accepted)
	if err != nil {
		return nil, "", err
	}
	return map[string]*domain.ValidationError{}, next, nil
}

// ResolveNext evaluates the step's next tree against the journey's stored
// values without mutating anything.
func (w *Wizard) ResolveNext(journey *domain.Journey, path string) (string, error) {
	return w.engine.ResolveNext(path, domain.NewContext(journey.Values))
}
