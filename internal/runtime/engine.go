// Package runtime implements the journey resolver: step reachability,
// conditional next-step resolution, and the invalidation cascade applied on
// submission. It evaluates synchronously over in-memory data and performs no
// I/O; loading and persisting the journey is the session layer's job.
package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
)

// Engine resolves steps against a compiled journey definition. It is
// stateless between calls: the journey is passed by reference per call and
// never retained.
type Engine struct {
	steps  domain.Steps
	fields domain.Fields
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) { e.hooks = hooks }
}

// WithClock overrides the time source (used by tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine over the compiled steps and fields.
func New(steps domain.Steps, fields domain.Fields, opts ...Option) *Engine {
	e := &Engine{
		steps:  steps,
		fields: fields,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Steps returns the compiled step registry (read-only use).
func (e *Engine) Steps() domain.Steps { return e.steps }

// Fields returns the compiled field registry (read-only use).
func (e *Engine) Fields() domain.Fields { return e.fields }

// Step looks up a compiled step by path.
func (e *Engine) Step(path string) (*domain.Step, error) {
	step, ok := e.steps[path]
	if !ok {
		return nil, domain.ErrStepNotFound
	}
	return step, nil
}

func (e *Engine) emitStepEnter(ctx context.Context, journeyID, step string) {
	if e.hooks.OnStepEnter == nil {
		return
	}
	e.hooks.OnStepEnter(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventStepEnter, JourneyID: journeyID},
		Step:      step,
	})
}

func (e *Engine) emitStepComplete(ctx context.Context, journeyID, step, next string) {
	if e.hooks.OnStepComplete == nil {
		return
	}
	e.hooks.OnStepComplete(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventStepComplete, JourneyID: journeyID},
		Step:      step,
		Next:      next,
	})
}

func (e *Engine) emitInvalidate(ctx context.Context, journeyID, step, field string, cleared []string, truncated int) {
	if e.hooks.OnInvalidate == nil {
		return
	}
	e.hooks.OnInvalidate(ctx, &domain.InvalidateEvent{
		EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventInvalidate, JourneyID: journeyID},
		Step:      step,
		Field:     field,
		Cleared:   cleared,
		Truncated: truncated,
	})
}
