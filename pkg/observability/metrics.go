package observability

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors for the journey engine.
type Metrics struct {
	StepsEntered       *prometheus.CounterVec
	StepsCompleted     *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	Invalidations      *prometheus.CounterVec
	JourneysStarted    prometheus.Counter
}

// NewMetrics creates the collectors and registers them with the given
// registerer (pass prometheus.DefaultRegisterer for the global registry).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StepsEntered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arbor",
			Name:      "steps_entered_total",
			Help:      "Steps rendered to users, by step path.",
		}, []string{"step"}),
		StepsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arbor",
			Name:      "steps_completed_total",
			Help:      "Successful step submissions, by step path.",
		}, []string{"step"}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arbor",
			Name:      "validation_failures_total",
			Help:      "Field validation failures, by field and validator type.",
		}, []string{"field", "type"}),
		Invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arbor",
			Name:      "invalidations_total",
			Help:      "Invalidation cascades triggered by changed answers, by field.",
		}, []string{"field"}),
		JourneysStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arbor",
			Name:      "journeys_started_total",
			Help:      "Journeys initialized.",
		}),
	}

	reg.MustRegister(
		m.StepsEntered,
		m.StepsCompleted,
		m.ValidationFailures,
		m.Invalidations,
		m.JourneysStarted,
	)
	return m
}

// Hooks returns lifecycle hooks that feed the collectors, chaining to next
// when provided.
func (m *Metrics) Hooks(next domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, ev *domain.StepEvent) {
			m.StepsEntered.WithLabelValues(ev.Step).Inc()
			if next.OnStepEnter != nil {
				next.OnStepEnter(ctx, ev)
			}
		},
		OnStepComplete: func(ctx context.Context, ev *domain.StepEvent) {
			m.StepsCompleted.WithLabelValues(ev.Step).Inc()
			if next.OnStepComplete != nil {
				next.OnStepComplete(ctx, ev)
			}
		},
		OnInvalidate: func(ctx context.Context, ev *domain.InvalidateEvent) {
			m.Invalidations.WithLabelValues(ev.Field).Inc()
			if next.OnInvalidate != nil {
				next.OnInvalidate(ctx, ev)
			}
		},
	}
}

// ObserveValidation records a validation failure.
func (m *Metrics) ObserveValidation(err *domain.ValidationError) {
	if err == nil {
		return
	}
	m.ValidationFailures.WithLabelValues(err.Key, err.Type).Inc()
}
