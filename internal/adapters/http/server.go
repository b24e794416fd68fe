// Package http exposes a journey over a JSON API. It is thin glue: every
// decision is delegated to the wizard core, and every journey mutation runs
// inside the session manager's per-journey lock.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves one wizard over HTTP.
type Server struct {
	wizard   *arbor.Wizard
	sessions *session.Manager
	metrics  *observability.Metrics
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics wires request-level collectors (journeys started) into the
// handler. Engine-level collectors are wired on the Wizard itself.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// NewHandler creates the HTTP handler for a wizard.
func NewHandler(wizard *arbor.Wizard, sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{wizard: wizard, sessions: sessions}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/journeys", s.createJourney)
	r.Get("/journeys/{journeyID}/steps/*", s.getStep)
	r.Post("/journeys/{journeyID}/steps/*", s.postStep)
	r.Get("/graph", s.getGraph)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

type stepResponse struct {
	Allowed bool           `json:"allowed"`
	Step    string         `json:"step,omitempty"`
	Title   string         `json:"title,omitempty"`
	Content string         `json:"content,omitempty"`
	Values  map[string]any `json:"values,omitempty"`

	// Set when the step is not allowed.
	Code     string `json:"code,omitempty"`
	Fallback string `json:"fallback,omitempty"`
}

type submitResponse struct {
	Errors map[string]*domain.ValidationError `json:"errors,omitempty"`
	Next   string                             `json:"next,omitempty"`
}

func (s *Server) createJourney(w http.ResponseWriter, r *http.Request) {
	journey, err := s.sessions.Start(r.Context(), "")
	if err != nil {
		http.Error(w, "Failed to create journey", http.StatusInternalServerError)
		return
	}
	if s.metrics != nil {
		s.metrics.JourneysStarted.Inc()
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": journey.ID})
}

func (s *Server) getStep(w http.ResponseWriter, r *http.Request) {
	journeyID := chi.URLParam(r, "journeyID")
	path := "/" + chi.URLParam(r, "*")

	s.withJourney(w, r, journeyID, func(journey *domain.Journey) (int, any) {
		if err := s.wizard.Enter(r.Context(), journey, path); err != nil {
			return stepDenied(path, err)
		}
		resp := stepResponse{Allowed: true, Step: path}
		if step := s.wizard.Steps()[path]; step != nil {
			resp.Title = step.Title
			resp.Content = step.Content
			resp.Values = stepValues(step, journey)
		}
		return http.StatusOK, resp
	})
}

func (s *Server) postStep(w http.ResponseWriter, r *http.Request) {
	journeyID := chi.URLParam(r, "journeyID")
	path := "/" + chi.URLParam(r, "*")

	var submitted map[string]any
	if err := json.NewDecoder(r.Body).Decode(&submitted); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.withJourney(w, r, journeyID, func(journey *domain.Journey) (int, any) {
		errs, next, err := s.wizard.Submit(r.Context(), journey, path, submitted)
		if err != nil {
			return stepDenied(path, err)
		}
		if len(errs) > 0 {
			return http.StatusUnprocessableEntity, submitResponse{Errors: errs}
		}
		return http.StatusOK, submitResponse{Next: next}
	})
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(s.wizard.Steps(), nil)))
}

// withJourney loads the journey, runs fn under the per-journey lock, and
// persists the (possibly mutated) journey before replying.
func (s *Server) withJourney(w http.ResponseWriter, r *http.Request, journeyID string, fn func(*domain.Journey) (int, any)) {
	var status int
	var body any

	err := s.sessions.WithLock(r.Context(), journeyID, func(ctx context.Context) error {
		journey, err := s.sessions.Store().Load(ctx, journeyID)
		if err != nil {
			return err
		}
		status, body = fn(journey)
		return s.sessions.Store().Save(ctx, journeyID, journey)
	})
	if err != nil {
		if errors.Is(err, domain.ErrJourneyNotFound) {
			http.Error(w, "Journey not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Journey access failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, status, body)
}

func stepDenied(path string, err error) (int, any) {
	var jerr *domain.JourneyError
	if errors.As(err, &jerr) {
		status := http.StatusConflict
		if jerr.Code == domain.CodeMissingPrereq {
			status = http.StatusForbidden
		}
		return status, stepResponse{
			Allowed:  false,
			Step:     path,
			Code:     string(jerr.Code),
			Fallback: jerr.Fallback,
		}
	}
	if errors.Is(err, domain.ErrStepNotFound) {
		return http.StatusNotFound, map[string]string{"error": "step not found"}
	}
	return http.StatusInternalServerError, map[string]string{"error": err.Error()}
}

func stepValues(step *domain.Step, journey *domain.Journey) map[string]any {
	values := make(map[string]any, len(step.Fields))
	for _, key := range step.Fields {
		if v, ok := journey.Values[key]; ok {
			values[key] = v
		}
	}
	return values
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
