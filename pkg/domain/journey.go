package domain

import "time"

// HistoryEntry records the completion of a single step.
type HistoryEntry struct {
	// Step is the path of the completed step.
	Step string `json:"step"`

	// Next is the target resolved at completion time, evaluated against the
	// values stored below. Reachability checks compare against this value.
	Next string `json:"next,omitempty"`

	// Fields snapshots the step's field values at completion. The
	// invalidation cascade uses it to locate the entry that introduced a
	// field.
	Fields map[string]any `json:"fields,omitempty"`

	// CompletedAt is when the entry was appended.
	CompletedAt time.Time `json:"completed_at"`
}

// Journey is the shared, mutable state of one user's journey: the stored
// field values and the ordered completion history. It is owned by the session
// layer and passed by reference into the engine per call; the engine never
// retains it between calls.
//
// Concurrent requests within the same journey are not coordinated here. The
// session layer must serialize writes per journey (see session.Manager), or
// the engine may observe and write a stale history.
type Journey struct {
	ID      string         `json:"id"`
	Values  map[string]any `json:"values"`
	History []HistoryEntry `json:"history"`
}

// NewJourney creates an empty journey.
func NewJourney(id string) *Journey {
	return &Journey{
		ID:     id,
		Values: make(map[string]any),
	}
}

// Visited reports whether a step appears in the completion history.
func (j *Journey) Visited(step string) bool {
	for _, e := range j.History {
		if e.Step == step {
			return true
		}
	}
	return false
}

// Last returns the most recent history entry, or nil if the history is empty.
func (j *Journey) Last() *HistoryEntry {
	if len(j.History) == 0 {
		return nil
	}
	return &j.History[len(j.History)-1]
}

// ResetJourney clears the history and stored values.
func (j *Journey) ResetJourney() {
	j.History = nil
	j.Values = make(map[string]any)
}
