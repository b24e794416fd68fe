package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter    EventType = "step_enter"
	EventStepComplete EventType = "step_complete"
	EventInvalidate   EventType = "invalidate"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	JourneyID string    `json:"journey_id"`
}

// StepEvent represents entry to or completion of a step.
type StepEvent struct {
	EventBase
	Step string `json:"step"`
	Next string `json:"next,omitempty"`
}

// InvalidateEvent represents an invalidation cascade triggered by a changed
// field.
type InvalidateEvent struct {
	EventBase
	Step string `json:"step"`
	// Field is the changed field that triggered the cascade.
	Field string `json:"field"`
	// Cleared lists the field identifiers removed from stored values.
	Cleared []string `json:"cleared,omitempty"`
	// Truncated is the number of history entries dropped.
	Truncated int `json:"truncated"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStepEnter    func(context.Context, *StepEvent)
	OnStepComplete func(context.Context, *StepEvent)
	OnInvalidate   func(context.Context, *InvalidateEvent)
}
