package domain

import (
	"errors"
	"fmt"
)

// ErrJourneyNotFound is returned when a journey ID cannot be found in the store.
var ErrJourneyNotFound = errors.New("journey not found")

// ErrStepNotFound is returned when a step path is not defined in the journey.
var ErrStepNotFound = errors.New("step not found")

// ConfigurationError indicates a malformed journey definition: an unknown
// validator name, an unnamed validator function, a condition with neither fn
// nor field, or an unknown comparator. It is a developer error, surfaces at
// compile time, and must not be caught and retried.
type ConfigurationError struct {
	// Scope locates the offending definition ("field email", "step /start").
	Scope  string
	Detail string
}

func (e *ConfigurationError) Error() string {
	if e.Scope == "" {
		return fmt.Sprintf("invalid journey configuration: %s", e.Detail)
	}
	return fmt.Sprintf("invalid journey configuration (%s): %s", e.Scope, e.Detail)
}

// JourneyErrorCode classifies a recoverable journey failure.
type JourneyErrorCode string

const (
	// CodeNotAllowed means the step is not reachable from the current
	// history; Fallback carries the redirect target.
	CodeNotAllowed JourneyErrorCode = "NOT_ALLOWED"

	// CodeMissingPrereq means the step is not reachable and the history is
	// empty; there is nowhere to fall back to.
	CodeMissingPrereq JourneyErrorCode = "MISSING_PREREQ"
)

// JourneyError is a user-caused, recoverable failure: the requested step may
// not be entered. It carries enough information for the caller to redirect.
type JourneyError struct {
	Code JourneyErrorCode

	// Step is the path that was attempted.
	Step string

	// Fallback is the most recent completed step, when the history is
	// non-empty. Empty for CodeMissingPrereq.
	Fallback string
}

func (e *JourneyError) Error() string {
	if e.Fallback != "" {
		return fmt.Sprintf("step %s not allowed (%s), fallback %s", e.Step, e.Code, e.Fallback)
	}
	return fmt.Sprintf("step %s not allowed (%s)", e.Step, e.Code)
}

// ValidationError reports the first failing validator for a field. It is
// returned as data, not raised: the caller re-renders the step with inline
// errors.
type ValidationError struct {
	Key        string `json:"key"`
	Type       string `json:"type"`
	ErrorGroup string `json:"errorGroup,omitempty"`
	Arguments  []any  `json:"arguments,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q failed %q validation", e.Key, e.Type)
}
