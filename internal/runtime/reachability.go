package runtime

import "github.com/aretw0/arbor/pkg/domain"

// IsStepAllowed reports whether the step may be entered given the journey's
// history. A step is allowed when any of:
//
//   - it is flagged as an entry point
//   - one of its prereqs appears in the history
//   - some history entry's recorded next resolution equals this step
//   - the step opts out of journey checking (checkJourney: false)
func (e *Engine) IsStepAllowed(path string, journey *domain.Journey) (bool, error) {
	step, err := e.Step(path)
	if err != nil {
		return false, err
	}

	if step.EntryPoint {
		return true, nil
	}
	for _, prereq := range step.Prereqs {
		if journey.Visited(prereq) {
			return true, nil
		}
	}
	for _, entry := range journey.History {
		if entry.Next == path {
			return true, nil
		}
	}
	return !step.CheckJourney, nil
}

// CheckStep enforces reachability. It returns nil when the step is allowed,
// a *domain.JourneyError describing the redirect otherwise: CodeNotAllowed
// with the most recent completed step as fallback, or CodeMissingPrereq when
// the history is empty and there is nowhere to fall back to.
func (e *Engine) CheckStep(path string, journey *domain.Journey) error {
	allowed, err := e.IsStepAllowed(path, journey)
	if err != nil {
		return err
	}
	if allowed {
		return nil
	}

	if last := journey.Last(); last != nil {
		e.logger.Debug("step not allowed, redirecting", "step", path, "fallback", last.Step)
		return &domain.JourneyError{Code: domain.CodeNotAllowed, Step: path, Fallback: last.Step}
	}

	e.logger.Debug("step not allowed with empty history", "step", path)
	return &domain.JourneyError{Code: domain.CodeMissingPrereq, Step: path}
}
