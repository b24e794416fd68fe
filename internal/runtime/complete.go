package runtime

import (
	"context"
	"reflect"

	"github.com/aretw0/arbor/pkg/domain"
)

// Enter prepares a step for rendering: it enforces reachability, applies the
// step's reset flag to its own fields, and emits the step-enter hook.
func (e *Engine) Enter(ctx context.Context, journey *domain.Journey, path string) error {
	step, err := e.Step(path)
	if err != nil {
		return err
	}
	if err := e.CheckStep(path, journey); err != nil {
		return err
	}

	if step.Reset {
		for _, key := range step.Fields {
			delete(journey.Values, key)
		}
	}

	e.emitStepEnter(ctx, journey.ID, path)
	return nil
}

// Complete records a successful submission: it applies the invalidation
// cascade for changed fields, stores the submitted values, resolves the next
// target against the updated values, and appends the step to the history.
// Validation is the caller's responsibility and must have passed already.
//
// The returned target is a step path or an external URL; empty means the
// step is terminal.
func (e *Engine) Complete(ctx context.Context, journey *domain.Journey, path string, submitted map[string]any) (string, error) {
	step, err := e.Step(path)
	if err != nil {
		return "", err
	}

	// Cascade before applying values: the diff is against the previously
	// stored value of each of this step's fields.
	for _, key := range step.Fields {
		newValue, ok := submitted[key]
		if !ok {
			continue
		}
		oldValue, had := journey.Values[key]
		if had && reflect.DeepEqual(oldValue, newValue) {
			continue
		}
		e.invalidate(ctx, journey, path, key)
	}

	for _, key := range step.Fields {
		if v, ok := submitted[key]; ok {
			journey.Values[key] = v
		}
	}

	evalCtx := domain.NewContext(journey.Values)
	next := resolveNext(step.Next, evalCtx)

	if step.ResetJourney {
		journey.ResetJourney()
		for _, key := range step.Fields {
			if v, ok := submitted[key]; ok {
				journey.Values[key] = v
			}
		}
	}

	entry := domain.HistoryEntry{
		Step:        path,
		Next:        next,
		Fields:      snapshot(step.Fields, journey.Values),
		CompletedAt: e.now(),
	}

	// Re-completing a step replaces its previous entry in place. Appending a
	// second entry would leave the old recorded resolution behind, keeping an
	// abandoned branch reachable after the answer changed.
	replaced := false
	for i := len(journey.History) - 1; i >= 0; i-- {
		if journey.History[i].Step == path {
			journey.History[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		journey.History = append(journey.History, entry)
	}

	e.logger.Debug("step completed", "step", path, "next", next)
	e.emitStepComplete(ctx, journey.ID, path, next)
	return next, nil
}

// CompleteLink marks a link-only (noPost) step complete without a
// submission. The next target is resolved against the stored values.
func (e *Engine) CompleteLink(ctx context.Context, journey *domain.Journey, path string) (string, error) {
	return e.Complete(ctx, journey, path, nil)
}

// invalidate applies the cascade for one changed field: the identifiers the
// field invalidates are cleared from stored values, and every history entry
// recorded after the entry that set the changed field is truncated so those
// downstream steps must be revisited.
//
// The cascade is one level deep: cleared fields' own invalidates lists are
// not followed. This mirrors the single-level semantics journeys are written
// against; do not make it transitive.
func (e *Engine) invalidate(ctx context.Context, journey *domain.Journey, path, key string) {
	field := e.fields[key]
	if field == nil || len(field.Invalidates) == 0 {
		return
	}

	cleared := make([]string, 0, len(field.Invalidates))
	for _, target := range field.Invalidates {
		if _, ok := journey.Values[target]; ok {
			cleared = append(cleared, target)
		}
		delete(journey.Values, target)
	}

	truncated := 0
	for i, entry := range journey.History {
		if _, ok := entry.Fields[key]; ok {
			truncated = len(journey.History) - i - 1
			journey.History = journey.History[:i+1]
			break
		}
	}

	if len(cleared) > 0 || truncated > 0 {
		e.logger.Debug("invalidation cascade",
			"step", path,
			"field", key,
			"cleared", cleared,
			"truncated", truncated,
		)
		e.emitInvalidate(ctx, journey.ID, path, key, cleared, truncated)
	}
}

func snapshot(keys []string, values map[string]any) map[string]any {
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		if v, ok := values[key]; ok {
			out[key] = v
		}
	}
	return out
}
