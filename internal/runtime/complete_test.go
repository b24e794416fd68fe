package runtime

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteRecordsHistory(t *testing.T) {
	e := newEngine(t, licenceSpec())
	journey := domain.NewJourney("j1")
	ctx := context.Background()

	next, err := e.Complete(ctx, journey, "/start", nil)
	require.NoError(t, err)
	assert.Equal(t, "/age", next)

	next, err = e.Complete(ctx, journey, "/age", map[string]any{"age": "30"})
	require.NoError(t, err)
	assert.Equal(t, "/details", next)

	require.Len(t, journey.History, 2)
	entry := journey.History[1]
	assert.Equal(t, "/age", entry.Step)
	assert.Equal(t, "/details", entry.Next, "the resolved target is recorded with the entry")
	assert.Equal(t, map[string]any{"age": "30"}, entry.Fields)
	assert.False(t, entry.CompletedAt.IsZero())
	assert.Equal(t, "30", journey.Values["age"])
}

func TestCompleteResolvesAgainstSubmission(t *testing.T) {
	e := newEngine(t, licenceSpec())
	journey := domain.NewJourney("j1")

	next, err := e.Complete(context.Background(), journey, "/age", map[string]any{"age": "17"})
	require.NoError(t, err)
	assert.Equal(t, "/exit", next, "next sees the values as just submitted")
}

func TestCompletedStepBecomesReachable(t *testing.T) {
	// Whatever Complete resolves must then pass the reachability check, so
	// the redirect the caller issues cannot bounce.
	e := newEngine(t, licenceSpec())
	journey := domain.NewJourney("j1")
	ctx := context.Background()

	next, err := e.Complete(ctx, journey, "/start", nil)
	require.NoError(t, err)
	require.NoError(t, e.CheckStep(next, journey))

	next, err = e.Complete(ctx, journey, "/age", map[string]any{"age": "17"})
	require.NoError(t, err)
	require.NoError(t, e.CheckStep(next, journey))
}

func TestInvalidationCascade(t *testing.T) {
	e := newEngine(t, licenceSpec())
	journey := domain.NewJourney("j1")
	ctx := context.Background()

	_, err := e.Complete(ctx, journey, "/start", nil)
	require.NoError(t, err)
	_, err = e.Complete(ctx, journey, "/age", map[string]any{"age": "30"})
	require.NoError(t, err)
	_, err = e.Complete(ctx, journey, "/details", map[string]any{"name": "Ada", "postcode": "SW1A 1AA"})
	require.NoError(t, err)
	require.Len(t, journey.History, 3)

	// Changing the answer clears the invalidated fields and drops every
	// history entry recorded after the one that set it.
	_, err = e.Complete(ctx, journey, "/age", map[string]any{"age": "45"})
	require.NoError(t, err)

	assert.NotContains(t, journey.Values, "name")
	assert.NotContains(t, journey.Values, "postcode")
	assert.Equal(t, "45", journey.Values["age"])

	steps := make([]string, 0, len(journey.History))
	for _, entry := range journey.History {
		steps = append(steps, entry.Step)
	}
	assert.Equal(t, []string{"/start", "/age"}, steps,
		"the /details entry is truncated; the re-completion replaces the old /age entry")

	allowed, err := e.IsStepAllowed("/confirm", journey)
	require.NoError(t, err)
	assert.False(t, allowed, "downstream steps must be walked again")
}

func TestResubmitSameValueNoCascade(t *testing.T) {
	e := newEngine(t, licenceSpec())
	journey := domain.NewJourney("j1")
	ctx := context.Background()

	var events []*domain.InvalidateEvent
	e.hooks.OnInvalidate = func(_ context.Context, ev *domain.InvalidateEvent) {
		events = append(events, ev)
	}

	_, err := e.Complete(ctx, journey, "/start", nil)
	require.NoError(t, err)
	_, err = e.Complete(ctx, journey, "/age", map[string]any{"age": "30"})
	require.NoError(t, err)
	_, err = e.Complete(ctx, journey, "/details", map[string]any{"name": "Ada"})
	require.NoError(t, err)

	_, err = e.Complete(ctx, journey, "/age", map[string]any{"age": "30"})
	require.NoError(t, err)

	assert.Equal(t, "Ada", journey.Values["name"], "an unchanged answer clears nothing")
	assert.Empty(t, events)
}

func TestCascadeIsOneLevel(t *testing.T) {
	spec := licenceSpec()
	// name invalidates postcode, but a change to age must not follow the
	// chain through name.
	spec.Fields["name"].Invalidates = []string{"postcode"}
	spec.Fields["age"].Invalidates = []string{"name"}
	e := newEngine(t, spec)

	journey := domain.NewJourney("j1")
	ctx := context.Background()
	_, err := e.Complete(ctx, journey, "/age", map[string]any{"age": "30"})
	require.NoError(t, err)
	_, err = e.Complete(ctx, journey, "/details", map[string]any{"name": "Ada", "postcode": "SW1A 1AA"})
	require.NoError(t, err)

	_, err = e.Complete(ctx, journey, "/age", map[string]any{"age": "31"})
	require.NoError(t, err)

	assert.NotContains(t, journey.Values, "name")
	assert.Contains(t, journey.Values, "postcode", "cleared fields' own invalidates lists are not followed")
}

func TestFieldWithoutInvalidatesNoCascade(t *testing.T) {
	e := newEngine(t, licenceSpec())
	journey := domain.NewJourney("j1")
	ctx := context.Background()

	_, err := e.Complete(ctx, journey, "/age", map[string]any{"age": "30"})
	require.NoError(t, err)
	_, err = e.Complete(ctx, journey, "/details", map[string]any{"name": "Ada"})
	require.NoError(t, err)

	// name has no invalidates list; changing it clears nothing and the
	// re-completion replaces the step's entry rather than growing history.
	_, err = e.Complete(ctx, journey, "/details", map[string]any{"name": "Grace"})
	require.NoError(t, err)

	assert.Len(t, journey.History, 2)
	assert.Equal(t, "30", journey.Values["age"])
	assert.Equal(t, "Grace", journey.History[1].Fields["name"])
}

func TestRecompletionClosesAbandonedBranch(t *testing.T) {
	e := newEngine(t, licenceSpec())
	journey := domain.NewJourney("j1")
	ctx := context.Background()

	next, err := e.Complete(ctx, journey, "/age", map[string]any{"age": "17"})
	require.NoError(t, err)
	require.Equal(t, "/exit", next)
	require.NoError(t, e.CheckStep("/exit", journey))

	next, err = e.Complete(ctx, journey, "/age", map[string]any{"age": "21"})
	require.NoError(t, err)
	require.Equal(t, "/details", next)

	require.Len(t, journey.History, 1, "one entry per completed step")
	assert.Equal(t, "/details", journey.History[0].Next)

	// The branch the old answer opened must close with it.
	err = e.CheckStep("/exit", journey)
	var jerr *domain.JourneyError
	require.ErrorAs(t, err, &jerr)
	assert.NoError(t, e.CheckStep("/details", journey))
}

func TestInvalidateEventEmitted(t *testing.T) {
	var events []*domain.InvalidateEvent
	e := newEngine(t, licenceSpec(), WithLifecycleHooks(domain.LifecycleHooks{
		OnInvalidate: func(_ context.Context, ev *domain.InvalidateEvent) {
			events = append(events, ev)
		},
	}))

	journey := domain.NewJourney("j1")
	ctx := context.Background()
	_, err := e.Complete(ctx, journey, "/age", map[string]any{"age": "30"})
	require.NoError(t, err)
	_, err = e.Complete(ctx, journey, "/details", map[string]any{"name": "Ada", "postcode": "SW1A 1AA"})
	require.NoError(t, err)
	_, err = e.Complete(ctx, journey, "/age", map[string]any{"age": "31"})
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, "age", events[0].Field)
	assert.ElementsMatch(t, []string{"name", "postcode"}, events[0].Cleared)
	assert.Equal(t, 1, events[0].Truncated)
	assert.Equal(t, "j1", events[0].JourneyID)
}

func TestEnterReset(t *testing.T) {
	spec := licenceSpec()
	spec.Steps["/details"].Reset = true
	e := newEngine(t, spec)

	journey := domain.NewJourney("j1")
	journey.Values["name"] = "Ada"
	journey.Values["age"] = "30"
	journey.History = append(journey.History, domain.HistoryEntry{Step: "/age", Next: "/details"})

	require.NoError(t, e.Enter(context.Background(), journey, "/details"))
	assert.NotContains(t, journey.Values, "name", "reset clears the step's own fields on entry")
	assert.Equal(t, "30", journey.Values["age"], "other fields are untouched")
}

func TestEnterDeniedStep(t *testing.T) {
	e := newEngine(t, licenceSpec())
	err := e.Enter(context.Background(), domain.NewJourney("j1"), "/details")
	var jerr *domain.JourneyError
	assert.ErrorAs(t, err, &jerr)
}

func TestEnterEmitsStepEvent(t *testing.T) {
	var entered []string
	e := newEngine(t, licenceSpec(), WithLifecycleHooks(domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, ev *domain.StepEvent) {
			entered = append(entered, ev.Step)
		},
	}))

	require.NoError(t, e.Enter(context.Background(), domain.NewJourney("j1"), "/start"))
	assert.Equal(t, []string{"/start"}, entered)
}

func TestResetJourney(t *testing.T) {
	spec := licenceSpec()
	spec.Steps["/restart"] = &domain.StepSpec{
		EntryPoint:   true,
		ResetJourney: true,
		Fields:       []string{"age"},
		Next:         "/age",
	}
	e := newEngine(t, spec)

	journey := domain.NewJourney("j1")
	ctx := context.Background()
	_, err := e.Complete(ctx, journey, "/age", map[string]any{"age": "30"})
	require.NoError(t, err)
	_, err = e.Complete(ctx, journey, "/details", map[string]any{"name": "Ada"})
	require.NoError(t, err)

	_, err = e.Complete(ctx, journey, "/restart", map[string]any{"age": "21"})
	require.NoError(t, err)

	require.Len(t, journey.History, 1, "old history is gone; the resetting step remains")
	assert.Equal(t, "/restart", journey.History[0].Step)
	assert.Equal(t, "21", journey.Values["age"], "the resetting step's own submission survives")
	assert.NotContains(t, journey.Values, "name")
}

func TestCompleteLink(t *testing.T) {
	e := newEngine(t, licenceSpec())
	journey := domain.NewJourney("j1")

	next, err := e.CompleteLink(context.Background(), journey, "/start")
	require.NoError(t, err)
	assert.Equal(t, "/age", next)
	require.Len(t, journey.History, 1)
	assert.Empty(t, journey.History[0].Fields)
}
