/*
Package arbor is a declarative engine for multi-step data-collection
journeys ("wizards").

A journey is defined as a graph of steps and a registry of fields, authored
in YAML or in code via the dsl builder. Per request, the engine decides
whether a step may be entered given the user's completion history, validates
submitted values against per-field rules, and resolves conditional "next"
expressions to pick the following step, including the invalidation cascade
that clears downstream answers when an upstream one changes.

The engine performs no I/O and holds no per-user state: journey state lives
in a ports.JourneyStore behind a session.Manager, which serializes
concurrent writes per journey.

	spec, err := arbor.LoadSpec("journey.yaml")
	wizard, err := arbor.New(spec)

	journey := domain.NewJourney("user-42")
	errs, next, err := wizard.Submit(ctx, journey, "/start", values)
*/
package arbor
