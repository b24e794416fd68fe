package domain

// StepSpec is the raw, declarative definition of a step as authored in YAML
// or via the dsl builder.
type StepSpec struct {
	// Next declares how the following step is chosen: a step path, an external
	// URL, a TargetFunc, or an ordered sequence of condition specs evaluated
	// first-match-wins (a plain string entry is the unconditional fallback).
	Next any `mapstructure:"next" yaml:"next"`

	// Fields lists the field identifiers collected on this step.
	Fields []string `mapstructure:"fields" yaml:"fields"`

	// EntryPoint marks a step that may start a journey; it is always
	// reachable.
	EntryPoint bool `mapstructure:"entryPoint" yaml:"entryPoint"`

	// CheckJourney controls reachability enforcement. Defaults to true;
	// normalized to a plain bool during compilation.
	CheckJourney *bool `mapstructure:"checkJourney" yaml:"checkJourney"`

	// Prereqs are step paths that, when present in history, satisfy
	// reachability independent of normal graph reachability.
	Prereqs []string `mapstructure:"prereqs" yaml:"prereqs"`

	// Reset clears this step's own field values on entry.
	Reset bool `mapstructure:"reset" yaml:"reset"`

	// ResetJourney clears the whole journey history when this step completes.
	ResetJourney bool `mapstructure:"resetJourney" yaml:"resetJourney"`

	// Skip marks a step the engine may pass through without rendering.
	Skip bool `mapstructure:"skip" yaml:"skip"`

	// NoPost marks a link-only step: it has no submission and completes on
	// render.
	NoPost bool `mapstructure:"noPost" yaml:"noPost"`

	// Editable allows revisiting the step from a change link after it has
	// been completed.
	Editable bool `mapstructure:"editable" yaml:"editable"`

	// Title and Content are presentation data (Content is markdown, rendered
	// by the CLI preview and interactive runner).
	Title   string `mapstructure:"title" yaml:"title"`
	Content string `mapstructure:"content" yaml:"content"`
}

// Step is the compiled, immutable form of a StepSpec.
type Step struct {
	Path         string
	Next         Next
	Fields       []string
	EntryPoint   bool
	CheckJourney bool
	Prereqs      []string
	Reset        bool
	ResetJourney bool
	Skip         bool
	NoPost       bool
	Editable     bool
	Title        string
	Content      string
}

// Steps maps step paths to their compiled definitions.
type Steps map[string]*Step
