package domain

import "strings"

// CompareFunc compares a field's current value against the condition's
// configured value. The condition is passed through so custom comparators can
// inspect their own configuration.
type CompareFunc func(fieldValue any, ctx *Context, cond *Branch) bool

// PredicateFunc is a custom condition: a truthy return is a match.
type PredicateFunc func(ctx *Context) bool

// TargetFunc lazily resolves a matching branch's target from the evaluation
// context. It is only invoked for the branch that matched.
type TargetFunc func(ctx *Context) string

// BranchKind tags the variant of a compiled condition branch.
type BranchKind int

const (
	// BranchFallback matches unconditionally. It must be the last usable
	// entry of a condition list; later entries are unreachable.
	BranchFallback BranchKind = iota

	// BranchField compares a field's current value using an operator.
	BranchField

	// BranchFunc delegates matching to a predicate function.
	BranchFunc
)

// Branch is one compiled condition entry. Exactly one of the variants applies,
// selected by Kind.
type Branch struct {
	Kind BranchKind

	// Field/Op/Value drive a BranchField comparison. Op is resolved at compile
	// time; the default is strict equality.
	Field  string
	OpName string
	Op     CompareFunc
	Value  any

	// Fn drives a BranchFunc match.
	Fn PredicateFunc

	// Next is resolved only when this branch matches.
	Next Next
}

// Next is the compiled next-step resolution tree: either a terminal target
// (step path or external URL), a lazily evaluated target function, or a
// nested condition list evaluated first-match-wins.
type Next struct {
	Target   string
	TargetFn TargetFunc
	Branches []Branch
}

// IsZero reports whether no next resolution is configured.
func (n Next) IsZero() bool {
	return n.Target == "" && n.TargetFn == nil && len(n.Branches) == 0
}

// Targets returns every statically known terminal target in the tree. Lazy
// targets are unknowable without a context and are omitted. Used by the graph
// linter and the mermaid renderer.
func (n Next) Targets() []string {
	var out []string
	if n.Target != "" {
		out = append(out, n.Target)
	}
	for _, b := range n.Branches {
		out = append(out, b.Next.Targets()...)
	}
	return out
}

// IsExternal reports whether a resolved target is an external URL rather than
// a step path.
func IsExternal(target string) bool {
	return strings.Contains(target, "://") ||
		strings.HasPrefix(target, "http:") ||
		strings.HasPrefix(target, "https:")
}

// ConditionSpec is the raw form of a condition entry as authored in YAML or
// via the dsl builder. A plain string in a `next` list is shorthand for an
// unconditional fallback.
type ConditionSpec struct {
	Field string `mapstructure:"field" yaml:"field"`
	Op    any    `mapstructure:"op" yaml:"op"`
	Value any    `mapstructure:"value" yaml:"value"`

	// Fn names a predicate registered with the compiler, or holds a
	// PredicateFunc directly when authored in code.
	Fn any `mapstructure:"fn" yaml:"fn"`

	// Next is a step path, an external URL, a TargetFunc, or a nested
	// sequence of condition specs.
	Next any `mapstructure:"next" yaml:"next"`
}
