// Package validator lints a compiled journey graph for structural problems
// that compile cannot catch per-step: broken next targets, steps unreachable
// from any entry point, and condition entries shadowed by an earlier
// unconditional fallback.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// ValidateGraph checks the step graph and returns an error aggregating every
// problem found, or nil when the graph is sound.
func ValidateGraph(steps domain.Steps) error {
	var problems []string

	paths := make([]string, 0, len(steps))
	for path := range steps {
		paths = append(paths, path)
	}
	sort.Strings(paths) // Deterministic report order

	// 1. Broken links and dead branches.
	for _, path := range paths {
		step := steps[path]
		for _, target := range step.Next.Targets() {
			if domain.IsExternal(target) {
				continue
			}
			if _, ok := steps[target]; !ok {
				problems = append(problems, fmt.Sprintf("step %s: next target %q is not defined", path, target))
			}
		}
		problems = append(problems, deadBranches(path, step.Next)...)
		for _, prereq := range step.Prereqs {
			if _, ok := steps[prereq]; !ok {
				problems = append(problems, fmt.Sprintf("step %s: prereq %q is not defined", path, prereq))
			}
		}
	}

	// 2. Reachability crawl from the entry points.
	visited := make(map[string]bool)
	var queue []string
	for _, path := range paths {
		if steps[path].EntryPoint || !steps[path].CheckJourney {
			queue = append(queue, path)
		}
	}
	if len(queue) == 0 && len(paths) > 0 {
		problems = append(problems, "no entry point defined")
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		step, ok := steps[current]
		if !ok {
			continue // Already reported as a broken link
		}
		for _, target := range step.Next.Targets() {
			if !domain.IsExternal(target) && !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	for _, path := range paths {
		if !visited[path] {
			problems = append(problems, fmt.Sprintf("step %s is unreachable from any entry point", path))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("found %d problems:\n- %s", len(problems), strings.Join(problems, "\n- "))
	}
	return nil
}

// deadBranches reports condition entries that can never match because an
// unconditional fallback precedes them. First-match-wins makes everything
// after a fallback unreachable.
func deadBranches(path string, next domain.Next) []string {
	var problems []string
	seenFallback := false
	for i, branch := range next.Branches {
		if seenFallback {
			problems = append(problems, fmt.Sprintf("step %s: condition %d is unreachable (follows an unconditional fallback)", path, i))
			continue
		}
		if branch.Kind == domain.BranchFallback {
			seenFallback = true
		}
		problems = append(problems, deadBranches(path, branch.Next)...)
	}
	return problems
}
