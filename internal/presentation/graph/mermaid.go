// Package graph renders a compiled journey as a Mermaid flowchart, used by
// the `arbor graph` command.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Overlay contains dynamic journey state to visualize on the graph.
type Overlay struct {
	VisitedSteps []string
	CurrentStep  string
}

// GenerateMermaid produces Mermaid flowchart syntax from the step registry.
// It applies semantic styling:
//   - Entry points: ((Circle))
//   - Link-only (noPost) steps: [[Subroutine]]
//   - Form steps (with fields): [/Parallelogram/]
//   - Default: [Rectangle]
//
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(steps domain.Steps, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	paths := make([]string, 0, len(steps))
	for path := range steps {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		step := steps[path]
		safeID := sanitizeMermaidID(path)

		opener, closer := "[", "]"
		switch {
		case step.EntryPoint:
			opener, closer = "((", "))"
		case step.NoPost:
			opener, closer = "[[", "]]"
		case len(step.Fields) > 0:
			opener, closer = "[/", "/]"
		}

		label := path
		if step.Title != "" {
			label = fmt.Sprintf("%s <br/> %s", path, step.Title)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		writeEdges(&sb, safeID, step.Next, "")
	}

	if overlay != nil {
		sb.WriteString("\n")
		sb.WriteString("    classDef visited fill:#d4edda,stroke:#28a745;\n")
		sb.WriteString("    classDef current fill:#fff3cd,stroke:#ffc107,stroke-width:3px;\n")
		for _, visited := range overlay.VisitedSteps {
			sb.WriteString(fmt.Sprintf("    class %s visited;\n", sanitizeMermaidID(visited)))
		}
		if overlay.CurrentStep != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentStep)))
		}
	}

	return sb.String()
}

// writeEdges walks the next tree. Conditional edges get a label; external
// URLs get a dotted arrow.
func writeEdges(sb *strings.Builder, fromID string, next domain.Next, label string) {
	if next.Target != "" {
		arrow := "-->"
		if domain.IsExternal(next.Target) {
			arrow = "-.->"
		}
		if label != "" {
			safeLabel := strings.ReplaceAll(label, "\"", "'")
			arrow = fmt.Sprintf("-- \"%s\" %s", safeLabel, arrow)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", fromID, arrow, sanitizeMermaidID(next.Target)))
		return
	}
	if next.TargetFn != nil {
		// Lazy target unknown without a context; rendered as an opaque sink.
		sb.WriteString(fmt.Sprintf("    %s -. \"fn\" .-> %s_dynamic\n", fromID, fromID))
		return
	}
	for _, branch := range next.Branches {
		writeEdges(sb, fromID, branch.Next, branchLabel(branch, label))
	}
}

func branchLabel(branch domain.Branch, parent string) string {
	var label string
	switch branch.Kind {
	case domain.BranchField:
		label = fmt.Sprintf("%s %s %v", branch.Field, branch.OpName, branch.Value)
	case domain.BranchFunc:
		label = "fn"
	case domain.BranchFallback:
		label = ""
	}
	if parent != "" && label != "" {
		return parent + " & " + label
	}
	if label == "" {
		return parent
	}
	return label
}

// sanitizeMermaidID makes a step path safe to use as a Mermaid node ID.
func sanitizeMermaidID(id string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"-", "_",
		".", "_",
		" ", "_",
		":", "_",
	)
	out := replacer.Replace(id)
	return strings.TrimPrefix(out, "_")
}
