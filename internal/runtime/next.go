package runtime

import "github.com/aretw0/arbor/pkg/domain"

// ResolveNext evaluates a step's next tree against the context and returns
// the resolved target: a step path or an external URL. An empty string means
// the step is terminal.
func (e *Engine) ResolveNext(path string, ctx *domain.Context) (string, error) {
	step, err := e.Step(path)
	if err != nil {
		return "", err
	}
	return resolveNext(step.Next, ctx), nil
}

// resolveNext walks the tree by recursive descent, first-match-wins. The
// matching branch's next is resolved lazily: target functions on
// non-matching branches are never invoked.
func resolveNext(next domain.Next, ctx *domain.Context) string {
	if next.Target != "" {
		return next.Target
	}
	if next.TargetFn != nil {
		return next.TargetFn(ctx)
	}
	for i := range next.Branches {
		branch := &next.Branches[i]
		if matches(branch, ctx) {
			return resolveNext(branch.Next, ctx)
		}
	}
	return ""
}

func matches(branch *domain.Branch, ctx *domain.Context) bool {
	switch branch.Kind {
	case domain.BranchFallback:
		return true
	case domain.BranchFunc:
		return branch.Fn(ctx)
	case domain.BranchField:
		return branch.Op(ctx.Value(branch.Field), ctx, branch)
	default:
		return false
	}
}
