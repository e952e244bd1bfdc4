package match

import (
	"context"

	"chronodl/internal/chronoerr"
	"chronodl/internal/term"
	"chronodl/internal/unify"
)

// matchBody evaluates a rule body against timestep t using lm for every
// single-literal step, per spec.md §4.4:
//
//  1. An empty body has exactly one substitution: the empty one.
//  2. The first positive literal is enumerated against the fact store;
//     its unifying substitutions seed the working set.
//  3. Every remaining positive literal, in original order, joins the
//     working set. Negative literals are deferred and evaluated only
//     once every positive literal has run, so each is always grounded
//     under a sigma that already binds every variable it mentions (a
//     range-restricted rule guarantees such a sigma exists).
//  4. The scan stops as soon as the working set is empty.
func matchBody(ctx context.Context, lm literalMatcher, body []term.Literal, t int) ([]unify.Substitution, error) {
	if len(body) == 0 {
		return []unify.Substitution{{}}, nil
	}

	firstIdx := -1
	for i, lit := range body {
		if !lit.Negated {
			firstIdx = i
			break
		}
	}
	if firstIdx == -1 {
		return nil, chronoerr.New(chronoerr.InvalidInput, "match_body", "no positive literal in body")
	}

	subs, err := lm.matchLiteral(ctx, body[firstIdx].Atom, t)
	if err != nil {
		return nil, err
	}
	subs = dedupe(subs)

	var negatives []term.Literal
	for i, lit := range body {
		if i == firstIdx {
			continue
		}
		if lit.Negated {
			negatives = append(negatives, lit)
			continue
		}
		if len(subs) == 0 {
			break
		}

		var next []unify.Substitution
		for _, sigma := range subs {
			grounded := unify.Apply(sigma, lit.Atom)
			deltas, err := lm.matchLiteral(ctx, grounded, t)
			if err != nil {
				return nil, err
			}
			for _, delta := range deltas {
				if merged, ok := unify.Merge(sigma, delta); ok {
					next = append(next, merged)
				}
			}
		}
		subs = dedupe(next)
	}

	for _, lit := range negatives {
		if len(subs) == 0 {
			break
		}

		var next []unify.Substitution
		for _, sigma := range subs {
			grounded := unify.Apply(sigma, lit.Atom)
			deltas, err := lm.matchLiteral(ctx, grounded, t)
			if err != nil {
				return nil, err
			}
			if len(deltas) == 0 {
				next = append(next, sigma)
			}
		}
		subs = dedupe(next)
	}

	return subs, nil
}
