// Package match implements the pattern matcher: multi-literal rule-body
// evaluation by iterated substitution with negation-as-failure, over a
// single-literal match primitive that can run on the CPU (direct fact-store
// scan) or be dispatched to a data-parallel device (spec.md §4.4, §4.5).
package match

import (
	"context"

	"chronodl/internal/term"
	"chronodl/internal/unify"
)

// literalMatcher enumerates the substitutions produced by unifying a single
// (possibly already partially grounded) pattern against every live
// candidate fact at timestep t. This is the one primitive that differs
// between the CPU and GPU paths; the multi-literal join algorithm in
// body.go is identical for both.
type literalMatcher interface {
	matchLiteral(ctx context.Context, pattern term.Atom, t int) ([]unify.Substitution, error)
}

func dedupe(subs []unify.Substitution) []unify.Substitution {
	if len(subs) == 0 {
		return subs
	}
	seen := make(map[string]bool, len(subs))
	out := make([]unify.Substitution, 0, len(subs))
	for _, s := range subs {
		key := substitutionKey(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

// substitutionKey produces a canonical string for content-based dedup.
// Substitution keys (variable names) are sorted so equal substitutions
// collapse regardless of map iteration/insertion order.
func substitutionKey(s unify.Substitution) string {
	if len(s) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	// Simple insertion sort; substitutions are small (bounded by rule
	// arity), so this avoids pulling in sort for a handful of elements.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	out := make([]byte, 0, 32)
	for _, k := range keys {
		out = append(out, k...)
		out = append(out, '=')
		out = append(out, s[k]...)
		out = append(out, ';')
	}
	return string(out)
}
