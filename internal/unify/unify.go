// Package unify implements single-tuple pattern-vs-fact unification: a
// pattern atom (which may contain variables) matched against a ground
// candidate fact atom, producing a variable-to-constant substitution or a
// failure.
package unify

import "chronodl/internal/term"

// Substitution maps variable symbols to constant symbols. Two substitutions
// merge iff they agree on every variable they share (spec.md §3).
type Substitution map[string]string

// Clone returns a shallow copy, so callers can extend a substitution
// without mutating a shared base.
func (s Substitution) Clone() Substitution {
	out := make(Substitution, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge attempts a consistent extension of s with other, returning the
// combined substitution and whether the merge succeeded. Neither input is
// mutated.
func Merge(s, other Substitution) (Substitution, bool) {
	out := s.Clone()
	for k, v := range other {
		if existing, ok := out[k]; ok {
			if existing != v {
				return nil, false
			}
			continue
		}
		out[k] = v
	}
	return out, true
}

// Apply substitutes every variable argument of pattern with its binding in
// s, leaving unbound variables and constants untouched.
func Apply(s Substitution, pattern term.Atom) term.Atom {
	args := make([]string, len(pattern.Args))
	for i, arg := range pattern.Args {
		if term.IsVariable(arg) {
			if bound, ok := s[arg]; ok {
				args[i] = bound
				continue
			}
		}
		args[i] = arg
	}
	return term.NewAtom(pattern.Predicate, args...)
}

// Unify compares pattern against a ground fact atom. Predicate or arity
// mismatch fails. For each position: a constant pattern slot must equal the
// fact slot; a variable slot binds on first sight and must equal any
// existing binding thereafter.
func Unify(pattern, fact term.Atom) (Substitution, bool) {
	if pattern.Predicate != fact.Predicate || len(pattern.Args) != len(fact.Args) {
		return nil, false
	}

	sub := make(Substitution)
	for i, patArg := range pattern.Args {
		factArg := fact.Args[i]
		if term.IsVariable(patArg) {
			if bound, ok := sub[patArg]; ok {
				if bound != factArg {
					return nil, false
				}
				continue
			}
			sub[patArg] = factArg
			continue
		}
		if patArg != factArg {
			return nil, false
		}
	}
	return sub, true
}

// UnifyUnder applies sigma to pattern first, grounding every variable sigma
// already binds, then unifies the result against fact. The returned
// substitution extends sigma.
func UnifyUnder(sigma Substitution, pattern, fact term.Atom) (Substitution, bool) {
	grounded := Apply(sigma, pattern)
	delta, ok := Unify(grounded, fact)
	if !ok {
		return nil, false
	}
	return Merge(sigma, delta)
}
