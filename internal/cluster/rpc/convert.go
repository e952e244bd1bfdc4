package rpc

import "chronodl/internal/term"

// ToAtom converts an AtomArg back to a term.Atom.
func (a AtomArg) ToAtom() term.Atom {
	return term.NewAtom(a.Predicate, a.Args...)
}

// AtomToArg converts a term.Atom to its wire form.
func AtomToArg(a term.Atom) AtomArg {
	return AtomArg{Predicate: a.Predicate, Args: append([]string(nil), a.Args...)}
}

// ToIntervalSet converts wire intervals back to a term.IntervalSet.
func ToIntervalSet(ivs []Interval) term.IntervalSet {
	out := make(term.IntervalSet, len(ivs))
	for i, iv := range ivs {
		out[i] = term.Interval{Lo: iv.Lo, Hi: iv.Hi}
	}
	return term.NewIntervalSet(out...)
}

// IntervalSetToArgs converts a term.IntervalSet to its wire form.
func IntervalSetToArgs(s term.IntervalSet) []Interval {
	out := make([]Interval, len(s))
	for i, iv := range s {
		out[i] = Interval{Lo: iv.Lo, Hi: iv.Hi}
	}
	return out
}

// ToRule converts a RuleArg back to a term.Rule.
func (r RuleArg) ToRule() term.Rule {
	body := make([]term.Literal, len(r.Body))
	for i, lit := range r.Body {
		body[i] = term.Literal{Atom: lit.Atom.ToAtom(), Negated: lit.Negated}
	}
	return term.Rule{
		Head:     r.Head.ToAtom(),
		Body:     body,
		Delay:    r.Delay,
		Validity: ToIntervalSet(r.Validity),
	}
}

// RuleToArg converts a term.Rule to its wire form.
func RuleToArg(r term.Rule) RuleArg {
	body := make([]LiteralArg, len(r.Body))
	for i, lit := range r.Body {
		body[i] = LiteralArg{Atom: AtomToArg(lit.Atom), Negated: lit.Negated}
	}
	return RuleArg{
		Head:     AtomToArg(r.Head),
		Body:     body,
		Delay:    r.Delay,
		Validity: IntervalSetToArgs(r.Validity),
	}
}

// ToFact converts a FactArg back to a term.Atom and its interval set.
func (f FactArg) ToFact() (term.Atom, term.IntervalSet) {
	return f.Atom.ToAtom(), ToIntervalSet(f.Intervals)
}

// FactToArg converts an atom, interval set and id to wire form. The master
// passes an empty id for base facts; the worker passes its composite id
// for the facts it returns from Reason.
func FactToArg(a term.Atom, intervals term.IntervalSet, id string) FactArg {
	return FactArg{Atom: AtomToArg(a), Intervals: IntervalSetToArgs(intervals), ID: id}
}
