// Package term defines the atom/variable data model shared by every other
// package in chronodl: a predicate symbol with an ordered argument list, and
// the leading-uppercase convention that distinguishes a variable from a
// constant.
package term

import "strings"

// Atom is a predicate symbol applied to an ordered list of argument
// symbols. Equality is structural: predicate and argument list, order and
// multiplicity preserved.
type Atom struct {
	Predicate string
	Args      []string
}

// NewAtom builds an Atom, copying args so the caller's slice can be reused.
func NewAtom(predicate string, args ...string) Atom {
	cp := make([]string, len(args))
	copy(cp, args)
	return Atom{Predicate: predicate, Args: cp}
}

// Arity returns the number of arguments.
func (a Atom) Arity() int { return len(a.Args) }

// Equal reports structural equality.
func (a Atom) Equal(b Atom) bool {
	if a.Predicate != b.Predicate || len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if a.Args[i] != b.Args[i] {
			return false
		}
	}
	return true
}

// Variables returns the distinct variable argument names appearing in a, in
// first-occurrence order.
func (a Atom) Variables() []string {
	seen := make(map[string]bool, len(a.Args))
	var out []string
	for _, arg := range a.Args {
		if IsVariable(arg) && !seen[arg] {
			seen[arg] = true
			out = append(out, arg)
		}
	}
	return out
}

// String renders the atom as pred(arg1, arg2).
func (a Atom) String() string {
	var b strings.Builder
	b.WriteString(a.Predicate)
	b.WriteByte('(')
	for i, arg := range a.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg)
	}
	b.WriteByte(')')
	return b.String()
}

// IsVariable reports whether an argument symbol is a variable: non-empty and
// beginning with an uppercase letter. Every other non-empty symbol is a
// constant.
func IsVariable(symbol string) bool {
	if symbol == "" {
		return false
	}
	c := symbol[0]
	return c >= 'A' && c <= 'Z'
}

// Literal is an atom together with its polarity in a rule body.
type Literal struct {
	Atom     Atom
	Negated  bool
}

// String renders the literal, prefixing "not " for negated literals.
func (l Literal) String() string {
	if l.Negated {
		return "not " + l.Atom.String()
	}
	return l.Atom.String()
}
