// Package ruletext implements the rule-text grammar reproduced in
// spec.md §6: `head[ : intervals] <-delay body`. It is a small,
// independently-testable convenience for tests and examples — not on the
// kernel or matcher's hot path (the external parser pipeline itself is out
// of scope; only the grammar's fixed semantics are reproduced here).
package ruletext

import (
	"fmt"
	"strconv"
	"strings"

	"chronodl/internal/chronoerr"
	"chronodl/internal/term"
)

// ParseAtom parses "predicate(arg1, arg2, ...)" into a term.Atom.
func ParseAtom(s string) (term.Atom, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return term.Atom{}, chronoerr.New(chronoerr.InvalidInput, "parse_atom", fmt.Sprintf("malformed atom: %q", s))
	}
	predicate := strings.TrimSpace(s[:open])
	if predicate == "" {
		return term.Atom{}, chronoerr.New(chronoerr.InvalidInput, "parse_atom", fmt.Sprintf("atom has empty predicate: %q", s))
	}
	inner := s[open+1 : len(s)-1]
	var args []string
	if strings.TrimSpace(inner) != "" {
		for _, a := range splitTopLevel(inner, ',') {
			args = append(args, strings.TrimSpace(a))
		}
	}
	return term.NewAtom(predicate, args...), nil
}

// ParseIntervals parses "[lo,hi](,[lo,hi])*" into a term.IntervalSet.
func ParseIntervals(s string) (term.IntervalSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, chronoerr.New(chronoerr.InvalidInput, "parse_intervals", "empty interval list")
	}
	var out []term.Interval
	for _, part := range splitTopLevel(s, ',') {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, "[") || !strings.HasSuffix(part, "]") {
			return nil, chronoerr.New(chronoerr.InvalidInput, "parse_intervals", fmt.Sprintf("malformed interval: %q", part))
		}
		bounds := strings.Split(part[1:len(part)-1], ",")
		if len(bounds) != 2 {
			return nil, chronoerr.New(chronoerr.InvalidInput, "parse_intervals", fmt.Sprintf("interval must have exactly two bounds: %q", part))
		}
		lo, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
		if err != nil {
			return nil, chronoerr.Wrap(chronoerr.InvalidInput, "parse_intervals", "invalid lower bound", err)
		}
		hi, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
		if err != nil {
			return nil, chronoerr.Wrap(chronoerr.InvalidInput, "parse_intervals", "invalid upper bound", err)
		}
		out = append(out, term.Interval{Lo: lo, Hi: hi})
	}
	return term.NewIntervalSet(out...), nil
}

// ParseLiteral parses "atom" or "not atom" into a term.Literal.
func ParseLiteral(s string) (term.Literal, error) {
	s = strings.TrimSpace(s)
	negated := false
	if strings.HasPrefix(s, "not ") {
		negated = true
		s = strings.TrimSpace(s[len("not "):])
	}
	atom, err := ParseAtom(s)
	if err != nil {
		return term.Literal{}, err
	}
	return term.Literal{Atom: atom, Negated: negated}, nil
}

// ParseRule parses the full grammar: head[ : intervals] <-delay body.
// delay is a non-negative integer immediately following "<-"; its absence
// means delay 0. body is a comma-separated list of literals.
func ParseRule(s string) (term.Rule, error) {
	arrow := strings.Index(s, "<-")
	if arrow < 0 {
		return term.Rule{}, chronoerr.New(chronoerr.InvalidInput, "parse_rule", fmt.Sprintf("missing '<-': %q", s))
	}
	left := strings.TrimSpace(s[:arrow])
	right := strings.TrimSpace(s[arrow+2:])

	head, validity, err := parseHead(left)
	if err != nil {
		return term.Rule{}, err
	}

	delay, body, err := parseDelayAndBody(right)
	if err != nil {
		return term.Rule{}, err
	}

	var literals []term.Literal
	if strings.TrimSpace(body) != "" {
		for _, part := range splitTopLevel(body, ',') {
			lit, err := ParseLiteral(part)
			if err != nil {
				return term.Rule{}, err
			}
			literals = append(literals, lit)
		}
	}

	return term.Rule{Head: head, Body: literals, Delay: delay, Validity: validity}, nil
}

func parseHead(left string) (term.Atom, term.IntervalSet, error) {
	colon := topLevelIndex(left, ':')
	if colon < 0 {
		head, err := ParseAtom(left)
		return head, nil, err
	}
	head, err := ParseAtom(strings.TrimSpace(left[:colon]))
	if err != nil {
		return term.Atom{}, nil, err
	}
	validity, err := ParseIntervals(strings.TrimSpace(left[colon+1:]))
	if err != nil {
		return term.Atom{}, nil, err
	}
	return head, validity, nil
}

func parseDelayAndBody(right string) (int, string, error) {
	i := 0
	for i < len(right) && right[i] >= '0' && right[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, right, nil
	}
	delay, err := strconv.Atoi(right[:i])
	if err != nil {
		return 0, "", chronoerr.Wrap(chronoerr.InvalidInput, "parse_rule", "invalid delay", err)
	}
	return delay, strings.TrimSpace(right[i:]), nil
}

// splitTopLevel splits s on sep, ignoring occurrences nested inside ()
// or [] brackets.
func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case sep:
			if depth == 0 {
				out = append(out, s[last:i])
				last = i + 1
			}
		}
	}
	out = append(out, s[last:])
	return out
}

// topLevelIndex returns the index of the first occurrence of b outside any
// () or [] nesting, or -1 if none.
func topLevelIndex(s string, b byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case b:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
