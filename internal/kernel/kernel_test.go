package kernel

import (
	"context"
	"testing"

	"chronodl/internal/encode"
	"chronodl/internal/match"
	"chronodl/internal/store"
	"chronodl/internal/term"

	"github.com/stretchr/testify/require"
)

func newTestKernel() *Kernel {
	enc := encode.New()
	st := store.New(enc)
	m := match.New(st, enc, match.ModeCPUOnly, match.Thresholds{}, nil, nil)
	return New(enc, st, m, nil)
}

func containsAtom(atoms []term.Atom, predicate string, args ...string) bool {
	want := term.NewAtom(predicate, args...)
	for _, a := range atoms {
		if a.Equal(want) {
			return true
		}
	}
	return false
}

// Scenario 1: popularity spread.
func TestScenarioPopularitySpread(t *testing.T) {
	k := newTestKernel()
	require.NoError(t, k.AddFact(term.NewAtom("popular", "alice"), term.IntervalSet{{Lo: 0, Hi: 10}}))
	require.NoError(t, k.AddFact(term.NewAtom("Friends", "alice", "bob"), term.IntervalSet{{Lo: 0, Hi: 100}}))
	require.NoError(t, k.AddFact(term.NewAtom("Friends", "bob", "carol"), term.IntervalSet{{Lo: 0, Hi: 100}}))

	require.NoError(t, k.AddRule(term.Rule{
		Head:  term.NewAtom("popular", "X"),
		Delay: 1,
		Body: []term.Literal{
			{Atom: term.NewAtom("popular", "Y")},
			{Atom: term.NewAtom("Friends", "Y", "X")},
		},
	}))

	require.NoError(t, k.Reason(context.Background(), 5))

	require.True(t, containsAtom(k.FactsAt(0), "popular", "alice"))
	require.True(t, containsAtom(k.FactsAt(1), "popular", "bob"))
	require.True(t, containsAtom(k.FactsAt(2), "popular", "carol"))

	// No other popular/1 atoms besides alice/bob/carol through T=5 — the
	// extensional universe only ever exercises these three constants.
	allowed := map[string]bool{"alice": true, "bob": true, "carol": true}
	for t_ := 0; t_ <= 5; t_++ {
		for _, a := range k.FactsAt(t_) {
			if a.Predicate != "popular" {
				continue
			}
			require.True(t, allowed[a.Args[0]], "unexpected popular(%s) at t=%d", a.Args[0], t_)
		}
	}
}

// Scenario 2: supply-chain cascade.
func TestScenarioSupplyChainCascade(t *testing.T) {
	k := newTestKernel()
	require.NoError(t, k.AddFact(term.NewAtom("disrupted", "s1"), term.IntervalSet{{Lo: 1, Hi: 10}}))
	require.NoError(t, k.AddFact(term.NewAtom("Supplier", "s1", "c1"), term.IntervalSet{{Lo: 0, Hi: 100}}))
	require.NoError(t, k.AddFact(term.NewAtom("Supplier", "c1", "c2"), term.IntervalSet{{Lo: 0, Hi: 100}}))

	require.NoError(t, k.AddRule(term.Rule{
		Head:  term.NewAtom("at_risk", "X"),
		Delay: 1,
		Body: []term.Literal{
			{Atom: term.NewAtom("disrupted", "Y")},
			{Atom: term.NewAtom("Supplier", "Y", "X")},
		},
	}))
	require.NoError(t, k.AddRule(term.Rule{
		Head:  term.NewAtom("at_risk", "X"),
		Delay: 1,
		Body: []term.Literal{
			{Atom: term.NewAtom("at_risk", "Y")},
			{Atom: term.NewAtom("Supplier", "Y", "X")},
		},
	}))

	require.NoError(t, k.Reason(context.Background(), 5))

	require.True(t, containsAtom(k.FactsAt(2), "at_risk", "c1"))
	require.True(t, containsAtom(k.FactsAt(3), "at_risk", "c2"))
}

// Scenario 3: negation-as-failure.
func TestScenarioNegationAsFailure(t *testing.T) {
	k := newTestKernel()
	require.NoError(t, k.AddFact(term.NewAtom("user", "u1"), term.Point(0)))
	require.NoError(t, k.AddFact(term.NewAtom("user", "u2"), term.Point(0)))
	require.NoError(t, k.AddFact(term.NewAtom("blocked", "u2"), term.Point(0)))

	require.NoError(t, k.AddRule(term.Rule{
		Head: term.NewAtom("eligible", "X"),
		Body: []term.Literal{
			{Atom: term.NewAtom("user", "X")},
			{Atom: term.NewAtom("blocked", "X"), Negated: true},
		},
	}))

	require.NoError(t, k.Reason(context.Background(), 0))

	facts := k.FactsAt(0)
	require.True(t, containsAtom(facts, "eligible", "u1"))
	require.False(t, containsAtom(facts, "eligible", "u2"))
}

// Scenario 4: two-literal join with shared variable.
func TestScenarioTwoLiteralJoin(t *testing.T) {
	k := newTestKernel()
	require.NoError(t, k.AddFact(term.NewAtom("owns", "alice", "tesla"), term.Point(0)))
	require.NoError(t, k.AddFact(term.NewAtom("owns", "alice", "dog"), term.Point(0)))
	require.NoError(t, k.AddFact(term.NewAtom("car", "tesla"), term.Point(0)))
	require.NoError(t, k.AddFact(term.NewAtom("pet", "dog"), term.Point(0)))

	require.NoError(t, k.AddRule(term.Rule{
		Head: term.NewAtom("trendy", "X"),
		Body: []term.Literal{
			{Atom: term.NewAtom("owns", "X", "C")},
			{Atom: term.NewAtom("car", "C")},
			{Atom: term.NewAtom("owns", "X", "P")},
			{Atom: term.NewAtom("pet", "P")},
		},
	}))

	require.NoError(t, k.Reason(context.Background(), 0))
	require.True(t, containsAtom(k.FactsAt(0), "trendy", "alice"))
}

// Scenario 6: head-interval clipping.
func TestScenarioHeadIntervalClipping(t *testing.T) {
	k := newTestKernel()
	require.NoError(t, k.AddFact(term.NewAtom("a", "x"), term.IntervalSet{{Lo: 0, Hi: 10}}))
	require.NoError(t, k.AddRule(term.Rule{
		Head:     term.NewAtom("b", "X"),
		Body:     []term.Literal{{Atom: term.NewAtom("a", "X")}},
		Validity: term.IntervalSet{{Lo: 2, Hi: 4}},
	}))

	require.NoError(t, k.Reason(context.Background(), 6))

	for t_ := 0; t_ <= 6; t_++ {
		got := containsAtom(k.FactsAt(t_), "b", "x")
		want := t_ >= 2 && t_ <= 4
		require.Equal(t, want, got, "b(x) at t=%d", t_)
	}
}

func TestReasonAtTZero(t *testing.T) {
	k := newTestKernel()
	require.NoError(t, k.AddFact(term.NewAtom("p", "a"), term.Point(0)))
	require.NoError(t, k.Reason(context.Background(), 0))
	require.True(t, containsAtom(k.FactsAt(0), "p", "a"))
}

func TestRuleDelayGreaterThanTNeverFires(t *testing.T) {
	k := newTestKernel()
	require.NoError(t, k.AddFact(term.NewAtom("a", "x"), term.IntervalSet{{Lo: 0, Hi: 10}}))
	require.NoError(t, k.AddRule(term.Rule{
		Head:  term.NewAtom("b", "X"),
		Body:  []term.Literal{{Atom: term.NewAtom("a", "X")}},
		Delay: 5,
	}))

	require.NoError(t, k.Reason(context.Background(), 3))
	for t_ := 0; t_ <= 3; t_++ {
		require.False(t, containsAtom(k.FactsAt(t_), "b", "x"))
	}
}

func TestAddRuleEmptyPositiveBodyErrors(t *testing.T) {
	k := newTestKernel()
	err := k.AddRule(term.Rule{
		Head: term.NewAtom("p", "X"),
		Body: nil,
	})
	require.Error(t, err)
}

func TestAddRuleNegationOnlyBodyErrors(t *testing.T) {
	k := newTestKernel()
	err := k.AddRule(term.Rule{
		Head: term.NewAtom("p", "X"),
		Body: []term.Literal{{Atom: term.NewAtom("q", "X"), Negated: true}},
	})
	require.Error(t, err)
}

func TestAddRuleRangeRestrictionViolation(t *testing.T) {
	k := newTestKernel()
	err := k.AddRule(term.Rule{
		Head: term.NewAtom("p", "X", "Y"),
		Body: []term.Literal{{Atom: term.NewAtom("q", "X")}},
	})
	require.Error(t, err, "Y is unbound in the head")
}

func TestMonotoneDerivationDuringReason(t *testing.T) {
	k := newTestKernel()
	require.NoError(t, k.AddFact(term.NewAtom("popular", "alice"), term.IntervalSet{{Lo: 0, Hi: 10}}))
	require.NoError(t, k.AddFact(term.NewAtom("Friends", "alice", "bob"), term.IntervalSet{{Lo: 0, Hi: 100}}))
	require.NoError(t, k.AddRule(term.Rule{
		Head:  term.NewAtom("popular", "X"),
		Delay: 1,
		Body: []term.Literal{
			{Atom: term.NewAtom("popular", "Y")},
			{Atom: term.NewAtom("Friends", "Y", "X")},
		},
	}))

	before := len(k.FactsAt(1))
	require.NoError(t, k.Reason(context.Background(), 3))
	after := len(k.FactsAt(1))
	require.GreaterOrEqual(t, after, before, "facts_at(t) must only grow during a Reason call")
}
