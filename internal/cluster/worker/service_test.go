package worker

import (
	clusterrpc "chronodl/internal/cluster/rpc"
	"chronodl/internal/term"
	"chronodl/pkg/reasoner"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService("w1", reasoner.DefaultConfig(), nil)
}

func TestServiceReasonExcludesBaseFacts(t *testing.T) {
	s := newTestService()

	var addReply clusterrpc.AddFactReply
	require.NoError(t, s.AddFact(&clusterrpc.AddFactArgs{
		Fact: clusterrpc.FactToArg(term.NewAtom("p", "a"), term.Point(0), ""),
	}, &addReply))

	var ruleReply clusterrpc.AddRuleReply
	rule := term.Rule{
		Head: term.NewAtom("q", "X"),
		Body: []term.Literal{{Atom: term.NewAtom("p", "X")}},
	}
	require.NoError(t, s.AddRule(&clusterrpc.AddRuleArgs{Rule: clusterrpc.RuleToArg(rule)}, &ruleReply))

	var reasonReply clusterrpc.ReasonReply
	require.NoError(t, s.Reason(&clusterrpc.ReasonArgs{Start: 0, End: 0}, &reasonReply))

	foundQ, foundP := false, false
	for _, f := range reasonReply.Facts {
		if f.Atom.Predicate == "q" && f.Atom.Args[0] == "a" {
			foundQ = true
			require.NotEmpty(t, f.ID)
		}
		if f.Atom.Predicate == "p" {
			foundP = true
		}
	}
	require.True(t, foundQ, "derived fact q(a) must be returned")
	require.False(t, foundP, "base fact p(a) must be excluded from the work result")
}

func TestServiceResetReinitializesRules(t *testing.T) {
	s := newTestService()

	rule := term.Rule{
		Head: term.NewAtom("q", "X"),
		Body: []term.Literal{{Atom: term.NewAtom("p", "X")}},
	}
	var ruleReply clusterrpc.AddRuleReply
	require.NoError(t, s.AddRule(&clusterrpc.AddRuleArgs{Rule: clusterrpc.RuleToArg(rule)}, &ruleReply))

	var resetReply clusterrpc.ResetReply
	require.NoError(t, s.Reset(&clusterrpc.ResetArgs{}, &resetReply))

	var statsReply clusterrpc.WorkerStats
	require.NoError(t, s.GetStats(&clusterrpc.StatsArgs{}, &statsReply))
	require.Zero(t, statsReply.RuleCount, "reset must clear previously registered rules")
	require.Zero(t, statsReply.FactCount)
}

func TestServiceIsHealthy(t *testing.T) {
	s := newTestService()
	var reply clusterrpc.HealthReply
	require.NoError(t, s.IsHealthy(&clusterrpc.HealthArgs{}, &reply))
	require.True(t, reply.Healthy)
}

func TestServiceAddDerivedFactsInjectsWithoutMarkingBase(t *testing.T) {
	s := newTestService()
	var reply clusterrpc.AddDerivedFactsReply
	require.NoError(t, s.AddDerivedFacts(&clusterrpc.AddDerivedFactsArgs{
		Facts: []clusterrpc.FactArg{clusterrpc.FactToArg(term.NewAtom("r", "z"), term.Point(0), "peer:r(z):0")},
	}, &reply))

	require.True(t, s.r.FactsAt(0) != nil)
	found := false
	for _, a := range s.r.FactsAt(0) {
		if a.Equal(term.NewAtom("r", "z")) {
			found = true
		}
	}
	require.True(t, found)
	require.False(t, s.baseFacts[factKey(term.NewAtom("r", "z"))], "injected facts must not be marked as base facts")
}
