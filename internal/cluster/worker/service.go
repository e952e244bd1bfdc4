// Package worker implements the distributed worker: an RPC service that
// wraps a local pkg/reasoner.Reasoner and exposes the six operations of
// spec.md §4.8 (add_fact, add_rule, reason, add_derived_facts, reset,
// is_healthy/get_stats) over net/rpc.
package worker

import (
	"context"
	"fmt"
	"sync"

	clusterrpc "chronodl/internal/cluster/rpc"
	"chronodl/internal/term"
	"chronodl/pkg/reasoner"

	"go.uber.org/zap"
)

// Service is the net/rpc receiver registered under the name "Worker". Every
// exported method with the (args *A, reply *R) error shape becomes an RPC
// endpoint; net/rpc discovers them via reflection at Register time.
type Service struct {
	mu sync.Mutex

	id     string
	cfg    reasoner.Config
	r      *reasoner.Reasoner
	logger *zap.Logger

	// baseFacts tracks facts asserted via AddFact/AddFacts (as opposed to
	// derived during Reason), so Reason can exclude them from its
	// returned WorkResult per spec.md §4.8.
	baseFacts map[string]bool

	ruleCount    int
	derivedCount int
}

// NewService builds a Service identified by id, constructing a fresh
// reasoner per cfg.
func NewService(id string, cfg reasoner.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		id:        id,
		cfg:       cfg,
		r:         reasoner.New(cfg),
		logger:    logger,
		baseFacts: make(map[string]bool),
	}
}

func factKey(a term.Atom) string { return a.String() }

// AddFact implements add_fact(timed_fact).
func (s *Service) AddFact(args *clusterrpc.AddFactArgs, reply *clusterrpc.AddFactReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	atom, intervals := args.Fact.ToFact()
	if err := s.r.AddFact(atom, intervals); err != nil {
		return err
	}
	s.baseFacts[factKey(atom)] = true
	return nil
}

// AddFacts is the batched wire form of repeated AddFact calls.
func (s *Service) AddFacts(args *clusterrpc.AddFactsArgs, reply *clusterrpc.AddFactsReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range args.Facts {
		atom, intervals := f.ToFact()
		if err := s.r.AddFact(atom, intervals); err != nil {
			return err
		}
		s.baseFacts[factKey(atom)] = true
	}
	return nil
}

// AddRule implements add_rule(rule).
func (s *Service) AddRule(args *clusterrpc.AddRuleArgs, reply *clusterrpc.AddRuleReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.r.AddRule(args.Rule.ToRule()); err != nil {
		return err
	}
	s.ruleCount++
	return nil
}

// AddRules is the batched wire form of repeated AddRule calls.
func (s *Service) AddRules(args *clusterrpc.AddRulesArgs, reply *clusterrpc.AddRulesReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range args.Rules {
		if err := s.r.AddRule(r.ToRule()); err != nil {
			return err
		}
		s.ruleCount++
	}
	return nil
}

// Reason implements reason(start, end): runs the local fixpoint through
// end and returns every non-base fact holding at any t in [start, end],
// each wrapped with the worker's composite id (spec.md §4.8).
func (s *Service) Reason(args *clusterrpc.ReasonArgs, reply *clusterrpc.ReasonReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Debug("reason invoked",
		zap.String("session_id", args.SessionID), zap.Int("start", args.Start), zap.Int("end", args.End))

	if err := s.r.Reason(context.Background(), args.End); err != nil {
		return err
	}

	var facts []clusterrpc.FactArg
	for t := args.Start; t <= args.End; t++ {
		for _, a := range s.r.FactsAt(t) {
			if s.baseFacts[factKey(a)] {
				continue
			}
			id := fmt.Sprintf("%s:%s:%d", s.id, a.String(), t)
			facts = append(facts, clusterrpc.FactToArg(a, term.Point(t), id))
		}
	}
	s.derivedCount += len(facts)

	reply.Facts = facts
	reply.Stats = s.statsLocked()
	return nil
}

// AddDerivedFacts implements add_derived_facts(list): facts received from
// peer workers are injected without being marked as base facts, so a later
// Reason call reports them, like derived facts, at every timestep where
// they hold.
func (s *Service) AddDerivedFacts(args *clusterrpc.AddDerivedFactsArgs, reply *clusterrpc.AddDerivedFactsReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range args.Facts {
		atom, intervals := f.ToFact()
		if err := s.r.AddFact(atom, intervals); err != nil {
			return err
		}
	}
	return nil
}

// Reset implements reset(): per spec.md §9's resolution of the reset-leaves-
// stale-rules Open Question, reset fully reinitializes the local reasoner
// (fresh encoder, store, and rule set), not merely the fact store.
func (s *Service) Reset(args *clusterrpc.ResetArgs, reply *clusterrpc.ResetReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r = reasoner.New(s.cfg)
	s.baseFacts = make(map[string]bool)
	s.ruleCount = 0
	s.derivedCount = 0
	return nil
}

// IsHealthy implements is_healthy().
func (s *Service) IsHealthy(args *clusterrpc.HealthArgs, reply *clusterrpc.HealthReply) error {
	reply.Healthy = true
	return nil
}

// GetStats implements get_stats().
func (s *Service) GetStats(args *clusterrpc.StatsArgs, reply *clusterrpc.WorkerStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	*reply = s.statsLocked()
	return nil
}

func (s *Service) statsLocked() clusterrpc.WorkerStats {
	return clusterrpc.WorkerStats{
		WorkerID:     s.id,
		FactCount:    len(s.baseFacts),
		RuleCount:    s.ruleCount,
		DerivedCount: s.derivedCount,
	}
}
