// Package rpc defines the wire types shared by the distributed master and
// worker (spec.md §6, "Worker RPC surface"). Transport is net/rpc over a
// plain TCP listener: spec.md §1 explicitly treats inter-node transport as
// an opaque "RPC channel exposing the worker service," so the wire codec
// here is deliberately the standard library's, not a bespoke protocol (see
// DESIGN.md for why a third-party RPC stack was not wired in instead).
package rpc

// Interval mirrors term.Interval on the wire; duplicated here (rather than
// reusing the term package type directly) so gob registration stays
// independent of internal package churn.
type Interval struct {
	Lo, Hi int
}

// AtomArg mirrors term.Atom on the wire.
type AtomArg struct {
	Predicate string
	Args      []string
}

// FactArg is a timed fact on the wire: an atom plus the interval set on
// which it holds, and (for derived facts returned by a worker) the
// composite identifier "worker_id:atom:t".
type FactArg struct {
	Atom      AtomArg
	Intervals []Interval
	ID        string
}

// LiteralArg mirrors term.Literal on the wire.
type LiteralArg struct {
	Atom    AtomArg
	Negated bool
}

// RuleArg mirrors term.Rule on the wire.
type RuleArg struct {
	Head     AtomArg
	Body     []LiteralArg
	Delay    int
	Validity []Interval
}

// AddFactArgs / AddFactReply implement the add_fact(timed_fact) operation.
type AddFactArgs struct {
	SessionID string
	Fact      FactArg
}
type AddFactReply struct{}

// AddFactsArgs / AddFactsReply is a batched wire form of repeated add_fact
// calls — purely a transport-efficiency detail; it does not add a new
// logical worker operation.
type AddFactsArgs struct {
	SessionID string
	Facts     []FactArg
}
type AddFactsReply struct{}

// AddRuleArgs / AddRuleReply implement the add_rule(rule) operation.
type AddRuleArgs struct {
	SessionID string
	Rule      RuleArg
}
type AddRuleReply struct{}

// AddRulesArgs / AddRulesReply is the batched form of add_rule.
type AddRulesArgs struct {
	SessionID string
	Rules     []RuleArg
}
type AddRulesReply struct{}

// ReasonArgs / ReasonReply implement reason(start, end) -> WorkResult.
type ReasonArgs struct {
	SessionID string
	Start     int
	End       int
}
type ReasonReply struct {
	Facts []FactArg
	Stats WorkerStats
}

// AddDerivedFactsArgs / AddDerivedFactsReply implement
// add_derived_facts(list), used by future inter-worker exchange rounds.
type AddDerivedFactsArgs struct {
	SessionID string
	Facts     []FactArg
}
type AddDerivedFactsReply struct{}

// ResetArgs / ResetReply implement reset().
type ResetArgs struct{}
type ResetReply struct{}

// HealthArgs / HealthReply implement is_healthy() -> bool.
type HealthArgs struct{}
type HealthReply struct {
	Healthy bool
}

// StatsArgs / WorkerStats implement get_stats() -> WorkerStats.
type StatsArgs struct{}
type WorkerStats struct {
	WorkerID     string
	FactCount    int
	RuleCount    int
	DerivedCount int
}
