// Package kernel implements the semi-naive, timed fixpoint reasoning
// computation: repeatedly matching rule bodies against a growing timed-fact
// store, unifying variables, and emitting new timed facts until quiescence
// for each timestep (spec.md §4.6).
package kernel

import (
	"context"

	"chronodl/internal/chronoerr"
	"chronodl/internal/encode"
	"chronodl/internal/match"
	"chronodl/internal/store"
	"chronodl/internal/term"
	"chronodl/internal/unify"

	"go.uber.org/zap"
)

// Kernel owns a fact store and a rule set for the duration of one reasoning
// session. A Kernel is not safe for concurrent Reason calls; reentry from
// another goroutine must be externally serialized (spec.md §5).
type Kernel struct {
	enc     *encode.Encoder
	store   *store.FactStore
	matcher *match.Matcher
	rules   []term.Rule
	logger  *zap.Logger
}

// New builds a Kernel over enc/st, evaluating rule bodies with matcher.
func New(enc *encode.Encoder, st *store.FactStore, matcher *match.Matcher, logger *zap.Logger) *Kernel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Kernel{enc: enc, store: st, matcher: matcher, logger: logger}
}

// AddFact asserts atom true on intervals. An atom with an empty predicate,
// or an empty interval set, is rejected as InvalidInput.
func (k *Kernel) AddFact(atom term.Atom, intervals term.IntervalSet) error {
	if atom.Predicate == "" {
		return chronoerr.New(chronoerr.InvalidInput, "add_fact", "atom has empty predicate")
	}
	if len(intervals) == 0 {
		return chronoerr.New(chronoerr.InvalidInput, "add_fact", "timed fact must have at least one interval")
	}
	k.store.Insert(store.TimedFact{Atom: atom, Intervals: intervals})
	k.logger.Debug("fact asserted", zap.String("atom", atom.String()))
	return nil
}

// AddRule registers rule after validating range-restriction and the
// presence of at least one positive body literal (spec.md §3, §4.4).
// Validation errors surface synchronously, at registration time, never
// during a later Reason call (spec.md §4.6, numeric/boundary semantics).
func (k *Kernel) AddRule(rule term.Rule) error {
	if !rule.HasPositiveLiteral() {
		return chronoerr.New(chronoerr.InvalidInput, "add_rule", "rule body has no positive literal")
	}
	if rule.Delay < 0 {
		return chronoerr.New(chronoerr.InvalidInput, "add_rule", "rule delay must be non-negative")
	}
	if !rule.RangeRestricted() {
		return chronoerr.New(chronoerr.InvalidInput, "add_rule", "rule is not range-restricted: every head/negative-literal variable must be bound by a positive body literal")
	}
	k.rules = append(k.rules, rule)
	k.logger.Debug("rule registered", zap.String("head", rule.Head.String()), zap.Int("delay", rule.Delay))
	return nil
}

// Reason computes the saturated interpretation for every timestep in
// [0, T], mutating the fact store in place.
func (k *Kernel) Reason(ctx context.Context, T int) error {
	for t := 0; t <= T; t++ {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			newFacts, err := k.evalTimestep(ctx, t, T)
			if err != nil {
				return err
			}
			if len(newFacts) == 0 {
				break
			}
			for _, tf := range newFacts {
				k.store.Insert(tf)
			}
			k.logger.Debug("fixpoint round applied", zap.Int("timestep", t), zap.Int("derived", len(newFacts)))
		}
	}
	return nil
}

// evalTimestep runs every rule once against timestep t and returns the
// newly-derivable facts that are not already true at t (contracts (a)/(b)
// of spec.md §4.6).
func (k *Kernel) evalTimestep(ctx context.Context, t, T int) ([]store.TimedFact, error) {
	var newFacts []store.TimedFact
	stats := match.Stats{Facts: k.store.Count(), Rules: len(k.rules), Timesteps: T + 1}

	for _, rule := range k.rules {
		tPrime := t - rule.Delay
		if tPrime < 0 {
			continue
		}
		if len(rule.Validity) > 0 && !rule.Validity.Contains(t) {
			continue
		}

		subs, err := k.matcher.MatchBody(ctx, rule.Body, tPrime, stats)
		if err != nil {
			return nil, chronoerr.Wrap(chronoerr.InvalidInput, "reason", "rule body evaluation failed", err)
		}

		for _, sigma := range subs {
			head := unify.Apply(sigma, rule.Head)
			if hasVariable(head) {
				// Range-restriction is checked at registration, so this
				// should be unreachable; guard defensively rather than
				// emit a malformed fact.
				continue
			}
			if k.store.Holds(head, t) {
				continue
			}
			newFacts = append(newFacts, store.TimedFact{Atom: head, Intervals: term.Point(t)})
		}
	}
	return newFacts, nil
}

func hasVariable(atom term.Atom) bool {
	for _, arg := range atom.Args {
		if term.IsVariable(arg) {
			return true
		}
	}
	return false
}

// FactsAt returns the snapshot of atoms true at t.
func (k *Kernel) FactsAt(t int) []term.Atom {
	return k.store.FactsAt(t)
}

// Cleanup releases kernel-owned resources. The fact store and encoder are
// process-local Go values with no external handles, so there is nothing to
// release today; Cleanup exists so callers have a single, stable shutdown
// hook regardless of which matcher backend (and its device resources) is
// configured underneath.
func (k *Kernel) Cleanup() error {
	return nil
}
