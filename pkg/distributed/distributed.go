// Package distributed is the public API for running chronodl's timed
// fixpoint reasoning across a fixed pool of worker processes (spec.md
// §4.7). A Master fans facts and rules out to every worker, runs the
// reasoning pass concurrently, and aggregates the results.
package distributed

import (
	"context"
	"time"

	clustermaster "chronodl/internal/cluster/master"
	"chronodl/internal/logging"
	"chronodl/internal/term"

	"go.uber.org/zap"
)

// PartitionStrategy is carried in Config as metadata only. See
// clustermaster.Strategy: it never changes which workers actually receive
// a fact — that dispatch is always all-to-all — and no statistics output
// reports fact ownership.
type PartitionStrategy = clustermaster.Strategy

const (
	PredicatePartition  PartitionStrategy = clustermaster.PredicateStrategy
	HashPartition       PartitionStrategy = clustermaster.HashStrategy
	RoundRobinPartition PartitionStrategy = clustermaster.RoundRobinStrategy
)

// WorkerAddr names one worker's RPC endpoint.
type WorkerAddr struct {
	ID   string
	Addr string
}

// Config configures a Master.
type Config struct {
	Workers       []WorkerAddr
	Strategy      PartitionStrategy
	WorkerTimeout time.Duration
	MaxRetries    int
	Verbose       bool
}

// Master is a distributed reasoning session spanning a fixed worker pool.
type Master struct {
	m      *clustermaster.Master
	logger *zap.Logger
}

// NewMaster dials every configured worker.
func NewMaster(cfg Config) (*Master, error) {
	logger := logging.New("distributed-master", cfg.Verbose)

	endpoints := make([]clustermaster.WorkerEndpoint, len(cfg.Workers))
	for i, w := range cfg.Workers {
		endpoints[i] = clustermaster.WorkerEndpoint{ID: w.ID, Addr: w.Addr}
	}

	m, err := clustermaster.NewMaster(clustermaster.Config{
		Workers:       endpoints,
		Strategy:      cfg.Strategy,
		WorkerTimeout: cfg.WorkerTimeout,
		MaxRetries:    cfg.MaxRetries,
	}, logger)
	if err != nil {
		return nil, err
	}
	return &Master{m: m, logger: logger}, nil
}

// AddFact stages a fact for distribution across the cluster.
func (d *Master) AddFact(atom term.Atom, intervals term.IntervalSet) error {
	return d.m.AddFact(atom, intervals)
}

// AddRule stages a rule for distribution across the cluster.
func (d *Master) AddRule(rule term.Rule) error {
	return d.m.AddRule(rule)
}

// WorkerResult reports one worker's contribution to a reasoning pass.
type WorkerResult = clustermaster.WorkerResult

// DistributedInterpretation is the aggregated result of a cluster-wide
// reasoning pass (spec.md §4.7).
type DistributedInterpretation struct {
	MaxTime         int
	TotalFacts      int
	ExecutionTimeMs int64
	WorkerResults   []WorkerResult
	Speedup         float64

	factsAt [][]term.Atom
}

// FactsAt returns the atoms true at timestep t.
func (d *DistributedInterpretation) FactsAt(t int) []term.Atom {
	if t < 0 || t >= len(d.factsAt) {
		return nil
	}
	return d.factsAt[t]
}

// Reason runs a distributed timed-fixpoint reasoning pass over [0, T] and
// returns the aggregated interpretation.
func (d *Master) Reason(ctx context.Context, T int) (*DistributedInterpretation, error) {
	result, err := d.m.Reason(ctx, T)
	if err != nil {
		return nil, err
	}
	return &DistributedInterpretation{
		MaxTime:         result.MaxTime,
		TotalFacts:      result.TotalFacts,
		ExecutionTimeMs: result.ExecutionTimeMs,
		WorkerResults:   result.WorkerResults,
		Speedup:         result.Speedup,
		factsAt:         result.FactsAt,
	}, nil
}

// GetStatistics collects get_stats() from every worker in the cluster.
func (d *Master) GetStatistics(ctx context.Context) ([]clustermaster.WorkerResult, error) {
	stats, err := d.m.Statistics(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]clustermaster.WorkerResult, len(stats))
	for i, s := range stats {
		out[i] = clustermaster.WorkerResult{
			WorkerID:     s.WorkerID,
			FactCount:    s.FactCount,
			DerivedCount: s.DerivedCount,
		}
	}
	return out, nil
}

// Shutdown closes every worker connection.
func (d *Master) Shutdown() error {
	return d.m.Shutdown()
}
