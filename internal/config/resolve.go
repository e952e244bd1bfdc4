package config

import (
	"fmt"

	clustermaster "chronodl/internal/cluster/master"
	"chronodl/pkg/reasoner"
)

// ReasonerConfig translates the GPU section into a pkg/reasoner.Config.
func (c *Config) ReasonerConfig() (reasoner.Config, error) {
	var mode reasoner.GPUMode
	switch c.GPU.Mode {
	case "cpu-only", "":
		mode = reasoner.CPUOnly
	case "gpu-only":
		mode = reasoner.GPUOnly
	case "auto":
		mode = reasoner.Auto
	default:
		return reasoner.Config{}, fmt.Errorf("invalid gpu mode: %s", c.GPU.Mode)
	}
	return reasoner.Config{
		GPUMode:       mode,
		MinFacts:      c.GPU.MinFacts,
		MinRules:      c.GPU.MinRules,
		MinComplexity: c.GPU.MinComplexity,
	}, nil
}

// MasterConfig translates the distributed section into a
// internal/cluster/master.Config.
func (c *Config) MasterConfig() (clustermaster.Config, error) {
	var strategy clustermaster.Strategy
	switch c.Distributed.Strategy {
	case "predicate", "":
		strategy = clustermaster.PredicateStrategy
	case "hash":
		strategy = clustermaster.HashStrategy
	case "round_robin":
		strategy = clustermaster.RoundRobinStrategy
	default:
		return clustermaster.Config{}, fmt.Errorf("invalid partition strategy: %s", c.Distributed.Strategy)
	}

	workers := make([]clustermaster.WorkerEndpoint, len(c.Distributed.Workers))
	for i, w := range c.Distributed.Workers {
		workers[i] = clustermaster.WorkerEndpoint{ID: w.ID, Addr: fmt.Sprintf("%s:%d", w.Host, w.Port)}
	}

	return clustermaster.Config{
		Workers:       workers,
		Strategy:      strategy,
		WorkerTimeout: c.WorkerTimeout(),
		MaxRetries:    c.Distributed.MaxRetries,
	}, nil
}
