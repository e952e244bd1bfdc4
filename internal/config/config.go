// Package config loads chronodl's YAML configuration: the single-node GPU
// mode and dispatch thresholds, and the distributed worker pool and
// partition strategy. Grounded on the teacher's internal/config/config.go
// Load/Save/Validate shape.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// GPUConfig configures the single-node pattern-matching backend
// (spec.md §4.5).
type GPUConfig struct {
	// Mode is one of "cpu-only", "gpu-only", "auto".
	Mode          string `yaml:"mode"`
	MinFacts      int    `yaml:"min_facts"`
	MinRules      int    `yaml:"min_rules"`
	MinComplexity int    `yaml:"min_complexity"`
}

// WorkerEndpointConfig names one distributed worker's RPC address.
type WorkerEndpointConfig struct {
	ID   string `yaml:"id"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DistributedConfig configures a distributed master (spec.md §4.7).
type DistributedConfig struct {
	Workers []WorkerEndpointConfig `yaml:"workers"`

	// Strategy is one of "predicate", "hash", "round_robin".
	Strategy        string `yaml:"strategy"`
	WorkerTimeoutMS int    `yaml:"worker_timeout_ms"`
	MaxRetries      int    `yaml:"max_retries"`
}

// Config is the top-level chronodl configuration.
type Config struct {
	GPU         GPUConfig         `yaml:"gpu"`
	Distributed DistributedConfig `yaml:"distributed"`
	LogLevel    string            `yaml:"log_level"`
}

// DefaultWorkerTimeoutMS and DefaultMaxRetries mirror spec.md §4.7.
const (
	DefaultWorkerTimeoutMS = 30000
	DefaultMaxRetries      = 3
)

// DefaultConfig returns the CPU-only, no-workers default configuration.
func DefaultConfig() *Config {
	return &Config{
		GPU: GPUConfig{
			Mode:          "cpu-only",
			MinFacts:      1000,
			MinRules:      10,
			MinComplexity: 10000,
		},
		Distributed: DistributedConfig{
			Strategy:        "predicate",
			WorkerTimeoutMS: DefaultWorkerTimeoutMS,
			MaxRetries:      DefaultMaxRetries,
		},
		LogLevel: "info",
	}
}

// Load reads configuration from a YAML file at path, falling back to
// DefaultConfig if the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Save writes configuration to path as YAML.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// WorkerTimeout returns the worker timeout as a duration.
func (c *Config) WorkerTimeout() time.Duration {
	if c.Distributed.WorkerTimeoutMS <= 0 {
		return DefaultWorkerTimeoutMS * time.Millisecond
	}
	return time.Duration(c.Distributed.WorkerTimeoutMS) * time.Millisecond
}

// ValidGPUModes lists the supported GPU dispatch modes.
var ValidGPUModes = []string{"cpu-only", "gpu-only", "auto"}

// ValidStrategies lists the supported partition strategies.
var ValidStrategies = []string{"predicate", "hash", "round_robin"}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if !contains(ValidGPUModes, c.GPU.Mode) {
		return fmt.Errorf("invalid gpu mode: %s (valid: %v)", c.GPU.Mode, ValidGPUModes)
	}
	if !contains(ValidStrategies, c.Distributed.Strategy) {
		return fmt.Errorf("invalid partition strategy: %s (valid: %v)", c.Distributed.Strategy, ValidStrategies)
	}
	for _, w := range c.Distributed.Workers {
		if w.ID == "" {
			return fmt.Errorf("distributed worker entry missing id")
		}
		if w.Port <= 0 {
			return fmt.Errorf("distributed worker %s has invalid port %d", w.ID, w.Port)
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
