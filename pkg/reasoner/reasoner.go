// Package reasoner is the single-node library API for chronodl: configure a
// Reasoner with a GPU-mode selector and thresholds, assert facts and rules,
// run the timed fixpoint, and read back the interpretation.
//
// This is the explicit "Reasoner value threaded through the API" design
// note of spec.md §9, replacing any process-wide singleton: every
// Reasoner owns its own encoder, fact store, matcher, and kernel, so
// tests (and concurrent callers) can fully isolate interning and
// derivation state by simply constructing separate values.
package reasoner

import (
	"context"

	"chronodl/internal/encode"
	"chronodl/internal/kernel"
	"chronodl/internal/logging"
	"chronodl/internal/match"
	"chronodl/internal/store"
	"chronodl/internal/term"

	"go.uber.org/zap"
)

// GPUMode selects the pattern-matching backend. See match.Mode.
type GPUMode = match.Mode

const (
	CPUOnly GPUMode = match.ModeCPUOnly
	GPUOnly GPUMode = match.ModeGPUOnly
	Auto    GPUMode = match.ModeAuto
)

// Config configures a Reasoner.
type Config struct {
	GPUMode GPUMode

	// MinFacts, MinRules, MinComplexity gate the GPU path in Auto mode
	// (spec.md §4.5). Ignored for CPUOnly/GPUOnly.
	MinFacts       int
	MinRules       int
	MinComplexity  int

	// Device backs the GPU path. If nil and GPUMode != CPUOnly, a
	// software-emulated reference device is used (see match.SoftwareDevice).
	Device match.Device

	// Verbose raises the logger to debug level.
	Verbose bool
}

// DefaultConfig returns a CPU-only reasoner configuration, matching the
// behavior a caller gets with no GPU opt-in.
func DefaultConfig() Config {
	return Config{GPUMode: CPUOnly}
}

// Reasoner is a single-node reasoning session: one encoder, one fact store,
// one matcher, one kernel. Not safe for concurrent Reason calls.
type Reasoner struct {
	enc    *encode.Encoder
	store  *store.FactStore
	kernel *kernel.Kernel
	logger *zap.Logger
}

// New builds a Reasoner per cfg.
func New(cfg Config) *Reasoner {
	logger := logging.New("reasoner", cfg.Verbose)

	enc := encode.New()
	st := store.New(enc)

	device := cfg.Device
	if device == nil && cfg.GPUMode != CPUOnly {
		device = match.SoftwareDevice{}
	}

	thresholds := match.Thresholds{
		MinFacts:      cfg.MinFacts,
		MinRules:      cfg.MinRules,
		MinComplexity: cfg.MinComplexity,
	}
	matcher := match.New(st, enc, cfg.GPUMode, thresholds, device, logger.Named("match"))
	k := kernel.New(enc, st, matcher, logger.Named("kernel"))

	return &Reasoner{enc: enc, store: st, kernel: k, logger: logger}
}

// AddFact asserts atom true on the given inclusive timestep intervals.
func (r *Reasoner) AddFact(atom term.Atom, intervals term.IntervalSet) error {
	return r.kernel.AddFact(atom, intervals)
}

// AddRule registers rule, validating range-restriction synchronously.
func (r *Reasoner) AddRule(rule term.Rule) error {
	return r.kernel.AddRule(rule)
}

// Reason computes the saturated interpretation for every timestep in
// [0, T].
func (r *Reasoner) Reason(ctx context.Context, T int) error {
	return r.kernel.Reason(ctx, T)
}

// FactsAt returns the set of atoms true at t.
func (r *Reasoner) FactsAt(t int) []term.Atom {
	return r.kernel.FactsAt(t)
}

// Cleanup delegates to the kernel's shutdown hook. No backend here holds
// external handles (the software device allocates per call), so it
// releases nothing and returns nil.
func (r *Reasoner) Cleanup() error {
	return r.kernel.Cleanup()
}
