package match

import (
	"context"

	"chronodl/internal/chronoerr"
	"chronodl/internal/encode"
	"chronodl/internal/store"
	"chronodl/internal/term"
	"chronodl/internal/unify"

	"go.uber.org/zap"
)

// Mode selects which pattern-matching backend a Matcher uses.
type Mode string

const (
	ModeCPUOnly Mode = "cpu-only"
	ModeGPUOnly Mode = "gpu-only"
	ModeAuto    Mode = "auto"
)

// Thresholds gate the GPU path in ModeAuto: the GPU dispatches only when
// all three are met (spec.md §4.5).
type Thresholds struct {
	MinFacts      int
	MinRules      int
	MinComplexity int
}

// Stats describes the scale of a match call, used to evaluate Thresholds.
type Stats struct {
	Facts     int
	Rules     int
	Timesteps int
}

// Matcher evaluates rule bodies against a fact store, choosing per call
// whether the single-literal steps run on the CPU or are dispatched to a
// Device (spec.md §4.5, "Dispatch decisions are taken per match call").
type Matcher struct {
	store  *store.FactStore
	enc    *encode.Encoder
	mode   Mode
	thresh Thresholds
	logger *zap.Logger

	cpu *cpuLiteralMatcher
	gpu *gpuLiteralMatcher
}

// New builds a Matcher. device may be nil if mode is ModeCPUOnly.
func New(st *store.FactStore, enc *encode.Encoder, mode Mode, thresh Thresholds, device Device, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Matcher{
		store:  st,
		enc:    enc,
		mode:   mode,
		thresh: thresh,
		logger: logger,
		cpu:    &cpuLiteralMatcher{store: st, enc: enc},
	}
	if device != nil {
		m.gpu = newGPULiteralMatcher(st, enc, device)
	}
	return m
}

// MatchBody evaluates body at timestep t, selecting CPU or GPU for the
// single-literal steps per the configured Mode and Thresholds, then
// running the shared multi-literal join/negation algorithm.
func (m *Matcher) MatchBody(ctx context.Context, body []term.Literal, t int, stats Stats) ([]unify.Substitution, error) {
	lm, err := m.selectLiteralMatcher(ctx, stats)
	if err != nil {
		return nil, err
	}
	return matchBody(ctx, lm, body, t)
}

func (m *Matcher) selectLiteralMatcher(ctx context.Context, stats Stats) (literalMatcher, error) {
	switch m.mode {
	case ModeCPUOnly:
		return m.cpu, nil

	case ModeGPUOnly:
		if m.gpu == nil {
			return nil, chronoerr.New(chronoerr.ResourceUnavailable, "select_matcher", "gpu-only mode requested but no device configured")
		}
		if _, ok := m.gpu.device.Probe(ctx); !ok {
			return nil, chronoerr.New(chronoerr.ResourceUnavailable, "select_matcher", "gpu-only mode requested but device probe failed")
		}
		return m.gpu, nil

	case ModeAuto:
		if m.gpu == nil {
			return m.cpu, nil
		}
		complexity := stats.Facts * stats.Rules * stats.Timesteps
		meetsThresholds := stats.Facts >= m.thresh.MinFacts &&
			stats.Rules >= m.thresh.MinRules &&
			complexity >= m.thresh.MinComplexity
		if !meetsThresholds {
			return m.cpu, nil
		}
		if _, ok := m.gpu.device.Probe(ctx); !ok {
			m.logger.Warn("gpu probe failed in auto mode, falling back to cpu")
			return m.cpu, nil
		}
		return m.gpu, nil

	default:
		return nil, chronoerr.New(chronoerr.InvalidInput, "select_matcher", "unknown matcher mode: "+string(m.mode))
	}
}
