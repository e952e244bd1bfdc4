package match

import (
	"context"
	"sync"

	"chronodl/internal/chronoerr"
	"chronodl/internal/encode"
	"chronodl/internal/store"
	"chronodl/internal/term"
	"chronodl/internal/unify"
)

// Capability describes what a Device can offer a match call.
type Capability struct {
	// MaxWorkGroupSize is the largest work-group size the device's kernel
	// queue can schedule. Zero means the probe could not determine one.
	MaxWorkGroupSize int
}

// Device is the capability-probe-and-dispatch boundary a real OpenCL
// platform/device enumeration would sit behind (out of scope per spec.md
// §1 — modeled here as an interface so the kernel contract of §4.5 is
// fully exercised and tested without a hardware or cgo dependency).
type Device interface {
	// Probe reports the device's capability, or ok=false if no device is
	// available (ResourceUnavailable upstream).
	Probe(ctx context.Context) (cap Capability, ok bool)

	// Execute runs the single-literal match kernel contract: facts is the
	// flat concatenation of encoded tuples, sizes[i]/offsets[i] give the
	// length/start of fact i's tuple, n is the fact count, pattern is the
	// encoded pattern (0 marking a variable slot), and workGroupSize is
	// the tuned (or device-chosen, if 0) dispatch width. It returns the
	// indices of matching facts.
	Execute(ctx context.Context, facts []int, sizes []int, offsets []int, n int, pattern []int, workGroupSize int) ([]int, error)
}

// SoftwareDevice is the in-process reference implementation of Device. It
// performs exactly the per-work-item contract of spec.md §4.5 — it is the
// seam a real OpenCL backend would replace, kept here so the dispatch
// contract, auto-tuning, and resource lifecycle are testable without one.
type SoftwareDevice struct{}

// Probe always succeeds for the software device, advertising a generous
// work-group ceiling.
func (SoftwareDevice) Probe(ctx context.Context) (Capability, bool) {
	return Capability{MaxWorkGroupSize: 256}, true
}

// Execute walks every fact once, exactly mirroring the per-work-item
// kernel contract (workGroupSize only affects how the device would batch
// real parallel work-items; functionally it is a no-op here).
func (SoftwareDevice) Execute(ctx context.Context, facts []int, sizes []int, offsets []int, n int, pattern []int, workGroupSize int) ([]int, error) {
	var out []int
	p := len(pattern)
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if sizes[i] != p {
			continue
		}
		matched := true
		base := offsets[i]
		for j := 0; j < p; j++ {
			if pattern[j] == 0 {
				continue
			}
			if pattern[j] != facts[base+j] {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, i)
		}
	}
	return out, nil
}

// workGroupSizes is the candidate set auto-tuning chooses from, largest
// first so the first size that fits both the device ceiling and N wins.
var workGroupSizes = []int{256, 128, 64, 32}

// gpuLiteralMatcher dispatches a single-literal match to a Device over the
// store's flat encoded facts. The matcher owns the tuned work-group size
// for the kernel's lifetime and the mutex guaranteeing the host side holds
// exclusive access to the device for the duration of a match call
// (spec.md §5).
type gpuLiteralMatcher struct {
	store  *store.FactStore
	enc    *encode.Encoder
	device Device

	mu            sync.Mutex
	tuned         bool
	workGroupSize int // 0 means "let the device choose"
}

func newGPULiteralMatcher(st *store.FactStore, enc *encode.Encoder, device Device) *gpuLiteralMatcher {
	return &gpuLiteralMatcher{store: st, enc: enc, device: device}
}

func (g *gpuLiteralMatcher) matchLiteral(ctx context.Context, pattern term.Atom, t int) ([]unify.Substitution, error) {
	atoms := g.store.FactsAt(t)

	facts := make([]int, 0, len(atoms)*2)
	sizes := make([]int, len(atoms))
	offsets := make([]int, len(atoms))
	decoded := make([]term.Atom, len(atoms))

	for i, atom := range atoms {
		a := atom
		tup, err := g.enc.Encode(&a)
		if err != nil {
			return nil, err
		}
		offsets[i] = len(facts)
		sizes[i] = len(tup)
		facts = append(facts, tup...)
		decoded[i] = a
	}

	patTup, _, err := g.enc.EncodePattern(pattern)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	workGroupSize, err := g.tunedWorkGroupSizeLocked(ctx, len(atoms))
	if err != nil {
		g.mu.Unlock()
		return nil, err
	}

	idxs, err := g.device.Execute(ctx, facts, sizes, offsets, len(atoms), patTup, workGroupSize)
	g.mu.Unlock()
	if err != nil {
		return nil, chronoerr.Wrap(chronoerr.ResourceUnavailable, "gpu_match_literal", "device execute failed", err)
	}

	var subs []unify.Substitution
	for _, i := range idxs {
		if i < 0 || i >= len(decoded) {
			continue
		}
		if sub, ok := unify.Unify(pattern, decoded[i]); ok {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

// tunedWorkGroupSizeLocked implements the auto-tuning contract of
// spec.md §4.5: probe once, cache the chosen size for every later call. If
// the probe fails, fall back to device-chosen sizing (workGroupSize 0).
// Must be called with g.mu held.
func (g *gpuLiteralMatcher) tunedWorkGroupSizeLocked(ctx context.Context, n int) (int, error) {
	if g.tuned {
		return g.workGroupSize, nil
	}

	capability, ok := g.device.Probe(ctx)
	if !ok {
		g.tuned = true
		g.workGroupSize = 0
		return 0, nil
	}

	chosen := 0
	for _, size := range workGroupSizes {
		if size <= capability.MaxWorkGroupSize && size <= n {
			chosen = size
			break
		}
	}

	g.tuned = true
	g.workGroupSize = chosen
	return chosen, nil
}
