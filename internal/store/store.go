// Package store implements the fact store: an indexed container of timed
// facts keyed by predicate, supporting per-timestep membership queries. It
// is owned by exactly one reasoning kernel and mutated only by that
// kernel's add_fact path and derived-fact writer during fixpoint iteration
// (spec.md §3, §5).
package store

import (
	"sort"
	"sync"

	"chronodl/internal/encode"
	"chronodl/internal/term"
)

// TimedFact is an atom, a stable identifier unique within a run, and a
// non-empty list of intervals on which the atom is asserted true.
type TimedFact struct {
	ID        int
	Atom      term.Atom
	Intervals term.IntervalSet
}

// TrueAt reports whether the fact holds at t.
func (tf TimedFact) TrueAt(t int) bool {
	return tf.Intervals.Contains(t)
}

// FactStore indexes timed facts by predicate id for fast candidate
// retrieval during pattern matching.
type FactStore struct {
	mu          sync.RWMutex
	enc         *encode.Encoder
	byPredicate map[int][]*TimedFact
	nextID      int
}

// New returns an empty FactStore that interns predicate symbols through enc.
func New(enc *encode.Encoder) *FactStore {
	return &FactStore{
		enc:         enc,
		byPredicate: make(map[int][]*TimedFact),
		nextID:      1,
	}
}

// Insert adds a timed fact, assigning an ID if the caller passed zero.
// Dedup is by (atom, interval-set): an exact-duplicate insertion is a
// no-op. Inserting the same atom with an overlapping-but-different
// interval set still appends a second entry, preserving the reasoning
// kernel's per-timestep derivation contract (spec.md §4.6(b)); facts_at(t)
// unions across all entries for the atom.
func (s *FactStore) Insert(tf TimedFact) *TimedFact {
	predID := s.enc.Intern(tf.Atom.Predicate)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.byPredicate[predID] {
		if existing.Atom.Equal(tf.Atom) && sameIntervalSet(existing.Intervals, tf.Intervals) {
			return existing
		}
	}

	if tf.ID == 0 {
		tf.ID = s.nextID
		s.nextID++
	} else if tf.ID >= s.nextID {
		s.nextID = tf.ID + 1
	}

	stored := tf
	s.byPredicate[predID] = append(s.byPredicate[predID], &stored)
	return &stored
}

func sameIntervalSet(a, b term.IntervalSet) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append(term.IntervalSet(nil), a...)
	sb := append(term.IntervalSet(nil), b...)
	less := func(s term.IntervalSet) func(i, j int) bool {
		return func(i, j int) bool {
			if s[i].Lo != s[j].Lo {
				return s[i].Lo < s[j].Lo
			}
			return s[i].Hi < s[j].Hi
		}
	}
	sort.Slice(sa, less(sa))
	sort.Slice(sb, less(sb))
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

// Candidates visits every timed fact whose predicate is predicateID and
// whose interval set contains t, in insertion order, following the
// visitor-callback shape used throughout the pack for fact-store scans.
// Visiting stops early if yield returns false.
func (s *FactStore) Candidates(predicateID int, t int, yield func(*TimedFact) bool) {
	s.mu.RLock()
	facts := s.byPredicate[predicateID]
	// Copy the slice header's contents under the lock, then release it
	// before invoking the caller's callback, which may itself call back
	// into the store (e.g. via a nested candidate scan).
	snapshot := make([]*TimedFact, len(facts))
	copy(snapshot, facts)
	s.mu.RUnlock()

	for _, tf := range snapshot {
		if !tf.TrueAt(t) {
			continue
		}
		if !yield(tf) {
			return
		}
	}
}

// Holds reports whether atom is asserted true at t by any stored timed
// fact.
func (s *FactStore) Holds(atom term.Atom, t int) bool {
	predID := s.enc.Lookup(atom.Predicate)
	if predID == 0 {
		return false
	}
	found := false
	s.Candidates(predID, t, func(tf *TimedFact) bool {
		if tf.Atom.Equal(atom) {
			found = true
			return false
		}
		return true
	})
	return found
}

// Count returns the total number of timed facts stored, across all
// predicates, used to size GPU-dispatch thresholds.
func (s *FactStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, facts := range s.byPredicate {
		n += len(facts)
	}
	return n
}

// FactsAt returns the snapshot set of distinct atoms true at t, used to
// build the final interpretation. Invariant: FactsAt(t) equals the union
// of atoms of all timed facts true at t (spec.md §4.2).
func (s *FactStore) FactsAt(t int) []term.Atom {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var out []term.Atom
	for _, facts := range s.byPredicate {
		for _, tf := range facts {
			if !tf.TrueAt(t) {
				continue
			}
			key := tf.Atom.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, tf.Atom)
		}
	}
	return out
}
