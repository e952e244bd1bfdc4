// Package encode implements the fact encoder: a per-instance, bidirectional
// mapping between symbols (predicate names and argument constants) and
// dense small integers, plus the flat tuple encodings the matcher and the
// GPU dispatch contract operate on.
//
// Id 0 is reserved for "unknown/variable" (spec.md §3, Encoded tuple).
// Allocation starts at 1.
package encode

import (
	"sync"

	"chronodl/internal/chronoerr"
	"chronodl/internal/term"
)

// Encoder owns a bidirectional symbol<->id table. All operations are
// observably atomic under concurrent access via a single mutex; every
// operation is brief and non-blocking, per spec.md §5.
type Encoder struct {
	mu      sync.Mutex
	toID    map[string]int
	toSym   map[int]string
	nextID  int
}

// New returns an empty Encoder with next_id == 1.
func New() *Encoder {
	return &Encoder{
		toID:   make(map[string]int),
		toSym:  make(map[int]string),
		nextID: 1,
	}
}

// Intern returns the existing id for symbol, allocating the next one if
// symbol has not been seen before.
func (e *Encoder) Intern(symbol string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.internLocked(symbol)
}

func (e *Encoder) internLocked(symbol string) int {
	if id, ok := e.toID[symbol]; ok {
		return id
	}
	id := e.nextID
	e.nextID++
	e.toID[symbol] = id
	e.toSym[id] = symbol
	return id
}

// Lookup returns the id for symbol without allocating; 0 if unknown.
func (e *Encoder) Lookup(symbol string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.toID[symbol]
}

// Resolve returns the symbol for id, and whether it is known.
func (e *Encoder) Resolve(id int) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sym, ok := e.toSym[id]
	return sym, ok
}

// Tuple is a flat encoded atom or pattern: [pred_id, arg1_id, ..., argk_id].
// In a pattern, a 0 entry denotes a variable slot.
type Tuple []int

// VariablePosition pairs a distinct variable name with its first occurrence
// position in a pattern tuple, counting the predicate as position 0.
type VariablePosition struct {
	Name     string
	Position int
}

// Encode interns the predicate and every argument of atom and returns the
// flat tuple. atom must be non-nil (a zero-value Atom with empty predicate
// is rejected as invalid).
func (e *Encoder) Encode(atom *term.Atom) (Tuple, error) {
	if atom == nil {
		return nil, chronoerr.New(chronoerr.InvalidInput, "encode", "atom is nil")
	}
	if atom.Predicate == "" {
		return nil, chronoerr.New(chronoerr.InvalidInput, "encode", "atom has empty predicate")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(Tuple, 0, len(atom.Args)+1)
	out = append(out, e.internLocked(atom.Predicate))
	for _, arg := range atom.Args {
		out = append(out, e.internLocked(arg))
	}
	return out, nil
}

// EncodePattern encodes atom as a pattern: constants are interned normally,
// but variable argument slots are encoded as 0. The returned
// VariablePositions list each distinct variable's first position.
func (e *Encoder) EncodePattern(atom term.Atom) (Tuple, []VariablePosition, error) {
	if atom.Predicate == "" {
		return nil, nil, chronoerr.New(chronoerr.InvalidInput, "encode_pattern", "atom has empty predicate")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(Tuple, 0, len(atom.Args)+1)
	out = append(out, e.internLocked(atom.Predicate))

	seen := make(map[string]bool)
	var positions []VariablePosition
	for i, arg := range atom.Args {
		if term.IsVariable(arg) {
			out = append(out, 0)
			if !seen[arg] {
				seen[arg] = true
				positions = append(positions, VariablePosition{Name: arg, Position: i + 1})
			}
			continue
		}
		out = append(out, e.internLocked(arg))
	}
	return out, positions, nil
}

// EncodeBatch flattens a sequence of atoms into the wire batch encoding:
// each tuple prefixed by its own length, [n, pred, a1, ..., a(n-1), m, ...].
func (e *Encoder) EncodeBatch(atoms []term.Atom) ([]int, error) {
	var out []int
	for i := range atoms {
		tup, err := e.Encode(&atoms[i])
		if err != nil {
			return nil, err
		}
		out = append(out, len(tup))
		out = append(out, tup...)
	}
	return out, nil
}

// Decode reverses Encode, failing with InconsistentState if any id in tuple
// is not resolvable, or if tuple is empty.
func (e *Encoder) Decode(tup Tuple) (term.Atom, error) {
	if len(tup) == 0 {
		return term.Atom{}, chronoerr.New(chronoerr.InconsistentState, "decode", "empty pattern")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	pred, ok := e.toSym[tup[0]]
	if !ok {
		return term.Atom{}, chronoerr.New(chronoerr.InconsistentState, "decode", "unknown predicate id")
	}

	args := make([]string, len(tup)-1)
	for i, id := range tup[1:] {
		sym, ok := e.toSym[id]
		if !ok {
			return term.Atom{}, chronoerr.New(chronoerr.InconsistentState, "decode", "unknown argument id")
		}
		args[i] = sym
	}
	return term.NewAtom(pred, args...), nil
}

// Reset clears all interning state; the next Intern call allocates id 1
// again.
func (e *Encoder) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.toID = make(map[string]int)
	e.toSym = make(map[int]string)
	e.nextID = 1
}
