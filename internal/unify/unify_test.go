package unify

import (
	"testing"

	"chronodl/internal/term"

	"github.com/stretchr/testify/require"
)

func TestUnifyBindsVariable(t *testing.T) {
	pattern := term.NewAtom("owns", "X", "tesla")
	fact := term.NewAtom("owns", "alice", "tesla")

	sub, ok := Unify(pattern, fact)
	require.True(t, ok)
	require.Equal(t, "alice", sub["X"])
}

func TestUnifyArityMismatch(t *testing.T) {
	pattern := term.NewAtom("owns", "X")
	fact := term.NewAtom("owns", "alice", "tesla")
	_, ok := Unify(pattern, fact)
	require.False(t, ok)
}

func TestUnifyPredicateMismatch(t *testing.T) {
	pattern := term.NewAtom("owns", "X")
	fact := term.NewAtom("drives", "alice")
	_, ok := Unify(pattern, fact)
	require.False(t, ok)
}

func TestUnifyRepeatedVariableConsistency(t *testing.T) {
	pattern := term.NewAtom("friends", "X", "X")
	ok1 := term.NewAtom("friends", "alice", "alice")
	bad := term.NewAtom("friends", "alice", "bob")

	_, ok := Unify(pattern, ok1)
	require.True(t, ok)

	_, ok = Unify(pattern, bad)
	require.False(t, ok, "repeated variable must bind to the same constant both times")
}

func TestUnifySoundness(t *testing.T) {
	// Invariant (spec.md §8): if unify(pattern, fact) = sigma, then
	// apply(sigma, pattern) == fact.
	pattern := term.NewAtom("trendy", "X", "tesla")
	fact := term.NewAtom("trendy", "alice", "tesla")

	sub, ok := Unify(pattern, fact)
	require.True(t, ok)
	require.True(t, Apply(sub, pattern).Equal(fact))
}

func TestUnifyUnderExtendsExistingSubstitution(t *testing.T) {
	sigma := Substitution{"X": "alice"}
	pattern := term.NewAtom("owns", "X", "Y")
	fact := term.NewAtom("owns", "alice", "tesla")

	sub, ok := UnifyUnder(sigma, pattern, fact)
	require.True(t, ok)
	require.Equal(t, "alice", sub["X"])
	require.Equal(t, "tesla", sub["Y"])
}

func TestUnifyUnderConflictingBinding(t *testing.T) {
	sigma := Substitution{"X": "bob"}
	pattern := term.NewAtom("owns", "X", "Y")
	fact := term.NewAtom("owns", "alice", "tesla")

	_, ok := UnifyUnder(sigma, pattern, fact)
	require.False(t, ok)
}

func TestMergeConsistentExtension(t *testing.T) {
	a := Substitution{"X": "alice"}
	b := Substitution{"Y": "bob"}
	merged, ok := Merge(a, b)
	require.True(t, ok)
	require.Equal(t, "alice", merged["X"])
	require.Equal(t, "bob", merged["Y"])
}

func TestMergeConflict(t *testing.T) {
	a := Substitution{"X": "alice"}
	b := Substitution{"X": "bob"}
	_, ok := Merge(a, b)
	require.False(t, ok)
}
