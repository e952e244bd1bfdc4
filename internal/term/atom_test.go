package term

import "testing"

func TestIsVariable(t *testing.T) {
	cases := map[string]bool{
		"X":     true,
		"Y1":    true,
		"alice": false,
		"a":     false,
		"ab":    false,
		"":      false,
		"_foo":  false,
	}
	for in, want := range cases {
		if got := IsVariable(in); got != want {
			t.Errorf("IsVariable(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestAtomEqual(t *testing.T) {
	a := NewAtom("friends", "alice", "bob")
	b := NewAtom("friends", "alice", "bob")
	c := NewAtom("friends", "bob", "alice")
	if !a.Equal(b) {
		t.Errorf("expected %v == %v", a, b)
	}
	if a.Equal(c) {
		t.Errorf("expected %v != %v (order matters)", a, c)
	}
}

func TestAtomVariables(t *testing.T) {
	a := NewAtom("popular", "X", "alice", "X", "Y")
	vars := a.Variables()
	want := []string{"X", "Y"}
	if len(vars) != len(want) {
		t.Fatalf("Variables() = %v, want %v", vars, want)
	}
	for i := range want {
		if vars[i] != want[i] {
			t.Errorf("Variables()[%d] = %q, want %q", i, vars[i], want[i])
		}
	}
}

func TestSubstringCollidingSymbols(t *testing.T) {
	a := NewAtom("p", "a")
	b := NewAtom("p", "ab")
	if a.Equal(b) {
		t.Errorf("%v and %v must not be equal despite substring collision", a, b)
	}
}
