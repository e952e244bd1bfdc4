package match

import (
	"context"

	"chronodl/internal/encode"
	"chronodl/internal/store"
	"chronodl/internal/term"
	"chronodl/internal/unify"
)

// cpuLiteralMatcher matches a single literal by scanning the fact store's
// per-predicate candidate index directly.
type cpuLiteralMatcher struct {
	store *store.FactStore
	enc   *encode.Encoder
}

func (c *cpuLiteralMatcher) matchLiteral(_ context.Context, pattern term.Atom, t int) ([]unify.Substitution, error) {
	predID := c.enc.Lookup(pattern.Predicate)
	if predID == 0 {
		// Predicate never interned: it has never been asserted, so there
		// can be no candidates.
		return nil, nil
	}

	var subs []unify.Substitution
	c.store.Candidates(predID, t, func(tf *store.TimedFact) bool {
		if sub, ok := unify.Unify(pattern, tf.Atom); ok {
			subs = append(subs, sub)
		}
		return true
	})
	return subs, nil
}
