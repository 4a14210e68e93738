// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

// Anchor ties one classified history to the terminal QC process it was
// resolved from and to its ancestry set: the ids of every validation-end
// process contributing to the history.
type Anchor struct {
	// ID is the id of the terminal aggregate-QC process.
	ID string

	// History is the classified view anchored at that process.
	History *Classified

	// Ancestry is the contributing validation-end process id set.
	Ancestry map[string]bool
}

// Reduce drops anchors whose ancestry set is a proper subset of another
// anchor's, keeping only maximal lineages so the same lab work is never
// reported twice. Anchors with identical non-empty ancestry are
// duplicates of one another; only the one with the lowest id survives.
// Anchors with empty ancestry always survive.
//
// The surviving set depends only on the subset relation, never on input
// order. Input order is preserved among survivors.
func Reduce(anchors []Anchor) []Anchor {
	out := make([]Anchor, 0, len(anchors))
	for _, a := range anchors {
		if len(a.Ancestry) == 0 || !subsumed(a, anchors) {
			out = append(out, a)
		}
	}
	return out
}

// subsumed reports whether some other anchor strictly contains a's
// ancestry, or carries the same ancestry under a lower id.
func subsumed(a Anchor, anchors []Anchor) bool {
	for _, b := range anchors {
		if b.ID == a.ID || !subset(a.Ancestry, b.Ancestry) {
			continue
		}
		if len(b.Ancestry) > len(a.Ancestry) {
			return true
		}
		// Equal sets: deterministic tie-break on anchor id.
		if b.ID < a.ID {
			return true
		}
	}
	return false
}

// subset reports whether a ⊆ b.
func subset(a, b map[string]bool) bool {
	if len(a) > len(b) {
		return false
	}
	for id := range a {
		if !b[id] {
			return false
		}
	}
	return true
}
