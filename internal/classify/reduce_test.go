// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"testing"
)

func set(ids ...string) map[string]bool {
	s := make(map[string]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

func ids(anchors []Anchor) []string {
	out := make([]string, len(anchors))
	for i, a := range anchors {
		out[i] = a.ID
	}
	return out
}

func TestReduceDropsProperSubsets(t *testing.T) {
	anchors := []Anchor{
		{ID: "24-1", Ancestry: set("v1")},
		{ID: "24-2", Ancestry: set("v1", "v2")},
		{ID: "24-3", Ancestry: set("v3")},
	}

	got := ids(Reduce(anchors))

	want := []string{"24-2", "24-3"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("survivors = %v, want %v", got, want)
	}
}

func TestReduceEqualSetsKeepLowestID(t *testing.T) {
	anchors := []Anchor{
		{ID: "24-9", Ancestry: set("v1", "v2")},
		{ID: "24-2", Ancestry: set("v1", "v2")},
	}

	got := ids(Reduce(anchors))

	if len(got) != 1 || got[0] != "24-2" {
		t.Errorf("survivors = %v, want [24-2]", got)
	}
}

func TestReduceEmptyAncestryAlwaysSurvives(t *testing.T) {
	anchors := []Anchor{
		{ID: "24-1", Ancestry: set()},
		{ID: "24-2", Ancestry: set()},
		{ID: "24-3", Ancestry: set("v1")},
	}

	got := ids(Reduce(anchors))

	if len(got) != 3 {
		t.Errorf("survivors = %v, want all three", got)
	}
}

func TestReduceOrderIndependent(t *testing.T) {
	a := Anchor{ID: "24-1", Ancestry: set("v1")}
	b := Anchor{ID: "24-2", Ancestry: set("v1", "v2")}
	c := Anchor{ID: "24-3", Ancestry: set("v1", "v2", "v3")}

	forward := ids(Reduce([]Anchor{a, b, c}))
	backward := ids(Reduce([]Anchor{c, b, a}))

	if len(forward) != 1 || forward[0] != "24-3" {
		t.Errorf("forward survivors = %v, want [24-3]", forward)
	}
	if len(backward) != 1 || backward[0] != "24-3" {
		t.Errorf("backward survivors = %v, want [24-3]", backward)
	}
}

func TestReduceEmptyInput(t *testing.T) {
	if got := Reduce(nil); len(got) != 0 {
		t.Errorf("Reduce(nil) = %v, want empty", got)
	}
}
