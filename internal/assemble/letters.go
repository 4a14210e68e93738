// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import "sort"

// AssignLetters orders the sample's preps chronologically and labels
// them "A", "B", ... by ascending start date: the pre-prep start date
// when present, else the prep start date. The sort is stable, so preps
// with equal (or missing) dates keep their input order — the assembler
// appends preps in anchor encounter order, which makes the labels
// deterministic. A single prep is labeled "A" without any date
// comparison.
func AssignLetters(preps []*PrepRecord) map[string]*PrepRecord {
	out := make(map[string]*PrepRecord, len(preps))
	if len(preps) == 0 {
		return out
	}
	if len(preps) == 1 {
		out["A"] = preps[0]
		return out
	}

	ordered := make([]*PrepRecord, len(preps))
	copy(ordered, preps)
	sort.SliceStable(ordered, func(i, j int) bool {
		return letterDate(ordered[i]) < letterDate(ordered[j])
	})

	for i, p := range ordered {
		out[string(rune('A'+i))] = p
	}
	return out
}

func letterDate(p *PrepRecord) string {
	if p.PrePrepStartDate != "" {
		return p.PrePrepStartDate
	}
	return p.PrepStartDate
}
