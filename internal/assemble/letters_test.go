// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import "testing"

func TestAssignLettersSinglePrep(t *testing.T) {
	p := &PrepRecord{Key: "24-1"}

	got := AssignLetters([]*PrepRecord{p})

	if len(got) != 1 || got["A"] != p {
		t.Errorf("single prep not labeled A: %v", got)
	}
}

func TestAssignLettersByDate(t *testing.T) {
	early := &PrepRecord{Key: "24-9", PrepStartDate: "2024-01-05"}
	late := &PrepRecord{Key: "24-1", PrepStartDate: "2024-03-01"}

	got := AssignLetters([]*PrepRecord{late, early})

	if got["A"] != early || got["B"] != late {
		t.Errorf("preps not ordered by start date: A=%v B=%v", got["A"].Key, got["B"].Key)
	}
}

func TestAssignLettersPrefersPrePrepDate(t *testing.T) {
	prePrep := &PrepRecord{Key: "24-1", PrePrepStartDate: "2024-01-01", PrepStartDate: "2024-05-01"}
	plain := &PrepRecord{Key: "24-2", PrepStartDate: "2024-02-01"}

	got := AssignLetters([]*PrepRecord{plain, prePrep})

	if got["A"] != prePrep {
		t.Errorf("pre-prep start date not used for ordering: A=%v", got["A"].Key)
	}
}

func TestAssignLettersStableOnTies(t *testing.T) {
	first := &PrepRecord{Key: "24-1", PrepStartDate: "2024-01-05"}
	second := &PrepRecord{Key: "24-2", PrepStartDate: "2024-01-05"}

	got := AssignLetters([]*PrepRecord{first, second})

	if got["A"] != first || got["B"] != second {
		t.Errorf("tied preps reordered: A=%v B=%v", got["A"].Key, got["B"].Key)
	}
}

func TestAssignLettersMissingDatesSortFirst(t *testing.T) {
	undated := &PrepRecord{Key: "24-1"}
	dated := &PrepRecord{Key: "24-2", PrepStartDate: "2024-01-05"}

	got := AssignLetters([]*PrepRecord{dated, undated})

	if got["A"] != undated || got["B"] != dated {
		t.Errorf("undated prep not first: A=%v B=%v", got["A"].Key, got["B"].Key)
	}
}

func TestAssignLettersEmpty(t *testing.T) {
	if got := AssignLetters(nil); len(got) != 0 {
		t.Errorf("empty input produced labels: %v", got)
	}
}
