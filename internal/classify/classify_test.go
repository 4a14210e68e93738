// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"testing"

	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/catalog"
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/pkg/types"
)

// testCatalog holds one process type id per category, enough to exercise
// every routing branch.
func testCatalog() *catalog.Catalog {
	return catalog.New(map[catalog.Category][]string{
		catalog.PrePrepStart:         {"74"},
		catalog.PrepStart:            {"10"},
		catalog.PrepEnd:              {"111"},
		catalog.LibVal:               {"62"},
		catalog.LibValFinishedLib:    {"20"},
		catalog.AgrLibVal:            {"8"},
		catalog.InitialQC:            {"63"},
		catalog.InitialQCFinishedLib: {"24"},
		catalog.AgrInitQC:            {"7"},
		catalog.Workset:              {"204"},
		catalog.Pooling:              {"42"},
		catalog.SeqStart:             {"23"},
		catalog.DilStart:             {"39"},
		catalog.Sequencing:           {"38"},
		catalog.Demultiplex:          {"13"},
		catalog.Caliper:              {"20"},
	}, []string{"46"})
}

func node(id, typeID, date, in, out string) *types.ProcessNode {
	return &types.ProcessNode{
		ID:             id,
		TypeID:         typeID,
		DateRun:        date,
		InputArtifact:  in,
		OutputArtifact: out,
	}
}

// history chains the artifacts in order and attaches each node to the
// step of its input artifact.
func history(artifacts []string, nodes ...*types.ProcessNode) *types.ProvenanceHistory {
	h := &types.ProvenanceHistory{
		SampleName: "P123_101",
		Artifacts:  artifacts,
		Steps:      make(map[string]map[string]*types.ProcessNode),
	}
	for _, art := range artifacts {
		h.Steps[art] = make(map[string]*types.ProcessNode)
	}
	for _, n := range nodes {
		h.Steps[n.InputArtifact][n.ID] = n
	}
	return h
}

func TestClassifyEmptyHistory(t *testing.T) {
	cl := New(testCatalog())

	c := cl.Classify(&types.ProvenanceHistory{SampleName: "P123_101"}, false)

	if c.Representative(StepPrepStart) != nil {
		t.Error("empty history resolved a prep start")
	}
	if got := c.Date(StepValEnd); got != "" {
		t.Errorf("empty history yielded date %q", got)
	}
	if len(c.Nodes(StepSequencing)) != 0 {
		t.Error("empty history yielded sequencing nodes")
	}
}

func TestClassifyNormalBranch(t *testing.T) {
	cl := New(testCatalog())
	h := history([]string{"a1", "a2", "a3"},
		node("24-100", "63", "2024-01-02", "a1", ""),
		node("24-101", "7", "2024-01-03", "a1", ""),
		node("24-110", "10", "2024-01-10", "a2", "a3"),
		node("24-111", "111", "2024-01-12", "a2", "a3"),
		node("24-120", "62", "2024-01-14", "a3", ""),
		node("24-121", "8", "2024-01-15", "a3", ""),
	)

	c := cl.Classify(h, false)

	if got := c.Date(StepInitialQCStart); got != "2024-01-02" {
		t.Errorf("initial QC start = %q", got)
	}
	if got := c.Date(StepInitialQCEnd); got != "2024-01-03" {
		t.Errorf("initial QC end = %q", got)
	}
	if got := c.Date(StepPrepStart); got != "2024-01-10" {
		t.Errorf("prep start = %q", got)
	}
	// Validation routes to the ordinary roles because a prep end was seen.
	if got := c.Date(StepValStart); got != "2024-01-14" {
		t.Errorf("validation start = %q", got)
	}
	if got := c.Date(StepValEnd); got != "2024-01-15" {
		t.Errorf("validation end = %q", got)
	}
	if len(c.Nodes(StepPrePrepValStart)) != 0 {
		t.Error("normal branch produced pre-prep validation")
	}
}

func TestClassifyValidationNeedsPrepEnd(t *testing.T) {
	cl := New(testCatalog())
	// Library validation types present but no prep end anywhere: the
	// matches must not be routed to any validation role.
	h := history([]string{"a1"},
		node("24-120", "62", "2024-01-14", "a1", ""),
		node("24-121", "8", "2024-01-15", "a1", ""),
	)

	c := cl.Classify(h, false)

	if len(c.Nodes(StepValStart)) != 0 || len(c.Nodes(StepValEnd)) != 0 {
		t.Error("validation routed without a prep end")
	}
	if len(c.Nodes(StepPrePrepValStart)) != 0 {
		t.Error("pre-prep validation routed without a pre-prep start")
	}
}

func TestClassifyPrePrepBranch(t *testing.T) {
	cl := New(testCatalog())
	h := history([]string{"a1", "a2", "a3", "a4"},
		node("24-50", "74", "2024-02-01", "a1", "a2"),
		node("24-60", "62", "2024-02-03", "a2", ""),
		node("24-61", "8", "2024-02-04", "a2", ""),
		node("24-70", "111", "2024-02-08", "a3", "a4"),
		node("24-80", "62", "2024-02-10", "a4", ""),
		node("24-81", "8", "2024-02-11", "a4", ""),
	)

	c := cl.Classify(h, false)

	// Validation before the prep end is pre-prep validation.
	if got := c.Date(StepPrePrepValStart); got != "2024-02-03" {
		t.Errorf("pre-prep validation start = %q", got)
	}
	if got := c.Date(StepPrePrepValEnd); got != "2024-02-04" {
		t.Errorf("pre-prep validation end = %q", got)
	}
	// Validation after the prep end is ordinary validation.
	if got := c.Date(StepValStart); got != "2024-02-10" {
		t.Errorf("validation start = %q", got)
	}
	if got := c.Date(StepValEnd); got != "2024-02-11" {
		t.Errorf("validation end = %q", got)
	}
	if got := c.Date(StepPrePrepStart); got != "2024-02-01" {
		t.Errorf("pre-prep start = %q", got)
	}
}

func TestClassifyFinishedLibrary(t *testing.T) {
	cl := New(testCatalog())
	h := history([]string{"a1"},
		node("24-90", "24", "2024-03-01", "a1", ""),
		node("24-91", "20", "2024-03-02", "a1", ""),
		node("24-92", "8", "2024-03-03", "a1", ""),
	)

	c := cl.Classify(h, true)

	if got := c.Date(StepInitialQCStart); got != "2024-03-01" {
		t.Errorf("finished-lib initial QC start = %q", got)
	}
	if got := c.Date(StepValStart); got != "2024-03-02" {
		t.Errorf("finished-lib validation start = %q", got)
	}
	if got := c.Date(StepValEnd); got != "2024-03-03" {
		t.Errorf("finished-lib validation end = %q", got)
	}
	// For finished libraries the same aggregate serves as initial QC end.
	if got := c.Date(StepInitialQCEnd); got != "2024-03-03" {
		t.Errorf("finished-lib initial QC end = %q", got)
	}
}

func TestClassifyFirstSeenStepsWin(t *testing.T) {
	cl := New(testCatalog())
	h := history([]string{"a1", "a2"},
		node("24-200", "39", "2024-04-01", "a1", "a2"),
		node("24-201", "23", "2024-04-02", "a1", "a2"),
		node("24-210", "39", "2024-05-01", "a2", "a3"),
		node("24-211", "23", "2024-05-02", "a2", "a3"),
	)

	c := cl.Classify(h, false)

	if got := c.Date(StepDilutionStart); got != "2024-04-01" {
		t.Errorf("dilution start = %q, want first occurrence", got)
	}
	if got := c.Date(StepSeqStart); got != "2024-04-02" {
		t.Errorf("sequencing start = %q, want first occurrence", got)
	}
	if len(c.Nodes(StepDilutionStart)) != 1 {
		t.Errorf("dilution bucket holds %d nodes, want 1", len(c.Nodes(StepDilutionStart)))
	}
}

func TestClassifyResolvesFirstAndLast(t *testing.T) {
	cl := New(testCatalog())
	h := history([]string{"a1", "a2"},
		node("24-300", "10", "2024-06-01", "a1", "x1"),
		node("24-301", "111", "2024-06-02", "a1", "x2"),
		node("24-310", "10", "2024-06-10", "a2", "x3"),
		node("24-311", "111", "2024-06-12", "a2", "x4"),
		node("24-320", "38", "2024-06-20", "a2", ""),
		node("24-321", "38", "2024-06-25", "a2", ""),
	)

	c := cl.Classify(h, false)

	if got := c.Date(StepPrepStart); got != "2024-06-01" {
		t.Errorf("prep start resolved to %q, want first", got)
	}
	if got := c.Date(StepPrepEnd); got != "2024-06-12" {
		t.Errorf("prep end resolved to %q, want last", got)
	}
	if got := c.Representative(StepSequencing).ID; got != "24-321" {
		t.Errorf("sequencing resolved to %s, want last by id order", got)
	}
}

func TestClassifyRequiresOutputForStarts(t *testing.T) {
	cl := New(testCatalog())
	h := history([]string{"a1"},
		node("24-400", "10", "2024-07-01", "a1", ""),
	)

	c := cl.Classify(h, false)

	if len(c.Nodes(StepPrepStart)) != 0 {
		t.Error("prep start without output artifact was classified")
	}
}

func TestClassifyIdempotent(t *testing.T) {
	cl := New(testCatalog())
	h := history([]string{"a1", "a2"},
		node("24-500", "10", "2024-08-01", "a1", "x1"),
		node("24-501", "111", "2024-08-02", "a1", "x2"),
		node("24-510", "62", "2024-08-03", "a2", ""),
		node("24-511", "8", "2024-08-04", "a2", ""),
	)

	first := cl.Classify(h, false)
	second := cl.Classify(h, false)

	for _, step := range []Step{StepPrepStart, StepPrepEnd, StepValStart, StepValEnd} {
		a, b := first.Representative(step), second.Representative(step)
		switch {
		case a == nil && b == nil:
		case a == nil || b == nil || a.ID != b.ID:
			t.Errorf("step %s resolved differently across runs", step)
		}
	}
}

func TestAncestrySet(t *testing.T) {
	cl := New(testCatalog())
	h := history([]string{"a1", "a2"},
		node("24-600", "8", "2024-09-01", "a1", ""),
		node("24-601", "62", "2024-09-01", "a1", ""),
		node("24-610", "8", "2024-09-05", "a2", ""),
	)

	set := cl.AncestrySet(h)

	if len(set) != 2 || !set["24-600"] || !set["24-610"] {
		t.Errorf("ancestry set = %v, want the two aggregate ids", set)
	}
}
