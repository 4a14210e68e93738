// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/pkg/types"
)

// fakeSource serves assembly lookups from maps. Anything not listed is
// absent, mirroring how the production source treats fetch failures.
type fakeSource struct {
	artifacts map[string]*types.Artifact
	outputs   map[string][]*types.Artifact
	files     map[string]string
	seqs      map[string]string
}

func (f *fakeSource) Artifact(id string) (*types.Artifact, bool) {
	a, ok := f.artifacts[id]
	return a, ok
}

func (f *fakeSource) ProcessOutputs(processID string) []*types.Artifact {
	return f.outputs[processID]
}

func (f *fakeSource) ResultFileURL(processID, sampleName string) string {
	return f.files[processID+"/"+sampleName]
}

func (f *fakeSource) ReagentSequence(label string) string {
	return f.seqs[label]
}

// fakeMetrics resolves run ids to stored metric document ids.
type fakeMetrics map[string]string

func (f fakeMetrics) SampleRunID(runID string) string {
	return f[runID]
}

func proc(id, typeID, date, in, out string) *types.ProcessNode {
	return &types.ProcessNode{
		ID:             id,
		TypeID:         typeID,
		DateRun:        date,
		InputArtifact:  in,
		OutputArtifact: out,
	}
}

// history builds a ProvenanceHistory from ordered artifacts and nodes
// keyed by their input artifact.
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
