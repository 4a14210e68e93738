// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provenance reconstructs the ordered process history of one
// sample from an explicit adjacency map. The resolver is a pure function
// over the map — no object graph, no back-pointers, no network — so the
// classifier stays independent of whichever client fetched the data.
package provenance

import (
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/pkg/types"
)

// Graph is the project-wide adjacency the resolver walks: for every
// artifact id, the processes that consumed it. It is built once per
// project from the full process list and shared across samples.
type Graph struct {
	// Consumers maps artifact id to consuming processes.
	Consumers map[string][]*types.ProcessNode

	// producers maps artifact id to the process that produced it,
	// derived lazily from Consumers.
	producers map[string]*types.ProcessNode
}

// NewGraph builds a Graph from the processes of one project. Each
// process is registered under its input artifact; the producer index is
// derived from output artifacts.
func NewGraph(processes []*types.ProcessNode) *Graph {
	g := &Graph{
		Consumers: make(map[string][]*types.ProcessNode),
		producers: make(map[string]*types.ProcessNode),
	}
	for _, p := range processes {
		if p.InputArtifact != "" {
			g.Consumers[p.InputArtifact] = append(g.Consumers[p.InputArtifact], p)
		}
		if p.OutputArtifact != "" {
			// First registered producer wins; a replicate producing the
			// same artifact id would be a LIMS data error.
			if _, ok := g.producers[p.OutputArtifact]; !ok {
				g.producers[p.OutputArtifact] = p
			}
		}
	}
	return g
}

// Resolve walks backwards from the anchor input artifact to the earliest
// artifact in the lineage and returns the history ordered earliest to
// latest. For every artifact on the chain the history records all
// processes that consumed it, keyed by process id.
//
// A broken chain truncates the walk; an unknown anchor yields an empty
// history. Neither is an error: a sample that never entered the pipeline
// simply has no classification.
func (g *Graph) Resolve(sampleName, inputArtifact string) *types.ProvenanceHistory {
	h := &types.ProvenanceHistory{
		SampleName: sampleName,
		Steps:      make(map[string]map[string]*types.ProcessNode),
	}

	// Collect latest-first, then reverse.
	var chain []string
	seen := make(map[string]bool)
	for art := inputArtifact; art != "" && !seen[art]; {
		seen[art] = true
		if len(g.Consumers[art]) == 0 {
			// No recorded steps for this artifact: unknown anchor or a
			// chain broken by missing process data.
			break
		}
		chain = append(chain, art)
		producer := g.producers[art]
		if producer == nil {
			break
		}
		art = producer.InputArtifact
	}

	for i := len(chain) - 1; i >= 0; i-- {
		art := chain[i]
		steps := make(map[string]*types.ProcessNode, len(g.Consumers[art]))
		for _, p := range g.Consumers[art] {
			steps[p.ID] = p
		}
		h.Artifacts = append(h.Artifacts, art)
		h.Steps[art] = steps
	}
	return h
}
