// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify buckets the process nodes of one sample's provenance
// history into laboratory step roles and resolves each role to a single
// representative node. Classification is a pure function of the history,
// the finished-library flag and the injected catalog: running it twice
// yields the same result, and an empty history yields an empty
// classification rather than an error.
package classify

import (
	"sort"

	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/catalog"
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/pkg/types"
)

// Step names one role in the classified view of a history. Roles are not
// one-to-one with catalog categories: the validation roles route LIBVAL
// and AGRLIBVAL matches differently depending on whether the sample went
// through pre-prep or is a finished library.
type Step string

const (
	StepPrePrepStart    Step = "pre_prep_start"
	StepPrePrepValStart Step = "pre_prep_validation_start"
	StepPrePrepValEnd   Step = "pre_prep_validation_end"
	StepPrepStart       Step = "prep_start"
	StepPrepEnd         Step = "prep_end"
	StepValStart        Step = "validation_start"
	StepValEnd          Step = "validation_end"
	StepWorkset         Step = "workset"
	StepDilutionStart   Step = "dilution_start"
	StepSeqStart        Step = "sequencing_start"
	StepPooling         Step = "pooling"
	StepDemultiplex     Step = "demultiplex"
	StepSequencing      Step = "sequencing"
	StepCaliper         Step = "caliper_qc"
	StepInitialQCStart  Step = "initial_qc_start"
	StepInitialQCEnd    Step = "initial_qc_end"
)

// resolveLast lists the roles whose representative is the last node
// encountered in the walk. Every other role resolves to the first node.
// Nodes within one artifact step are visited in process-id order, so the
// choice is deterministic for any input.
var resolveLast = map[Step]bool{
	StepPrePrepValEnd: true,
	StepPrepEnd:       true,
	StepValEnd:        true,
	StepWorkset:       true,
	StepDemultiplex:   true,
	StepSequencing:    true,
	StepCaliper:       true,
	StepInitialQCEnd:  true,
}

// Classified is the categorized view of one provenance history.
type Classified struct {
	// FinishedLib records the flag the history was classified under.
	FinishedLib bool

	buckets  map[Step][]*types.ProcessNode
	resolved map[Step]*types.ProcessNode
}

// Nodes returns every node matched to the role, in encounter order. The
// returned slice is shared; callers must not modify it.
func (c *Classified) Nodes(step Step) []*types.ProcessNode {
	return c.buckets[step]
}

// Representative returns the resolved node for the role, or nil when the
// role matched nothing. The representative is always a member of
// Nodes(step).
func (c *Classified) Representative(step Step) *types.ProcessNode {
	return c.resolved[step]
}

// Date returns the run date of the role's representative, or "" when the
// role is unresolved or the representative has no date.
func (c *Classified) Date(step Step) string {
	if n := c.resolved[step]; n != nil {
		return n.DateRun
	}
	return ""
}

// Classifier walks provenance histories against one category catalog.
type Classifier struct {
	cat *catalog.Catalog
}

// New returns a Classifier using the given catalog.
func New(cat *catalog.Catalog) *Classifier {
	return &Classifier{cat: cat}
}

// Classify walks the history from earliest to latest artifact and
// buckets every process node into the roles it matches.
//
// The validation roles are routed by three mutually exclusive branches,
// evaluated per artifact step: once a pre-prep start has been seen and no
// prep end yet, LIBVAL/AGRLIBVAL matches accumulate as pre-prep
// validation; for finished libraries they accumulate as ordinary
// validation using the finished-library validation types; otherwise they
// accumulate as ordinary validation only after a prep end has been seen.
// The dilution-start and sequencing-start roles keep only the first
// artifact step that produced any match; all other roles accumulate
// across the whole walk.
func (cl *Classifier) Classify(h *types.ProvenanceHistory, finishedLib bool) *Classified {
	c := &Classified{
		FinishedLib: finishedLib,
		buckets:     make(map[Step][]*types.ProcessNode),
		resolved:    make(map[Step]*types.ProcessNode),
	}
	if h.Empty() {
		return c
	}

	initQC := catalog.InitialQC
	agrQC := catalog.AgrInitQC
	libVal := catalog.LibVal
	if finishedLib {
		initQC = catalog.InitialQCFinishedLib
		agrQC = catalog.AgrLibVal
		libVal = catalog.LibValFinishedLib
	}

	for _, artID := range h.Artifacts {
		nodes := orderedNodes(h.Steps[artID])

		cl.collect(c, StepInitialQCEnd, nodes, agrQC, false)
		cl.collect(c, StepInitialQCStart, nodes, initQC, false)
		cl.collect(c, StepPrePrepStart, nodes, catalog.PrePrepStart, true)

		switch {
		case len(c.buckets[StepPrePrepStart]) > 0 && len(c.buckets[StepPrepEnd]) == 0:
			cl.collect(c, StepPrePrepValStart, nodes, catalog.LibVal, false)
			cl.collect(c, StepPrePrepValEnd, nodes, catalog.AgrLibVal, false)
		case finishedLib:
			cl.collect(c, StepValStart, nodes, libVal, false)
			cl.collect(c, StepValEnd, nodes, catalog.AgrLibVal, false)
		case len(c.buckets[StepPrepEnd]) > 0:
			cl.collect(c, StepValStart, nodes, catalog.LibVal, false)
			cl.collect(c, StepValEnd, nodes, catalog.AgrLibVal, false)
		}

		cl.collect(c, StepPrepStart, nodes, catalog.PrepStart, true)
		cl.collect(c, StepPrepEnd, nodes, catalog.PrepEnd, true)
		cl.collect(c, StepWorkset, nodes, catalog.Workset, true)

		// First artifact step with a match wins; later steps are ignored.
		if len(c.buckets[StepSeqStart]) == 0 {
			cl.collect(c, StepSeqStart, nodes, catalog.SeqStart, true)
		}
		if len(c.buckets[StepDilutionStart]) == 0 {
			cl.collect(c, StepDilutionStart, nodes, catalog.DilStart, true)
		}

		cl.collect(c, StepPooling, nodes, catalog.Pooling, false)
		cl.collect(c, StepDemultiplex, nodes, catalog.Demultiplex, false)
		cl.collect(c, StepSequencing, nodes, catalog.Sequencing, false)
		cl.collect(c, StepCaliper, nodes, catalog.Caliper, false)
	}

	cl.resolve(c)
	return c
}

// collect appends every node matching cat to the role's bucket,
// optionally requiring an output artifact.
func (cl *Classifier) collect(c *Classified, step Step, nodes []*types.ProcessNode, cat catalog.Category, needOutput bool) {
	for _, node := range nodes {
		if needOutput && node.OutputArtifact == "" {
			continue
		}
		if cl.cat.Matches(cat, node) {
			c.buckets[step] = append(c.buckets[step], node)
		}
	}
}

// resolve reduces each bucket to its representative.
func (cl *Classifier) resolve(c *Classified) {
	for step, nodes := range c.buckets {
		if len(nodes) == 0 {
			continue
		}
		if resolveLast[step] {
			c.resolved[step] = nodes[len(nodes)-1]
		} else {
			c.resolved[step] = nodes[0]
		}
	}
}

// orderedNodes returns the processes of one artifact step sorted by
// process id. Map iteration order is unspecified, so the walk fixes its
// own encounter order to keep tie-breaks deterministic.
func orderedNodes(step map[string]*types.ProcessNode) []*types.ProcessNode {
	ids := make([]string, 0, len(step))
	for id := range step {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	nodes := make([]*types.ProcessNode, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, step[id])
	}
	return nodes
}

// AncestrySet returns the ids of every validation-end (AGRLIBVAL) typed
// process anywhere in the history. The top-level reducer uses these sets
// to drop anchors whose lab work is wholly contained in another anchor's.
func (cl *Classifier) AncestrySet(h *types.ProvenanceHistory) map[string]bool {
	set := make(map[string]bool)
	if h.Empty() {
		return set
	}
	for _, artID := range h.Artifacts {
		for id, node := range h.Steps[artID] {
			if cl.cat.Matches(catalog.AgrLibVal, node) {
				set[id] = true
			}
		}
	}
	return set
}
