// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lims

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/assemble"
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/catalog"
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/provenance"
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/pkg/types"
)

// Loader fetches everything one project's extraction pass needs and
// shapes it for the assemblers.
type Loader struct {
	Client  *Client
	Catalog *catalog.Catalog
	Log     *zap.Logger
}

// ProjectData is the loaded, indexed input for one project.
type ProjectData struct {
	Input    *assemble.ProjectInput
	Source   assemble.Source
	Resolver assemble.HistoryResolver

	LibValQCs map[string]*assemble.RunGroup
	Runs      map[string]*assemble.RunGroup
	InitQCs   map[string]*assemble.RunGroup
}

// Load fetches the project, its samples and its full process list, and
// builds the provenance graph and run groups. Per-artifact lookups
// during assembly go through the returned Source, which caches and
// treats fetch failures as absence.
func (l *Loader) Load(ctx context.Context, projectID string) (*ProjectData, error) {
	pj, err := l.Client.Project(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading project %s: %w", projectID, err)
	}
	samples, err := l.Client.Samples(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading samples for %s: %w", projectID, err)
	}
	procs, err := l.Client.Processes(ctx, pj.Name, nil)
	if err != nil {
		return nil, fmt.Errorf("loading processes for %s: %w", projectID, err)
	}

	src := &source{ctx: ctx, client: l.Client, log: l.Log,
		artifacts:   make(map[string]*types.Artifact),
		outputs:     make(map[string][]*types.Artifact),
		resultFiles: make(map[string]string),
		sequences:   make(map[string]string),
	}

	nodes := flatten(procs)
	graph := provenance.NewGraph(nodes)

	data := &ProjectData{
		Source:    src,
		Resolver:  graph,
		LibValQCs: l.runGroups(src, procs, catalog.AgrLibVal),
		InitQCs:   l.runGroups(src, procs, catalog.AgrInitQC),
	}

	// Run metrics follow the demultiplexing processes when any exist,
	// else the sequencing processes directly.
	data.Runs = l.runGroups(src, procs, catalog.Demultiplex)
	if len(data.Runs) == 0 {
		data.Runs = l.runGroups(src, procs, catalog.Sequencing)
	}

	input := &assemble.ProjectInput{Project: pj, Samples: samples}
	for _, p := range procs {
		if l.Catalog.MatchesType(catalog.Summary, p.TypeID) || l.Catalog.MatchesType(catalog.Summary, p.TypeName) {
			if input.SummaryCount == 0 {
				input.Summary = p.UDFs
			}
			input.SummaryCount++
		}
	}
	if input.SummaryCount > 1 {
		l.Log.Warn("project summary process run more than once",
			zap.String("project", pj.Name), zap.Int("count", input.SummaryCount))
	}

	escalations, err := l.Client.PendingEscalations(ctx, pj.Name)
	if err != nil {
		l.Log.Warn("could not fetch escalations", zap.String("project", pj.Name), zap.Error(err))
	}
	input.Escalations = escalations

	data.Input = input
	return data, nil
}

// flatten expands each process record into one ProcessNode per
// input/output pair. Nodes of the same process share the process id, so
// identity is preserved wherever the history is keyed by id.
func flatten(procs []processRecord) []*types.ProcessNode {
	var nodes []*types.ProcessNode
	for _, p := range procs {
		if len(p.IOMaps) == 0 {
			nodes = append(nodes, newNode(p, ioPair{}))
			continue
		}
		for _, io := range p.IOMaps {
			nodes = append(nodes, newNode(p, io))
		}
	}
	return nodes
}

func newNode(p processRecord, io ioPair) *types.ProcessNode {
	return &types.ProcessNode{
		ID:             p.ID,
		TypeID:         p.TypeID,
		TypeName:       p.TypeName,
		Name:           p.Name,
		DateRun:        p.DateRun,
		InputArtifact:  io.Input,
		OutputArtifact: io.Output,
		Technician:     p.Technician,
		UDF:            p.UDFs,
	}
}

// runGroups indexes the processes matching a category by id, with the
// per-sample artifact pairs resolved through the source.
func (l *Loader) runGroups(src *source, procs []processRecord, cat catalog.Category) map[string]*assemble.RunGroup {
	groups := make(map[string]*assemble.RunGroup)
	for _, p := range procs {
		if !l.Catalog.MatchesType(cat, p.TypeID) && !l.Catalog.MatchesType(cat, p.TypeName) {
			continue
		}
		g := &assemble.RunGroup{
			ID:        p.ID,
			TypeName:  p.TypeName,
			StartDate: p.DateRun,
			Samples:   make(map[string][]assemble.ArtifactPair),
		}
		seen := make(map[string]bool)
		for _, io := range p.IOMaps {
			if io.Input == "" || seen[io.Input] {
				continue
			}
			seen[io.Input] = true
			art, ok := src.Artifact(io.Input)
			if !ok {
				continue
			}
			for _, name := range art.Samples {
				g.Samples[name] = append(g.Samples[name], assemble.ArtifactPair{In: io.Input, Out: io.Output})
			}
		}
		groups[p.ID] = g
	}
	return groups
}

// source adapts the client to assemble.Source: context captured, results
// cached, failures logged and mapped to absence so a single missing
// artifact never aborts a project.
type source struct {
	ctx    context.Context
	client *Client
	log    *zap.Logger

	artifacts   map[string]*types.Artifact
	outputs     map[string][]*types.Artifact
	resultFiles map[string]string
	sequences   map[string]string
}

func (s *source) Artifact(id string) (*types.Artifact, bool) {
	if id == "" {
		return nil, false
	}
	if art, ok := s.artifacts[id]; ok {
		return art, art != nil
	}
	art, err := s.client.Artifact(s.ctx, id)
	if err != nil {
		s.log.Debug("artifact fetch failed", zap.String("artifact", id), zap.Error(err))
		art = nil
	}
	s.artifacts[id] = art
	return art, art != nil
}

func (s *source) ProcessOutputs(processID string) []*types.Artifact {
	if outs, ok := s.outputs[processID]; ok {
		return outs
	}
	outs, err := s.client.ProcessOutputs(s.ctx, processID)
	if err != nil {
		s.log.Debug("process outputs fetch failed", zap.String("process", processID), zap.Error(err))
		outs = nil
	}
	s.outputs[processID] = outs
	return outs
}

func (s *source) ResultFileURL(processID, sampleName string) string {
	key := processID + "/" + sampleName
	if u, ok := s.resultFiles[key]; ok {
		return u
	}
	u, err := s.client.ResultFileURL(s.ctx, processID, sampleName)
	if err != nil {
		s.log.Debug("result file fetch failed", zap.String("process", processID), zap.Error(err))
		u = ""
	}
	s.resultFiles[key] = u
	return u
}

func (s *source) ReagentSequence(label string) string {
	if label == "" {
		return ""
	}
	if seq, ok := s.sequences[label]; ok {
		return seq
	}
	seq, err := s.client.ReagentSequence(s.ctx, label)
	if err != nil {
		s.log.Debug("reagent type fetch failed", zap.String("label", label), zap.Error(err))
		seq = ""
	}
	s.sequences[label] = seq
	return seq
}
