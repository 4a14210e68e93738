// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"sort"

	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/catalog"
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/classify"
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/pkg/types"
)

// ArtifactPair is one input/output artifact pair of an aggregate process
// for a particular sample.
type ArtifactPair struct {
	In  string
	Out string
}

// RunGroup describes one aggregate process (library validation QC,
// demultiplexing or sequencing) and the samples that went through it.
type RunGroup struct {
	// ID is the process id.
	ID string

	// TypeName is the process type name.
	TypeName string

	// StartDate is the date the process was run.
	StartDate string

	// Samples maps sample name to the artifact pairs the process handled
	// for that sample.
	Samples map[string][]ArtifactPair
}

// samplePromoted lists the sample UDFs promoted to top-level document
// fields; everything else lands under details.
var samplePromoted = []string{
	"customer_name",
	"reads_requested_(millions)",
	"sample_type",
	"status_(manual)",
}

// SampleAssembler builds the per-sample document subtree. One assembler
// serves a whole project: it carries the project-level run groups and
// flags, and is driven once per sample. Assemblers hold no cross-sample
// state, so samples could be processed in any order or in parallel.
type SampleAssembler struct {
	Catalog    *catalog.Catalog
	Classifier *classify.Classifier
	Source     Source
	Resolver   HistoryResolver

	// Application and FinishedLib are the project-level application
	// string and finished-library flag.
	Application string
	FinishedLib bool

	// LibValQCs holds the project's aggregate library-validation
	// processes; their artifacts anchor prep classification.
	LibValQCs map[string]*RunGroup

	// Runs holds the processes run metrics are derived from: the
	// demultiplexing processes when any exist, else the sequencing
	// processes.
	Runs map[string]*RunGroup

	// InitQCs holds the aggregate initial-QC processes anchoring the
	// initial_qc subtree.
	InitQCs map[string]*RunGroup

	// Metrics optionally resolves stored sample-run-metrics ids.
	Metrics MetricsLookup
}

// Build assembles the document subtree for one sample.
func (a *SampleAssembler) Build(s *types.Sample) map[string]any {
	doc := make(map[string]any)
	doc["scilife_name"] = s.Name
	if art, ok := a.Source.Artifact(s.InitialArtifact); ok {
		put(doc, "initial_plate_id", art.Container)
		put(doc, "well_location", art.Well)
	}
	top, details := udfSplit(s.UDF, samplePromoted)
	putAll(doc, top)
	put(doc, "details", details)

	var histories []*types.ProvenanceHistory

	preps, ordered := a.buildPreps(s, &histories)
	if len(ordered) > 0 {
		a.attachRunMetrics(s, preps, &histories)
		letters := AssignLetters(ordered)
		libraryPrep := make(map[string]any, len(letters))
		for letter, p := range letters {
			libraryPrep[letter] = p.ToDoc()
		}
		doc["library_prep"] = libraryPrep
	}

	if anchor, ok := a.initialQCAnchor(s.Name); ok {
		h := a.Resolver.Resolve(s.Name, anchor)
		histories = append(histories, h)
		cls := a.Classifier.Classify(h, a.FinishedLib)
		put(doc, "initial_qc", BuildInitialQC(cls, a.Source, s.Name).ToDoc())
	}

	initCat := catalog.InitialQC
	if a.FinishedLib {
		initCat = catalog.InitialQCFinishedLib
	}
	put(doc, "first_initial_qc_start_date", firstDate(a.Catalog, histories, initCat))
	put(doc, "first_prep_start_date", firstDate(a.Catalog, histories, catalog.PrepStart, catalog.PrePrepStart))

	return doc
}

// buildPreps classifies every surviving library-validation anchor and
// folds the results into one PrepRecord per identity key. The first
// history to introduce a key supplies the base fields; later histories
// only add validation rounds. Prep status, reagent label and barcode
// follow the very last validation round seen for the key.
func (a *SampleAssembler) buildPreps(s *types.Sample, histories *[]*types.ProvenanceHistory) (map[string]*PrepRecord, []*PrepRecord) {
	pa := &PrepAssembler{
		Source:      a.Source,
		SampleName:  s.Name,
		Application: a.Application,
		FinishedLib: a.FinishedLib,
	}

	var anchors []classify.Anchor
	anchorPairs := make(map[string][]ArtifactPair)
	for _, id := range groupIDs(a.LibValQCs) {
		pairs := a.LibValQCs[id].Samples[s.Name]
		if len(pairs) == 0 {
			continue
		}
		h := a.Resolver.Resolve(s.Name, pairs[0].In)
		*histories = append(*histories, h)
		anchors = append(anchors, classify.Anchor{
			ID:       id,
			History:  a.Classifier.Classify(h, a.FinishedLib),
			Ancestry: a.Classifier.AncestrySet(h),
		})
		anchorPairs[id] = pairs
	}

	preps := make(map[string]*PrepRecord)
	var ordered []*PrepRecord
	veryLastVal := make(map[string]string)

	for _, anchor := range classify.Reduce(anchors) {
		for _, pair := range anchorPairs[anchor.ID] {
			h := a.Resolver.Resolve(s.Name, pair.In)
			*histories = append(*histories, h)
			cls := a.Classifier.Classify(h, a.FinishedLib)
			p := pa.Build(cls)
			if p == nil {
				continue
			}

			rec, known := preps[p.Key]
			if !known {
				preps[p.Key] = p
				ordered = append(ordered, p)
				rec = p
			}
			for id, v := range p.PrePrepLibraryValidation {
				rec.PrePrepLibraryValidation[id] = v
			}
			if len(p.LibraryValidation) == 0 {
				continue
			}
			for id, v := range p.LibraryValidation {
				rec.LibraryValidation[id] = v
			}
			lastID := maxValidationID(p.LibraryValidation)
			if prev, seen := veryLastVal[p.Key]; !seen || lastID > prev {
				veryLastVal[p.Key] = lastID
				last := p.LibraryValidation[lastID]
				if last.PrepStatus != "" {
					rec.PrepStatus = last.PrepStatus
				}
				rec.ReagentLabel = a.reagentLabel(cls, last)
				rec.Barcode = a.Source.ReagentSequence(rec.ReagentLabel)
			}
		}
	}

	// Finished-library preps take their label from the submitted
	// artifact instead of the validation round.
	if p, ok := preps[FinishedKey]; ok {
		if art, found := a.Source.Artifact(s.InitialArtifact); found && len(art.ReagentLabels) > 0 {
			p.ReagentLabel = art.ReagentLabels[0]
			p.Barcode = a.Source.ReagentSequence(p.ReagentLabel)
		}
	}

	return preps, ordered
}

// reagentLabel resolves the prep's reagent label. A pooled sample takes
// the label from the input artifact of the first pooling step when that
// artifact carries exactly one label; otherwise the label comes from the
// last validation round, again only when unambiguous.
func (a *SampleAssembler) reagentLabel(cls *classify.Classified, last *ValidationRecord) string {
	if pool := cls.Representative(classify.StepPooling); pool != nil {
		if art, ok := a.Source.Artifact(pool.InputArtifact); ok && len(art.ReagentLabels) == 1 {
			return art.ReagentLabels[0]
		}
	}
	if len(last.ReagentLabels) == 1 {
		return last.ReagentLabels[0]
	}
	return ""
}

// attachRunMetrics classifies the history behind every run the sample
// took part in, synthesizes the run identifier and attaches the metric
// to the owning prep. Runs whose identifier cannot be synthesized are
// dropped whole; a partial key never reaches the document.
func (a *SampleAssembler) attachRunMetrics(s *types.Sample, preps map[string]*PrepRecord, histories *[]*types.ProvenanceHistory) {
	for _, id := range groupIDs(a.Runs) {
		run := a.Runs[id]
		for _, pair := range run.Samples[s.Name] {
			h := a.Resolver.Resolve(s.Name, pair.In)
			*histories = append(*histories, h)
			cls := a.Classifier.Classify(h, a.FinishedLib)

			key := ""
			switch {
			case a.FinishedLib:
				key = FinishedKey
			case cls.Representative(classify.StepPrePrepStart) != nil:
				key = cls.Representative(classify.StepPrePrepStart).ID
			case cls.Representative(classify.StepPrepStart) != nil:
				key = cls.Representative(classify.StepPrepStart).ID
			}
			prep, ok := preps[key]
			if key == "" || !ok || prep.ReagentLabel == "" {
				continue
			}

			lastSeq := cls.Representative(classify.StepSequencing)
			if lastSeq == nil {
				continue
			}
			seqArt, ok := a.Source.Artifact(lastSeq.InputArtifact)
			if !ok {
				continue
			}
			runID, ok := RunID(seqArt.Well, stringUDF(lastSeq.UDF, "Run ID"), prep.ReagentLabel, a.Catalog.SingleLane(lastSeq))
			if !ok {
				continue
			}

			m := &RunMetric{
				SequencingRunQCFinished: run.StartDate,
				SequencingFinishDate:    stringUDF(lastSeq.UDF, "Finish Date"),
				SeqQCFlag:               seqArt.QCFlag,
			}
			if dil := cls.Representative(classify.StepDilutionStart); dil != nil {
				m.DilutionAndPoolingStartDate = dil.DateRun
			}
			if ss := cls.Representative(classify.StepSeqStart); ss != nil {
				m.SequencingStartDate = ss.DateRun
			}
			if dem := cls.Representative(classify.StepDemultiplex); dem != nil {
				if art, found := a.Source.Artifact(dem.OutputArtifact); found {
					m.DemuxQCFlag = art.QCFlag
				}
			}
			if a.Metrics != nil {
				m.SampleRunMetricsID = a.Metrics.SampleRunID(runID)
			}
			prep.SampleRunMetrics[runID] = m
		}
	}
}

// initialQCAnchor returns the input artifact of the latest aggregate
// initial-QC process the sample went through.
func (a *SampleAssembler) initialQCAnchor(sampleName string) (string, bool) {
	ids := groupIDs(a.InitQCs)
	for i := len(ids) - 1; i >= 0; i-- {
		pairs := a.InitQCs[ids[i]].Samples[sampleName]
		if len(pairs) > 0 {
			return pairs[0].In, true
		}
	}
	return "", false
}

// firstDate returns the earliest run date of any process matching the
// categories across the given histories, or "".
func firstDate(cat *catalog.Catalog, histories []*types.ProvenanceHistory, cats ...catalog.Category) string {
	first := ""
	for _, h := range histories {
		if h.Empty() {
			continue
		}
		for _, art := range h.Artifacts {
			for _, node := range h.Steps[art] {
				if node.DateRun == "" {
					continue
				}
				for _, c := range cats {
					if cat.Matches(c, node) && (first == "" || node.DateRun < first) {
						first = node.DateRun
					}
				}
			}
		}
	}
	return first
}

// groupIDs returns the run group ids in ascending order.
func groupIDs(groups map[string]*RunGroup) []string {
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// maxValidationID returns the highest validation process id in the map.
func maxValidationID(vals map[string]*ValidationRecord) string {
	max := ""
	for id := range vals {
		if id > max {
			max = id
		}
	}
	return max
}
