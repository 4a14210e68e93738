// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/classify"
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/pkg/types"
)

// FinishedKey is the sentinel identity key for finished-library samples.
// All histories of such a sample collapse into this single prep.
const FinishedKey = "Finished"

// finishedApplications lists the application values that force the
// finished-library path regardless of the project flag.
var finishedApplications = map[string]bool{
	"Finished library":       true,
	"Amplicon with adaptors": true,
}

// ValidationRecord is one library validation round, built from one
// validation-end process and the artifact it reviewed. All fields are
// optional; ToDoc omits whatever is absent.
type ValidationRecord struct {
	StartDate     string
	FinishDate    string
	WellLocation  string
	PrepStatus    string
	ReagentLabels []string
	Initials      string
	CaliperImage  string

	// UDF carries the reviewed artifact's fields (concentration, conc
	// units, volume, size) with normalized keys.
	UDF map[string]any
}

// ToDoc renders the record with omission semantics. The artifact UDF
// "size_(bp)" is renamed to average_size_bp in the document.
func (v *ValidationRecord) ToDoc() map[string]any {
	doc := make(map[string]any)
	putAll(doc, v.UDF)
	if size, ok := doc["size_(bp)"]; ok {
		delete(doc, "size_(bp)")
		put(doc, "average_size_bp", size)
	}
	put(doc, "start_date", v.StartDate)
	put(doc, "finish_date", v.FinishDate)
	put(doc, "well_location", v.WellLocation)
	put(doc, "prep_status", v.PrepStatus)
	put(doc, "reagent_labels", v.ReagentLabels)
	put(doc, "initials", v.Initials)
	put(doc, "caliper_image", v.CaliperImage)
	return doc
}

// PrepRecord is one round of sample preparation. Key distinguishes preps
// of the same sample: the pre-prep start process id when the sample went
// through pre-prep, else the prep start process id, else FinishedKey.
type PrepRecord struct {
	Key string

	ReagentLabel string
	Barcode      string
	PrepStatus   string

	LibraryValidation        map[string]*ValidationRecord
	PrePrepLibraryValidation map[string]*ValidationRecord

	PrepStartDate    string
	PrepFinishedDate string
	PrepID           string
	WorksetSetup     string
	WorksetName      string
	PrePrepStartDate string

	// UDF carries the fields of the start step's output artifact
	// (e.g. amount taken).
	UDF map[string]any

	SampleRunMetrics map[string]*RunMetric
}

// ToDoc renders the prep with omission semantics.
func (p *PrepRecord) ToDoc() map[string]any {
	doc := make(map[string]any)
	putAll(doc, p.UDF)
	put(doc, "reagent_label", p.ReagentLabel)
	put(doc, "barcode", p.Barcode)
	put(doc, "prep_status", p.PrepStatus)
	put(doc, "prep_start_date", p.PrepStartDate)
	put(doc, "prep_finished_date", p.PrepFinishedDate)
	put(doc, "prep_id", p.PrepID)
	put(doc, "workset_setup", p.WorksetSetup)
	put(doc, "workset_name", p.WorksetName)
	put(doc, "pre_prep_start_date", p.PrePrepStartDate)
	if len(p.LibraryValidation) > 0 {
		vals := make(map[string]any, len(p.LibraryValidation))
		for id, v := range p.LibraryValidation {
			vals[id] = v.ToDoc()
		}
		doc["library_validation"] = vals
	}
	if len(p.PrePrepLibraryValidation) > 0 {
		vals := make(map[string]any, len(p.PrePrepLibraryValidation))
		for id, v := range p.PrePrepLibraryValidation {
			vals[id] = v.ToDoc()
		}
		doc["pre_prep_library_validation"] = vals
	}
	if len(p.SampleRunMetrics) > 0 {
		runs := make(map[string]any, len(p.SampleRunMetrics))
		for id, r := range p.SampleRunMetrics {
			runs[id] = r.ToDoc()
		}
		doc["sample_run_metrics"] = runs
	}
	return doc
}

// PrepAssembler builds PrepRecords for one sample.
type PrepAssembler struct {
	Source      Source
	SampleName  string
	Application string
	FinishedLib bool
}

// Build turns one classified history into a PrepRecord. For finished or
// amplicon libraries the record carries only the sentinel key and its
// validations; prep dates stay empty. Otherwise dates and ids come from
// the resolved prep-start and prep-end representatives, the workset name
// from the workset output artifact bearing the sample's name, and the
// pre-prep start — when present — takes precedence as identity key.
//
// Build returns nil when no identity key can be derived: a history with
// neither a start step nor the finished-library shortcut describes no
// prep.
func (a *PrepAssembler) Build(cls *classify.Classified) *PrepRecord {
	p := &PrepRecord{
		LibraryValidation:        make(map[string]*ValidationRecord),
		PrePrepLibraryValidation: make(map[string]*ValidationRecord),
		SampleRunMetrics:         make(map[string]*RunMetric),
	}

	if finishedApplications[a.Application] || a.FinishedLib {
		p.Key = FinishedKey
	} else {
		prepStart := cls.Representative(classify.StepPrepStart)
		if prepStart != nil {
			p.PrepStartDate = prepStart.DateRun
		}
		if prepEnd := cls.Representative(classify.StepPrepEnd); prepEnd != nil {
			p.PrepFinishedDate = prepEnd.DateRun
			p.PrepID = prepEnd.ID
		}
		if ws := cls.Representative(classify.StepWorkset); ws != nil {
			p.WorksetSetup = ws.ID
			for _, out := range a.Source.ProcessOutputs(ws.ID) {
				if out.Name == a.SampleName {
					p.WorksetName = out.Container
					break
				}
			}
		}
		if prePrep := cls.Representative(classify.StepPrePrepStart); prePrep != nil {
			p.PrePrepStartDate = prePrep.DateRun
			p.Key = prePrep.ID
			if art, ok := a.Source.Artifact(prePrep.OutputArtifact); ok {
				p.UDF = udfDoc(art.UDF)
			}
		} else if prepStart != nil {
			p.Key = prepStart.ID
			if art, ok := a.Source.Artifact(prepStart.OutputArtifact); ok {
				p.UDF = udfDoc(art.UDF)
			}
		}
	}

	if cls.Representative(classify.StepValEnd) != nil {
		p.LibraryValidation = a.validations(
			cls.Nodes(classify.StepValEnd),
			cls.Representative(classify.StepValStart),
			cls.Representative(classify.StepCaliper),
		)
	}
	if cls.Representative(classify.StepPrePrepValEnd) != nil {
		p.PrePrepLibraryValidation = a.validations(
			cls.Nodes(classify.StepPrePrepValEnd),
			cls.Representative(classify.StepPrePrepValStart),
			nil,
		)
	}

	if p.Key == "" {
		return nil
	}
	return p
}

// validations builds one freshly allocated ValidationRecord per
// validation-end node. Every record carries the single shared start date
// of the whole validation round. The caliper image is attached only when
// the caliper step ran at or after the validation start — an earlier
// caliper image belongs to some other QC round.
func (a *PrepAssembler) validations(ends []*types.ProcessNode, start, caliper *types.ProcessNode) map[string]*ValidationRecord {
	startDate := ""
	if start != nil {
		startDate = start.DateRun
	}

	out := make(map[string]*ValidationRecord, len(ends))
	for _, end := range ends {
		v := &ValidationRecord{
			StartDate:  startDate,
			FinishDate: end.DateRun,
			Initials:   end.Technician,
		}
		if art, ok := a.Source.Artifact(end.InputArtifact); ok {
			v.WellLocation = art.Well
			v.PrepStatus = art.QCFlag
			v.ReagentLabels = art.ReagentLabels
			v.UDF = udfDoc(art.UDF)
		}
		if caliper != nil && start != nil && caliper.DateRun != "" && caliper.DateRun >= start.DateRun {
			v.CaliperImage = a.Source.ResultFileURL(caliper.ID, a.SampleName)
		}
		out[end.ID] = v
	}
	return out
}
