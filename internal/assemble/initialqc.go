// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/classify"
)

// InitialQCRecord is the per-sample initial QC summary, anchored at the
// history of the latest aggregate initial-QC step.
type InitialQCRecord struct {
	StartDate       string
	FinishDate      string
	Initials        string
	InitialQCStatus string
	CaliperImage    string

	// UDF carries the reviewed artifact's fields.
	UDF map[string]any
}

// ToDoc renders the record with omission semantics.
func (r *InitialQCRecord) ToDoc() map[string]any {
	doc := make(map[string]any)
	putAll(doc, r.UDF)
	put(doc, "start_date", r.StartDate)
	put(doc, "finish_date", r.FinishDate)
	put(doc, "initials", r.Initials)
	put(doc, "initial_qc_status", r.InitialQCStatus)
	put(doc, "caliper_image", r.CaliperImage)
	return doc
}

// BuildInitialQC derives the initial QC record from a classified history
// anchored at the latest aggregate initial-QC artifact. The start date
// is the first initial-QC step seen; finish date, technician initials
// and status come from the last aggregate step and its input artifact;
// the caliper image from the latest caliper step in the history.
func BuildInitialQC(cls *classify.Classified, src Source, sampleName string) *InitialQCRecord {
	r := &InitialQCRecord{}
	if start := cls.Representative(classify.StepInitialQCStart); start != nil {
		r.StartDate = start.DateRun
	}
	if end := cls.Representative(classify.StepInitialQCEnd); end != nil {
		r.FinishDate = end.DateRun
		r.Initials = end.Technician
		if art, ok := src.Artifact(end.InputArtifact); ok {
			r.InitialQCStatus = art.QCFlag
			r.UDF = udfDoc(art.UDF)
		}
	}
	if caliper := cls.Representative(classify.StepCaliper); caliper != nil {
		r.CaliperImage = src.ResultFileURL(caliper.ID, sampleName)
	}
	return r
}
