// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import "strings"

// Barcode extracts the index barcode from a reagent label. Labels of the
// form "Index 7 (AGTC)" yield the parenthesized suffix; labels without
// one are returned as-is.
func Barcode(label string) string {
	if label == "" {
		return ""
	}
	if i := strings.Index(label, "("); i >= 0 {
		return strings.TrimSuffix(label[i+1:], ")")
	}
	return label
}

// RunID synthesizes the globally unique sample-run identifier
// LANE_DATE_FCID_BARCODE from the flow-cell well of the sequencing input
// artifact, the vendor "Run ID" field of the sequencing process, and the
// prep's reagent label. Single-lane platforms carry the lane in the
// second colon field of the well, multi-lane platforms in the first.
//
// Any missing or malformed part — empty Run ID, fewer than four
// underscore fields, no barcode, no lane field — yields ("", false).
// The caller drops the run; a partial key never reaches the document.
func RunID(well, vendorRunID, reagentLabel string, singleLane bool) (string, bool) {
	barcode := Barcode(reagentLabel)
	if barcode == "" {
		return "", false
	}

	laneField := 0
	if singleLane {
		laneField = 1
	}
	wells := strings.Split(well, ":")
	if laneField >= len(wells) || wells[laneField] == "" {
		return "", false
	}
	lane := wells[laneField]

	if vendorRunID == "" {
		return "", false
	}
	parts := strings.Split(vendorRunID, "_")
	if len(parts) < 4 || parts[0] == "" || parts[3] == "" {
		return "", false
	}

	return strings.Join([]string{lane, parts[0], parts[3], barcode}, "_"), true
}

// RunMetric is the per-run record attached to a prep, keyed by the
// synthesized run identifier.
type RunMetric struct {
	SampleRunMetricsID          string
	DilutionAndPoolingStartDate string
	SequencingStartDate         string
	SequencingRunQCFinished     string
	SequencingFinishDate        string
	DemuxQCFlag                 string
	SeqQCFlag                   string
}

// ToDoc renders the metric with omission semantics.
func (m *RunMetric) ToDoc() map[string]any {
	doc := make(map[string]any)
	put(doc, "sample_run_metrics_id", m.SampleRunMetricsID)
	// "dillution" matches the key historically stored in the documents.
	put(doc, "dillution_and_pooling_start_date", m.DilutionAndPoolingStartDate)
	put(doc, "sequencing_start_date", m.SequencingStartDate)
	put(doc, "sequencing_run_QC_finished", m.SequencingRunQCFinished)
	put(doc, "sequencing_finish_date", m.SequencingFinishDate)
	put(doc, "dem_qc_flag", m.DemuxQCFlag)
	put(doc, "seq_qc_flag", m.SeqQCFlag)
	return doc
}
