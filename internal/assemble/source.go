// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble builds the nested status documents for a project from
// classified provenance histories: preparation records with their
// validation rounds, sequencing run metrics, initial QC, and the sample
// and project trees that contain them.
//
// The package is purely in-memory. Every lookup that would touch the
// LIMS goes through the Source interface, and every absence is expressed
// by omitting the field from the produced document, never by a null or
// an error.
package assemble

import (
	"strings"

	"github.com/NationalGenomicsInfrastructure/LIMS2DB/pkg/types"
)

// Source resolves the secondary lookups assembly needs beyond the
// provenance history itself. Implementations must return absence (false,
// nil, "") for anything they cannot resolve; assembly treats absence as
// missing data, never as failure.
type Source interface {
	// Artifact returns the artifact with the given id.
	Artifact(id string) (*types.Artifact, bool)

	// ProcessOutputs returns the output artifacts of a process.
	ProcessOutputs(processID string) []*types.Artifact

	// ResultFileURL returns the content location of the result file a
	// process produced for the named sample (the caliper image), or "".
	ResultFileURL(processID, sampleName string) string

	// ReagentSequence returns the index sequence registered for a
	// reagent label name, or "".
	ReagentSequence(label string) string
}

// HistoryResolver reconstructs the provenance history for one
// (sample, anchor input artifact) pair.
type HistoryResolver interface {
	Resolve(sampleName, inputArtifact string) *types.ProvenanceHistory
}

// MetricsLookup maps a synthesized run identifier to the id of the
// stored sample-run-metrics document, when one exists.
type MetricsLookup interface {
	SampleRunID(runID string) string
}

// udfKey normalizes a LIMS UDF name to a document key: lowercase, dots
// stripped, spaces to underscores. "Conc. Units" becomes "conc_units",
// "Size (bp)" becomes "size_(bp)".
func udfKey(name string) string {
	k := strings.ToLower(name)
	k = strings.ReplaceAll(k, ".", "")
	k = strings.ReplaceAll(k, " ", "_")
	return k
}

// udfDoc converts a UDF map to a document fragment with normalized keys.
func udfDoc(udf map[string]any) map[string]any {
	if len(udf) == 0 {
		return nil
	}
	out := make(map[string]any, len(udf))
	for name, v := range udf {
		out[udfKey(name)] = v
	}
	return out
}

// udfSplit partitions a UDF map into promoted top-level fields and the
// remaining details, both with normalized keys. promoted lists
// normalized key names.
func udfSplit(udf map[string]any, promoted []string) (top, details map[string]any) {
	isPromoted := make(map[string]bool, len(promoted))
	for _, k := range promoted {
		isPromoted[k] = true
	}
	top = make(map[string]any)
	details = make(map[string]any)
	for name, v := range udf {
		k := udfKey(name)
		if isPromoted[k] {
			top[k] = v
		} else {
			details[k] = v
		}
	}
	return top, details
}

// put sets key in doc only when the value carries data. Empty strings,
// nils and empty containers are omitted: omission is the persisted
// absence marker.
func put(doc map[string]any, key string, v any) {
	switch x := v.(type) {
	case nil:
		return
	case string:
		if x == "" {
			return
		}
	case map[string]any:
		if len(x) == 0 {
			return
		}
	case []string:
		if len(x) == 0 {
			return
		}
	case []any:
		if len(x) == 0 {
			return
		}
	}
	doc[key] = v
}

// putAll copies every entry of src into doc, skipping empties.
func putAll(doc, src map[string]any) {
	for k, v := range src {
		put(doc, k, v)
	}
}

// stringUDF fetches a UDF by its LIMS name and returns it as a string,
// or "" when absent or of another kind.
func stringUDF(udf map[string]any, name string) string {
	if s, ok := udf[name].(string); ok {
		return s
	}
	return ""
}
