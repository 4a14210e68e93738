// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"strings"

	"github.com/NationalGenomicsInfrastructure/LIMS2DB/pkg/types"
)

// projectPromoted lists the project UDFs promoted to top-level fields.
var projectPromoted = []string{
	"application",
	"customer_project_reference",
	"delivery_type",
	"uppnex_id",
}

// ProjectInput bundles everything the project assembler needs beyond the
// sample assembler's own sources. The LIMS loader fills it in; tests
// construct it directly.
type ProjectInput struct {
	Project *types.Project

	// Samples lists the project's registered samples.
	Samples []*types.Sample

	// Summary holds the UDFs of the first project-summary process, nil
	// when none was run. SummaryCount carries the total number found so
	// the caller can warn about repeats.
	Summary      map[string]any
	SummaryCount int

	// Escalations lists the ids of steps with pending escalations.
	Escalations []string
}

// FinishedLibrary reports whether the project is a finished-library
// project: either the application says so outright or the library
// construction method names a user-supplied or in-house library.
func FinishedLibrary(application string, udf map[string]any) bool {
	if finishedApplications[application] {
		return true
	}
	method, _ := udf["Library construction method"].(string)
	return strings.Contains(method, "Library, By user") ||
		strings.Contains(method, "Library, In-house")
}

// ProjectAssembler builds the whole project document. It owns a
// SampleAssembler and drives it once per registered sample.
type ProjectAssembler struct {
	Samples *SampleAssembler
}

// Build assembles the full project document tree. The tree is built once
// per extraction pass and replaced wholesale; nothing mutates it
// afterwards except the merge against the stored copy.
func (a *ProjectAssembler) Build(in *ProjectInput) map[string]any {
	pj := in.Project
	doc := map[string]any{
		"source":       "lims",
		"entity_type":  "project_summary",
		"project_name": pj.Name,
		"project_id":   pj.ID,
	}
	put(doc, "open_date", pj.OpenDate)
	put(doc, "close_date", pj.CloseDate)
	put(doc, "contact", pj.ContactEmail)
	put(doc, "affiliation", pj.Affiliation)

	top, details := udfSplit(pj.UDF, projectPromoted)
	putAll(doc, top)
	put(doc, "details", details)

	application, _ := doc["application"].(string)
	finished := FinishedLibrary(application, pj.UDF)
	doc["isFinishedLib"] = finished

	put(doc, "project_summary", udfDoc(in.Summary))
	put(doc, "escalations", toAnySlice(in.Escalations))

	a.Samples.Application = application
	a.Samples.FinishedLib = finished

	doc["no_of_samples"] = len(in.Samples)
	samples := make(map[string]any, len(in.Samples))
	firstInitQC := ""
	for _, s := range in.Samples {
		sampleDoc := a.Samples.Build(s)
		samples[s.Name] = sampleDoc
		if qc, ok := sampleDoc["initial_qc"].(map[string]any); ok {
			if start, ok := qc["start_date"].(string); ok {
				if firstInitQC == "" || start < firstInitQC {
					firstInitQC = start
				}
			}
		}
	}
	doc["samples"] = samples
	put(doc, "first_initial_qc", firstInitQC)

	// Only closed projects report a sequencing-finished date: the
	// latest finish date across every run of every prep.
	if pj.CloseDate != "" {
		put(doc, "sequencing_finished", lastSequencingFinish(samples))
	}

	return doc
}

// lastSequencingFinish walks the assembled sample subtrees for the
// latest sequencing_finish_date.
func lastSequencingFinish(samples map[string]any) string {
	last := ""
	for _, sv := range samples {
		sample, ok := sv.(map[string]any)
		if !ok {
			continue
		}
		preps, ok := sample["library_prep"].(map[string]any)
		if !ok {
			continue
		}
		for _, pv := range preps {
			prep, ok := pv.(map[string]any)
			if !ok {
				continue
			}
			runs, ok := prep["sample_run_metrics"].(map[string]any)
			if !ok {
				continue
			}
			for _, rv := range runs {
				run, ok := rv.(map[string]any)
				if !ok {
					continue
				}
				if fin, ok := run["sequencing_finish_date"].(string); ok && fin > last {
					last = fin
				}
			}
		}
	}
	return last
}

func toAnySlice(in []string) []any {
	if len(in) == 0 {
		return nil
	}
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
