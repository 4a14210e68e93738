// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for the lims2db pipeline:
// provenance records fetched from the LIMS, the entities they describe,
// and the configuration structs consumed by every stage.
package types

// ProcessNode is one recorded lab-process execution. Nodes are immutable
// once fetched; identity is the LIMS process id.
//
// Dates are ISO-8601 day strings ("2006-01-02"). The empty string marks an
// absent date: lexicographic order on the non-empty values is
// chronological order, which is the same convention the persisted
// documents use.
type ProcessNode struct {
	// ID is the LIMS process id, e.g. "24-102294".
	ID string

	// TypeID and TypeName identify the process type. Category catalogs
	// may list either form, so both are carried.
	TypeID   string
	TypeName string

	// Name is the display name of this particular run of the process.
	Name string

	// DateRun is the date the step was run, or "" when not recorded.
	DateRun string

	// InputArtifact and OutputArtifact are the artifact ids this node
	// consumed and produced. OutputArtifact may be "" for steps that
	// only measure.
	InputArtifact  string
	OutputArtifact string

	// Technician holds the initials of the researcher who ran the step.
	Technician string

	// UDF holds the user-defined fields of the process. Values are
	// restricted to string, float64 and bool; dates appear as ISO
	// strings. A missing key means the field was never set.
	UDF map[string]any
}

// Artifact is a physical or derived sample unit referenced by process
// nodes. Artifacts are resolved on demand through an artifact source;
// the core never fetches them itself.
type Artifact struct {
	// ID is the LIMS artifact id, e.g. "2-11896".
	ID string

	// Name is the artifact name. For analytes this is the sample name.
	Name string

	// QCFlag is the review flag set on the artifact ("PASSED",
	// "FAILED", or "" when unreviewed).
	QCFlag string

	// Container is the name of the plate or flow cell holding the
	// artifact; Well is the position within it, e.g. "B:2".
	Container string
	Well      string

	// ReagentLabels lists the index labels attached to the artifact.
	ReagentLabels []string

	// Samples lists the names of the samples represented in the
	// artifact. Pooled artifacts carry several.
	Samples []string

	// UDF holds the user-defined fields of the artifact, same value
	// kinds as ProcessNode.UDF.
	UDF map[string]any
}

// ProvenanceHistory is the resolved process history for one
// (sample, terminal artifact) pair: the chain of input artifacts from
// earliest to latest, and for each artifact every process that consumed
// it. It is produced by the provenance resolver and only ever read by
// the classifier.
type ProvenanceHistory struct {
	// SampleName is the sample the history belongs to.
	SampleName string

	// Artifacts lists the artifact ids along the chain, earliest first.
	Artifacts []string

	// Steps maps artifact id to the processes that consumed that
	// artifact, keyed by process id.
	Steps map[string]map[string]*ProcessNode
}

// Empty reports whether the history contains no artifacts. A sample that
// never entered the pipeline yields an empty history, not an error.
func (h *ProvenanceHistory) Empty() bool {
	return h == nil || len(h.Artifacts) == 0
}

// Project holds the project-level fields read from the LIMS.
type Project struct {
	ID   string
	Name string

	// OpenDate and CloseDate are ISO day strings, "" when unset.
	OpenDate  string
	CloseDate string

	// ContactEmail is the project researcher's email.
	ContactEmail string

	// Affiliation is the researcher's lab affiliation, "" when unset.
	Affiliation string

	// UDF holds the project-level user-defined fields.
	UDF map[string]any
}

// Sample holds the sample-level fields read from the LIMS.
type Sample struct {
	ID   string
	Name string

	// InitialArtifact is the id of the artifact representing the sample
	// as submitted, before any processing.
	InitialArtifact string

	// UDF holds the sample-level user-defined fields.
	UDF map[string]any
}
