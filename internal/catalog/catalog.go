// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog defines the process category catalog: the mapping from
// laboratory step categories to the LIMS process types that implement
// them. The catalog is plain configuration — it is constructed once at
// startup and injected into the classifier, never read from package
// state, so tests and protocol revisions can run with their own tables.
package catalog

import (
	"fmt"
	"os"
	"sort"

	"go.yaml.in/yaml/v3"

	"github.com/NationalGenomicsInfrastructure/LIMS2DB/pkg/types"
)

// Category names one group of process types. The groups define, or are
// used to define, a key in the persisted project documents.
type Category string

const (
	PrePrepStart         Category = "PREPREPSTART"
	PrepStart            Category = "PREPSTART"
	PrepEnd              Category = "PREPEND"
	LibVal               Category = "LIBVAL"
	LibValFinishedLib    Category = "LIBVALFINISHEDLIB"
	AgrLibVal            Category = "AGRLIBVAL"
	InitialQC            Category = "INITIALQC"
	InitialQCFinishedLib Category = "INITIALQCFINISHEDLIB"
	AgrInitQC            Category = "AGRINITQC"
	Workset              Category = "WORKSET"
	Pooling              Category = "POOLING"
	SeqStart             Category = "SEQSTART"
	DilStart             Category = "DILSTART"
	Sequencing           Category = "SEQUENCING"
	Demultiplex          Category = "DEMULTIPLEX"
	Caliper              Category = "CALIPER"
	Summary              Category = "SUMMARY"
)

// Categories returns every known category in a stable order.
func Categories() []Category {
	return []Category{
		PrePrepStart, PrepStart, PrepEnd,
		LibVal, LibValFinishedLib, AgrLibVal,
		InitialQC, InitialQCFinishedLib, AgrInitQC,
		Workset, Pooling, SeqStart, DilStart,
		Sequencing, Demultiplex, Caliper, Summary,
	}
}

// Catalog maps each category to the set of process types belonging to
// it. Members may be listed by type id or by type name; Matches accepts
// either. A category with no members simply never matches — a documented
// gap, not an error.
type Catalog struct {
	members map[Category]map[string]bool

	// singleLane holds the process types of single-lane sequencing
	// platforms, whose flow-cell location strings carry the lane in the
	// second colon field instead of the first.
	singleLane map[string]bool
}

// New builds a catalog from explicit member lists.
func New(members map[Category][]string, singleLane []string) *Catalog {
	c := &Catalog{
		members:    make(map[Category]map[string]bool, len(members)),
		singleLane: make(map[string]bool, len(singleLane)),
	}
	for cat, list := range members {
		set := make(map[string]bool, len(list))
		for _, m := range list {
			set[m] = true
		}
		c.members[cat] = set
	}
	for _, m := range singleLane {
		c.singleLane[m] = true
	}
	return c
}

// Matches reports whether the node's process type belongs to the
// category, by type id or type name.
func (c *Catalog) Matches(cat Category, node *types.ProcessNode) bool {
	set := c.members[cat]
	if set == nil {
		return false
	}
	return set[node.TypeID] || set[node.TypeName]
}

// MatchesType is Matches for callers that only hold a type id or name.
func (c *Catalog) MatchesType(cat Category, idOrName string) bool {
	return c.members[cat][idOrName]
}

// Members returns the member list of a category, sorted.
func (c *Catalog) Members(cat Category) []string {
	out := make([]string, 0, len(c.members[cat]))
	for m := range c.members[cat] {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// SingleLane reports whether the given sequencing process type runs on a
// single-lane platform.
func (c *Catalog) SingleLane(node *types.ProcessNode) bool {
	return c.singleLane[node.TypeID] || c.singleLane[node.TypeName]
}

// catalogFile is the YAML shape of an external catalog.
type catalogFile struct {
	Categories          map[string][]string `yaml:"categories"`
	SingleLanePlatforms []string            `yaml:"single_lane_platforms"`
}

// Load reads a catalog from a YAML file. Unknown category names are
// rejected so that a typo does not silently classify nothing.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	known := make(map[Category]bool)
	for _, cat := range Categories() {
		known[cat] = true
	}

	members := make(map[Category][]string, len(file.Categories))
	for name, list := range file.Categories {
		cat := Category(name)
		if !known[cat] {
			return nil, fmt.Errorf("catalog %s: unknown category %q", path, name)
		}
		members[cat] = list
	}
	return New(members, file.SingleLanePlatforms), nil
}

// Default returns the built-in catalog matching the production LIMS
// protocol set. Each member is listed under both its type id and its
// type name so that histories resolved from either representation
// classify the same way.
func Default() *Catalog {
	return New(map[Category][]string{
		PrePrepStart: {
			"74", "Shear DNA (SS XT) 4.0",
		},
		PrepStart: {
			"10", "Aliquot Libraries for Hybridization (SS XT)",
			"33", "Fragment DNA (TruSeq DNA) 4.0",
			"47", "mRNA Purification, Fragmentation & cDNA synthesis (TruSeq RNA) 4.0",
			"117", "Applications Generic Process",
		},
		PrepEnd: {
			"109", "CA Purification",
			"111", "Amplify Captured Libraries to Add Index Tags (SS XT) 4.0",
			"157", "Applications Finish Prep",
		},
		LibVal: {
			"62", "qPCR QC (Library Validation) 4.0",
			"64", "Quant-iT QC (Library Validation) 4.0",
			"67", "Qubit QC (Library Validation) 4.0",
		},
		LibValFinishedLib: {
			"20", "CaliperGX QC (DNA)",
			"62", "qPCR QC (Library Validation) 4.0",
			"64", "Quant-iT QC (Library Validation) 4.0",
			"67", "Qubit QC (Library Validation) 4.0",
		},
		AgrLibVal: {
			"8", "Aggregate QC (Library Validation) 4.0",
		},
		InitialQC: {
			"63", "Quant-iT QC (DNA) 4.0",
			"65", "Qubit QC (DNA) 4.0",
			"66", "Tecan Infinite 200 QC",
		},
		InitialQCFinishedLib: {
			"20", "CaliperGX QC (DNA)",
			"24", "Customer Gel QC",
		},
		AgrInitQC: {
			"7", "Aggregate QC (DNA) 4.0",
			"9", "Aggregate QC (RNA) 4.0",
		},
		Workset: {
			"204", "Setup Workset/Plate",
		},
		Pooling: {
			"42", "Library Pooling (Illumina SBS) 4.0",
			"43", "Library Pooling (MiSeq) 4.0",
			"58", "Pooling For Multiplexed Sequencing (SS XT) 4.0",
		},
		SeqStart: {
			"23", "Cluster Generation (Illumina SBS) 4.0",
			"26", "Denature, Dilute and Load Sample (MiSeq) 4.0",
		},
		DilStart: {
			"39", "Library Normalization (Illumina SBS) 4.0",
			"40", "Library Normalization (MiSeq) 4.0",
		},
		Sequencing: {
			"38", "Illumina Sequencing (Illumina SBS) 4.0",
			"46", "MiSeq Run (MiSeq) 4.0",
		},
		Demultiplex: {
			"13", "Bcl Conversion & Demultiplexing (Illumina SBS) 4.0",
		},
		Caliper: {
			"20", "CaliperGX QC (DNA)",
			"116", "CaliperGX QC (RNA)",
		},
		Summary: {
			"356", "Project Summary 1.3",
		},
	}, []string{
		"46", "MiSeq Run (MiSeq) 4.0",
	})
}
