// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"testing"

	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/catalog"
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/classify"
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/provenance"
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/pkg/types"
)

// sampleFixture wires a full single-sample project: initial QC on the
// submitted artifact, one prep with a validation round, and one
// demultiplexed sequencing run.
//
//	init-1: initial QC (24-3) and aggregate initial QC (24-5)
//	a1 -> a2: prep start (24-10)        a2 -> a3: prep end (24-11)
//	a3: library validation (24-20) and aggregate validation (24-21)
//	a3 -> a4: dilution (24-30)          a4 -> a5: cluster gen (24-31)
//	a5: sequencing (24-32), demultiplexing (24-33)
func sampleFixture() (*SampleAssembler, *types.Sample) {
	cat := catalog.Default()
	nodes := []*types.ProcessNode{
		proc("24-3", "63", "2024-01-02", "init-1", ""),
		{ID: "24-5", TypeID: "7", DateRun: "2024-01-03", InputArtifact: "init-1", Technician: "EK"},
		proc("24-10", "10", "2024-01-10", "a1", "a2"),
		proc("24-11", "111", "2024-01-12", "a2", "a3"),
		proc("24-20", "62", "2024-01-14", "a3", ""),
		{ID: "24-21", TypeID: "8", DateRun: "2024-01-15", InputArtifact: "a3", Technician: "EK"},
		proc("24-30", "39", "2024-02-01", "a3", "a4"),
		proc("24-31", "23", "2024-02-02", "a4", "a5"),
		{
			ID: "24-32", TypeID: "38", DateRun: "2024-02-03", InputArtifact: "a5",
			UDF: map[string]any{
				"Run ID":      "150101_D00410_0139_ABC123CXX",
				"Finish Date": "2024-02-05",
			},
		},
		proc("24-33", "13", "2024-02-06", "a5", "d1"),
	}
	src := &fakeSource{
		artifacts: map[string]*types.Artifact{
			"init-1": {ID: "init-1", Container: "P1", Well: "A:1", QCFlag: "PASSED",
				Samples: []string{"P123_101"},
				UDF:     map[string]any{"Concentration": 80.0}},
			"a2": {ID: "a2", UDF: map[string]any{"Amount taken (ng)": 100.0}},
			"a3": {ID: "a3", Well: "B:2", QCFlag: "PASSED",
				Samples:       []string{"P123_101"},
				ReagentLabels: []string{"Index 5 (AGTC)"},
				UDF:           map[string]any{"Concentration": 12.0}},
			"a5": {ID: "a5", Well: "1:1", QCFlag: "PASSED", Samples: []string{"P123_101"}},
			"d1": {ID: "d1", QCFlag: "PASSED"},
		},
		seqs: map[string]string{"Index 5 (AGTC)": "AGTC"},
	}
	sa := &SampleAssembler{
		Catalog:    cat,
		Classifier: classify.New(cat),
		Source:     src,
		Resolver:   provenance.NewGraph(nodes),
		LibValQCs: map[string]*RunGroup{
			"24-21": {ID: "24-21", StartDate: "2024-01-15",
				Samples: map[string][]ArtifactPair{"P123_101": {{In: "a3"}}}},
		},
		Runs: map[string]*RunGroup{
			"24-33": {ID: "24-33", StartDate: "2024-02-06",
				Samples: map[string][]ArtifactPair{"P123_101": {{In: "a5", Out: "d1"}}}},
		},
		InitQCs: map[string]*RunGroup{
			"24-5": {ID: "24-5", StartDate: "2024-01-03",
				Samples: map[string][]ArtifactPair{"P123_101": {{In: "init-1"}}}},
		},
		Metrics: fakeMetrics{"1_150101_ABC123CXX_AGTC": "doc-789"},
	}
	sample := &types.Sample{
		ID: "ABC101", Name: "P123_101", InitialArtifact: "init-1",
		UDF: map[string]any{"Customer Name": "sample-1", "Tissue Type": "blood"},
	}
	return sa, sample
}

func TestSampleBuildFullDocument(t *testing.T) {
	sa, sample := sampleFixture()

	doc := sa.Build(sample)

	if doc["scilife_name"] != "P123_101" {
		t.Errorf("scilife_name = %v", doc["scilife_name"])
	}
	if doc["initial_plate_id"] != "P1" || doc["well_location"] != "A:1" {
		t.Errorf("initial artifact fields = %v / %v", doc["initial_plate_id"], doc["well_location"])
	}
	if doc["customer_name"] != "sample-1" {
		t.Errorf("promoted UDF missing: %v", doc)
	}
	details, _ := doc["details"].(map[string]any)
	if details["tissue_type"] == nil {
		t.Errorf("non-promoted UDF not under details: %v", details)
	}
	if doc["first_initial_qc_start_date"] != "2024-01-02" {
		t.Errorf("first_initial_qc_start_date = %v", doc["first_initial_qc_start_date"])
	}
	if doc["first_prep_start_date"] != "2024-01-10" {
		t.Errorf("first_prep_start_date = %v", doc["first_prep_start_date"])
	}
}

func TestSampleBuildLibraryPrep(t *testing.T) {
	sa, sample := sampleFixture()

	doc := sa.Build(sample)

	preps, ok := doc["library_prep"].(map[string]any)
	if !ok || len(preps) != 1 {
		t.Fatalf("library_prep = %v", doc["library_prep"])
	}
	prep, _ := preps["A"].(map[string]any)
	if prep == nil {
		t.Fatalf("single prep not labeled A: %v", preps)
	}

	if prep["prep_start_date"] != "2024-01-10" || prep["prep_finished_date"] != "2024-01-12" {
		t.Errorf("prep dates = %v / %v", prep["prep_start_date"], prep["prep_finished_date"])
	}
	if prep["prep_id"] != "24-11" {
		t.Errorf("prep_id = %v", prep["prep_id"])
	}
	if prep["reagent_label"] != "Index 5 (AGTC)" || prep["barcode"] != "AGTC" {
		t.Errorf("label/barcode = %v / %v", prep["reagent_label"], prep["barcode"])
	}
	if prep["prep_status"] != "PASSED" {
		t.Errorf("prep_status = %v", prep["prep_status"])
	}

	vals, _ := prep["library_validation"].(map[string]any)
	if vals["24-21"] == nil {
		t.Errorf("validation round missing: %v", vals)
	}
}

func TestSampleBuildRunMetrics(t *testing.T) {
	sa, sample := sampleFixture()

	doc := sa.Build(sample)

	prep := doc["library_prep"].(map[string]any)["A"].(map[string]any)
	runs, _ := prep["sample_run_metrics"].(map[string]any)
	run, _ := runs["1_150101_ABC123CXX_AGTC"].(map[string]any)
	if run == nil {
		t.Fatalf("run metric missing or misnamed: %v", runs)
	}

	if run["dillution_and_pooling_start_date"] != "2024-02-01" {
		t.Errorf("dilution date = %v", run["dillution_and_pooling_start_date"])
	}
	if run["sequencing_start_date"] != "2024-02-02" {
		t.Errorf("sequencing start = %v", run["sequencing_start_date"])
	}
	if run["sequencing_run_QC_finished"] != "2024-02-06" {
		t.Errorf("run QC finished = %v", run["sequencing_run_QC_finished"])
	}
	if run["sequencing_finish_date"] != "2024-02-05" {
		t.Errorf("finish date = %v", run["sequencing_finish_date"])
	}
	if run["dem_qc_flag"] != "PASSED" || run["seq_qc_flag"] != "PASSED" {
		t.Errorf("QC flags = %v / %v", run["dem_qc_flag"], run["seq_qc_flag"])
	}
	if run["sample_run_metrics_id"] != "doc-789" {
		t.Errorf("metric id = %v", run["sample_run_metrics_id"])
	}
}

func TestSampleBuildInitialQC(t *testing.T) {
	sa, sample := sampleFixture()

	doc := sa.Build(sample)

	qc, _ := doc["initial_qc"].(map[string]any)
	if qc == nil {
		t.Fatalf("initial_qc missing: %v", doc)
	}
	if qc["start_date"] != "2024-01-02" || qc["finish_date"] != "2024-01-03" {
		t.Errorf("initial QC dates = %v / %v", qc["start_date"], qc["finish_date"])
	}
	if qc["initials"] != "EK" {
		t.Errorf("initials = %v", qc["initials"])
	}
	if qc["initial_qc_status"] != "PASSED" {
		t.Errorf("status = %v", qc["initial_qc_status"])
	}
	if qc["concentration"] != 80.0 {
		t.Errorf("reviewed artifact UDF missing: %v", qc)
	}
}

func TestSampleBuildNoHistory(t *testing.T) {
	sa, _ := sampleFixture()
	stranger := &types.Sample{ID: "ABC999", Name: "P123_999", InitialArtifact: "missing"}

	doc := sa.Build(stranger)

	if doc["scilife_name"] != "P123_999" {
		t.Errorf("scilife_name = %v", doc["scilife_name"])
	}
	if _, ok := doc["library_prep"]; ok {
		t.Error("sample without histories produced preps")
	}
	if _, ok := doc["initial_qc"]; ok {
		t.Error("sample without histories produced initial QC")
	}
}

func TestSampleRunMetricDroppedWithoutRunID(t *testing.T) {
	sa, sample := sampleFixture()
	// Remove the vendor run id; the run key cannot be synthesized and the
	// whole metric must vanish rather than appear under a partial key.
	h := sa.Resolver.Resolve("P123_101", "a5")
	for _, n := range h.Steps["a5"] {
		if n.TypeID == "38" {
			delete(n.UDF, "Run ID")
		}
	}

	doc := sa.Build(sample)

	prep := doc["library_prep"].(map[string]any)["A"].(map[string]any)
	if _, ok := prep["sample_run_metrics"]; ok {
		t.Errorf("metric with unsynthesizable run id kept: %v", prep["sample_run_metrics"])
	}
}
