// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import "testing"

func TestBarcode(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Index 7 (AGTC)", "AGTC"},
		{"AGTC", "AGTC"},
		{"Dual (AGTC-TTGG)", "AGTC-TTGG"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Barcode(tt.label); got != tt.want {
			t.Errorf("Barcode(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestRunID(t *testing.T) {
	tests := []struct {
		name       string
		well       string
		vendorID   string
		label      string
		singleLane bool
		want       string
		ok         bool
	}{
		{
			name:     "multi lane",
			well:     "1:1",
			vendorID: "150101_D00410_0139_ABC123CXX",
			label:    "Index 5 (AGTC)",
			want:     "1_150101_ABC123CXX_AGTC",
			ok:       true,
		},
		{
			name:       "single lane platform takes second well field",
			well:       "A:1",
			vendorID:   "150101_M00485_0123_000000000-ABC12",
			label:      "Index 5 (AGTC)",
			singleLane: true,
			want:       "1_150101_000000000-ABC12_AGTC",
			ok:         true,
		},
		{
			name:     "raw barcode label",
			well:     "2:1",
			vendorID: "150101_D00410_0139_ABC123CXX",
			label:    "AGTC",
			want:     "2_150101_ABC123CXX_AGTC",
			ok:       true,
		},
		{
			name:     "missing fourth run id field",
			well:     "1:1",
			vendorID: "150101_D00410_0139",
			label:    "Index 5 (AGTC)",
		},
		{
			name:     "empty vendor run id",
			well:     "1:1",
			vendorID: "",
			label:    "Index 5 (AGTC)",
		},
		{
			name:     "missing reagent label",
			well:     "1:1",
			vendorID: "150101_D00410_0139_ABC123CXX",
			label:    "",
		},
		{
			name:       "well without lane field",
			well:       "1",
			vendorID:   "150101_D00410_0139_ABC123CXX",
			label:      "Index 5 (AGTC)",
			singleLane: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RunID(tt.well, tt.vendorID, tt.label, tt.singleLane)
			if ok != tt.ok || got != tt.want {
				t.Errorf("RunID(%q, %q, %q, %v) = (%q, %v), want (%q, %v)",
					tt.well, tt.vendorID, tt.label, tt.singleLane, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRunMetricToDocOmission(t *testing.T) {
	m := &RunMetric{
		DilutionAndPoolingStartDate: "2024-02-01",
		SequencingFinishDate:        "2024-02-05",
	}

	doc := m.ToDoc()

	if doc["dillution_and_pooling_start_date"] != "2024-02-01" {
		t.Errorf("dilution date missing: %v", doc)
	}
	if _, ok := doc["sample_run_metrics_id"]; ok {
		t.Error("absent metric id present in document")
	}
	if _, ok := doc["seq_qc_flag"]; ok {
		t.Error("absent QC flag present in document")
	}
}
