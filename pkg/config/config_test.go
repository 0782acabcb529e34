package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyOptions(t *testing.T) {
	o := NewOptions()
	for _, opt := range []string{
		"force-year",
		"year-tolerance=3",
		"year-tolerance-penalty=0.1",
		"similarity-threshold=0.5",
		"z-threshold=1.0",
		"overlap-adjustment=10",
		"jaro-winkler-adjustment",
		"jaro-winkler-truncate=both",
		"json-schema-version=2",
		"dataset-dir=elsewhere",
	} {
		if err := o.Apply(opt); err != nil {
			t.Fatalf("Apply(%q) failed: %v", opt, err)
		}
	}
	if !o.ForceYear {
		t.Error("force-year not set")
	}
	if o.YearTolerance == nil || *o.YearTolerance != 3 {
		t.Error("year-tolerance not parsed")
	}
	if o.YearTolerancePenalty != 0.1 {
		t.Errorf("year-tolerance-penalty: got %v", o.YearTolerancePenalty)
	}
	if o.SimilarityThreshold == nil || *o.SimilarityThreshold != 0.5 {
		t.Error("similarity-threshold not parsed")
	}
	if o.OverlapAdjustment == nil || *o.OverlapAdjustment != 10 {
		t.Error("overlap-adjustment not parsed")
	}
	if o.JaroWinklerTruncate != TruncateBoth {
		t.Errorf("truncate mode: got %v", o.JaroWinklerTruncate)
	}
	if o.JSONSchemaVersion != 2 {
		t.Errorf("schema version: got %d", o.JSONSchemaVersion)
	}
	if o.DatasetDir != "elsewhere" {
		t.Errorf("dataset-dir: got %q", o.DatasetDir)
	}
}

func TestApplyUnknownOption(t *testing.T) {
	o := NewOptions()
	if err := o.Apply("no-such-option"); err == nil {
		t.Error("expected error for unknown option")
	}
}

func TestDefaults(t *testing.T) {
	o := NewOptions()
	if o.YearTolerancePenalty != DefaultYearTolerancePenalty {
		t.Errorf("default penalty: got %v", o.YearTolerancePenalty)
	}
	if o.JSONSchemaVersion != 1 {
		t.Errorf("default schema version: got %d", o.JSONSchemaVersion)
	}
	if o.DatasetDir != "data" {
		t.Errorf("default dataset dir: got %q", o.DatasetDir)
	}
}

func TestExcludeLists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exclude.txt")
	content := "# comment\nid-one\n\n  id-two  \n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	o := NewOptions()
	o.ExcludeFiles = []string{path}
	if err := o.LoadExcludeLists(); err != nil {
		t.Fatalf("LoadExcludeLists failed: %v", err)
	}
	if !o.ExcludedIDs["id-one"] || !o.ExcludedIDs["id-two"] {
		t.Errorf("expected both ids excluded, got %v", o.ExcludedIDs)
	}
	if len(o.ExcludedIDs) != 2 {
		t.Errorf("expected 2 ids, got %d", len(o.ExcludedIDs))
	}
}

func TestLoadOptionsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"matching_config": {
			"options": {
				"force_year": true,
				"year_tolerance": 2,
				"similarity_threshold": 0.4,
				"json_schema_version": 2
			},
			"weights": {"author": 1.0, "title": 2.0, "location": 1.0, "year": 1.0, "all": 0.0}
		}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	o := NewOptions()
	if err := LoadOptionsFromFile(path, &o); err != nil {
		t.Fatalf("LoadOptionsFromFile failed: %v", err)
	}
	if !o.ForceYear {
		t.Error("force_year not loaded")
	}
	if o.YearTolerance == nil || *o.YearTolerance != 2 {
		t.Error("year_tolerance not loaded")
	}
	if o.SimilarityThreshold == nil || *o.SimilarityThreshold != 0.4 {
		t.Error("similarity_threshold not loaded")
	}
	if o.JSONSchemaVersion != 2 {
		t.Error("json_schema_version not loaded")
	}
	if o.WeightsFile == "" {
		t.Fatal("weights file not materialized")
	}
	defer func() { _ = os.Remove(o.WeightsFile) }()
	data, err := os.ReadFile(o.WeightsFile)
	if err != nil {
		t.Fatalf("weights file unreadable: %v", err)
	}
	if len(data) == 0 {
		t.Error("weights file empty")
	}
}

func TestArtifactDefaults(t *testing.T) {
	c := Config{Options: NewOptions()}
	c.Options.OutputSourceName = "libris"
	c.ApplyArtifactDefaults()
	if c.VocabFile != filepath.Join("data", "libris-vocab.bin") {
		t.Errorf("vocab default: got %q", c.VocabFile)
	}
	if !c.DefaultArgs["vocab-file"] || !c.DefaultArgs["dataset-vector-file"] || !c.DefaultArgs["source-data-file"] {
		t.Errorf("defaults not recorded: %v", c.DefaultArgs)
	}

	c2 := Config{Options: NewOptions(), VocabFile: "custom.bin"}
	c2.Options.OutputSourceName = "libris"
	c2.ApplyArtifactDefaults()
	if c2.VocabFile != "custom.bin" {
		t.Errorf("explicit vocab path overwritten: %q", c2.VocabFile)
	}
	if c2.DefaultArgs["vocab-file"] {
		t.Error("explicit path marked as default")
	}
}
