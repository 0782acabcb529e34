package sourcedata

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func testData() *SourceData {
	return &SourceData{
		Source: "test",
		Records: map[string]SourceRecord{
			"a": {ID: "a", Title: "First title", Author: "Smith, John", Location: "Uppsala", Year: "1900"},
			"b": {ID: "b", Title: "Second title", Author: "", Location: "", Year: ""},
			"c": {ID: "c", Title: "Third", Author: "Jones", Location: "Lund", Year: "not-a-year"},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	sd := testData()
	path := filepath.Join(t.TempDir(), "test-source-data.bin")
	if err := sd.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Source != sd.Source {
		t.Errorf("source mismatch: %q vs %q", loaded.Source, sd.Source)
	}
	if len(loaded.Records) != len(sd.Records) {
		t.Fatalf("record count mismatch: %d vs %d", len(loaded.Records), len(sd.Records))
	}
	for id, r := range sd.Records {
		if loaded.Records[id] != r {
			t.Errorf("record %s mismatch: %v vs %v", id, loaded.Records[id], r)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.bin"))
	if err == nil {
		t.Fatal("expected error for missing artifact")
	}
}

func TestDumpSortedJSONL(t *testing.T) {
	sd := testData()
	var buf bytes.Buffer
	if err := sd.Dump(&buf); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, prefix := range []string{`{"id":"a"`, `{"id":"b"`, `{"id":"c"`} {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("line %d: expected prefix %s, got %s", i, prefix, lines[i])
		}
	}
}
