package vectorize

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/liliang-cn/bibmatch/pkg/corpus"
	"github.com/liliang-cn/bibmatch/pkg/vocab"
)

func testVocab() *vocab.Vocab {
	b := vocab.NewBuilder("test")
	b.Add(&corpus.Record{ID: "1", Title: "abc", Author: "Smith", Location: "Uppsala", Year: "1900"})
	b.Add(&corpus.Record{ID: "2", Title: "def", Author: "Jones", Location: "Lund", Year: "1910"})
	b.Add(&corpus.Record{ID: "3", Title: "abc def", Author: "Smith", Location: "Uppsala", Year: "1900"})
	return b.Finish()
}

func TestProcessRecordSortedNoDuplicates(t *testing.T) {
	v := testVocab()
	doc := ProcessRecord(&corpus.Record{ID: "1", Title: "abc def", Author: "Smith", Location: "Lund", Year: "1900"}, v)
	for field, pairs := range doc.Vectors {
		for i := 1; i < len(pairs); i++ {
			if pairs[i].Index <= pairs[i-1].Index {
				t.Errorf("field %s: pairs not strictly ascending at %d: %v", field, i, pairs)
			}
		}
		for _, p := range pairs {
			if p.Value == 0 {
				t.Errorf("field %s: zero entry emitted at index %d", field, p.Index)
			}
		}
	}
}

func TestProcessRecordYearVector(t *testing.T) {
	v := testVocab()
	doc := ProcessRecord(&corpus.Record{ID: "x", Year: "1910"}, v)
	pairs := doc.Vectors["year"]
	if len(pairs) != 1 {
		t.Fatalf("expected a single year pair, got %v", pairs)
	}
	info := v.Parts["year"].Tokens["1910"]
	if pairs[0].Index != info.Index {
		t.Errorf("year pair index: expected %d, got %d", info.Index, pairs[0].Index)
	}
	want := float32(1.0 * math.Log10(3.0/1.0))
	if pairs[0].Value != want {
		t.Errorf("year pair value: expected %v, got %v", want, pairs[0].Value)
	}
}

func TestUnknownTokensOmittedByZeroIDF(t *testing.T) {
	v := testVocab()
	// A title made of tokens the vocab never saw buckets everything to
	// index 0, whose idf is 0, so the emitted vector is empty.
	doc := ProcessRecord(&corpus.Record{ID: "x", Title: "qqqq"}, v)
	for _, p := range doc.Vectors["title"] {
		if p.Index == 0 {
			t.Errorf("unknown-token entry with zero idf should be omitted, got %v", p)
		}
	}
}

func TestEmptyFieldsEmptyVectors(t *testing.T) {
	v := testVocab()
	doc := ProcessRecord(&corpus.Record{ID: "x"}, v)
	if len(doc.Vectors["year"]) != 0 {
		t.Errorf("empty year should produce empty vector, got %v", doc.Vectors["year"])
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	v := testVocab()
	vectors := &Vectors{Source: "test", TotalDocs: 2}
	vectors.Documents = append(vectors.Documents,
		ProcessRecord(&corpus.Record{ID: "a", Title: "abc", Author: "Smith", Location: "Uppsala", Year: "1900"}, v),
		ProcessRecord(&corpus.Record{ID: "b", Title: "def", Author: "Jones", Location: "Lund", Year: "1910"}, v),
	)

	path := filepath.Join(t.TempDir(), "test-dataset-vectors.bin")
	if err := vectors.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Source != vectors.Source || loaded.TotalDocs != vectors.TotalDocs {
		t.Errorf("meta mismatch: %q/%d", loaded.Source, loaded.TotalDocs)
	}
	if len(loaded.Documents) != len(vectors.Documents) {
		t.Fatalf("document count mismatch: %d vs %d", len(loaded.Documents), len(vectors.Documents))
	}
	for i, doc := range vectors.Documents {
		got := loaded.Documents[i]
		if got.ID != doc.ID {
			t.Errorf("document %d id mismatch: %q vs %q", i, got.ID, doc.ID)
		}
		for field, pairs := range doc.Vectors {
			gotPairs := got.Vectors[field]
			if len(gotPairs) != len(pairs) {
				t.Fatalf("document %d field %s pair count mismatch", i, field)
			}
			for j := range pairs {
				if gotPairs[j] != pairs[j] {
					t.Errorf("document %d field %s pair %d mismatch: %v vs %v", i, field, j, gotPairs[j], pairs[j])
				}
			}
		}
	}
}
