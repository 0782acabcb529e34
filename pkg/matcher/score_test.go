package matcher

import (
	"math"
	"testing"

	"github.com/liliang-cn/bibmatch/internal/encoding"
	"github.com/liliang-cn/bibmatch/pkg/corpus"
	"github.com/liliang-cn/bibmatch/pkg/vectorize"
	"github.com/liliang-cn/bibmatch/pkg/vocab"
)

const epsilon = 1e-5

func pairs(values ...float32) []encoding.Pair {
	out := make([]encoding.Pair, 0, len(values))
	for i, v := range values {
		if v != 0 {
			out = append(out, encoding.Pair{Index: uint32(i), Value: v})
		}
	}
	return out
}

func TestDotProduct(t *testing.T) {
	a := pairs(1, 2, 0, 3)
	b := pairs(0, 2, 5, 3)
	// Overlapping indices 1 and 3: 2*2 + 3*3 = 13.
	if got := dotProduct(a, b); got != 13 {
		t.Errorf("dot product: expected 13, got %v", got)
	}
}

func TestDotProductDisjoint(t *testing.T) {
	a := []encoding.Pair{{Index: 0, Value: 1}, {Index: 2, Value: 1}}
	b := []encoding.Pair{{Index: 1, Value: 1}, {Index: 3, Value: 1}}
	if got := dotProduct(a, b); got != 0 {
		t.Errorf("disjoint dot product: expected 0, got %v", got)
	}
}

func TestCosineSimilarityBounds(t *testing.T) {
	vectors := [][]encoding.Pair{
		pairs(1, 2, 3),
		pairs(0, 1, 0, 4),
		pairs(2, 0, 0, 0, 5),
	}
	for i, a := range vectors {
		for j, b := range vectors {
			got := cosineSimilarity(a, selfNorm(a), b, selfNorm(b))
			if got < -epsilon || got > 1+epsilon {
				t.Errorf("cosine(%d,%d) out of range: %v", i, j, got)
			}
			if i == j && math.Abs(float64(got-1)) > epsilon {
				t.Errorf("cosine(%d,%d) should be 1, got %v", i, j, got)
			}
		}
	}
}

func TestCosineSimilarityEmpty(t *testing.T) {
	if got := cosineSimilarity(nil, 0, nil, 0); got != 0 {
		t.Errorf("empty cosine should be 0, got %v", got)
	}
}

func scoreVocab() *vocab.Vocab {
	b := vocab.NewBuilder("test")
	b.Add(&corpus.Record{ID: "1", Title: "abc", Author: "Smith", Location: "Uppsala", Year: "1900"})
	b.Add(&corpus.Record{ID: "2", Title: "def", Author: "Jones", Location: "Lund", Year: "1910"})
	return b.Finish()
}

func TestWeightedAveragedVectorEmptyDocument(t *testing.T) {
	v := scoreVocab()
	doc := vectorize.ProcessRecord(&corpus.Record{ID: "x"}, v)
	combined, err := weightedAveragedVector(&doc, DefaultWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(combined) != 0 {
		t.Errorf("all-empty document should give empty combined vector, got %v", combined)
	}
	if got := cosineSimilarity(combined, selfNorm(combined), combined, selfNorm(combined)); got != 0 {
		t.Errorf("empty self-similarity should be 0, got %v", got)
	}
}

func TestWeightedAveragedVectorIdenticalDocuments(t *testing.T) {
	v := scoreVocab()
	record := &corpus.Record{ID: "x", Title: "abc", Author: "Smith", Location: "Uppsala", Year: "1900"}
	doc1 := vectorize.ProcessRecord(record, v)
	doc2 := vectorize.ProcessRecord(record, v)
	w := DefaultWeights()
	c1, err := weightedAveragedVector(&doc1, w)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := weightedAveragedVector(&doc2, w)
	if err != nil {
		t.Fatal(err)
	}
	got := cosineSimilarity(c1, selfNorm(c1), c2, selfNorm(c2))
	if math.Abs(float64(got-1)) > epsilon {
		t.Errorf("identical documents should score 1, got %v", got)
	}
}

func TestWeightedAveragedVectorMissingWeight(t *testing.T) {
	v := scoreVocab()
	doc := vectorize.ProcessRecord(&corpus.Record{ID: "x", Title: "abc"}, v)
	_, err := weightedAveragedVector(&doc, Weights{"author": 1})
	if err == nil {
		t.Fatal("expected error for nonempty field missing from weights")
	}
}

func TestWeightedAveragedVectorSorted(t *testing.T) {
	v := scoreVocab()
	doc := vectorize.ProcessRecord(&corpus.Record{ID: "x", Title: "abc def", Author: "Jones", Year: "1910"}, v)
	combined, err := weightedAveragedVector(&doc, DefaultWeights())
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(combined); i++ {
		if combined[i].Index <= combined[i-1].Index {
			t.Fatalf("combined vector not strictly ascending: %v", combined)
		}
	}
}

func TestParallelRangeCoversAll(t *testing.T) {
	n := 1001
	seen := make([]bool, n)
	err := parallelRange(n, func(start, end int) error {
		for i := start; i < end; i++ {
			if seen[i] {
				t.Errorf("index %d visited twice", i)
			}
			seen[i] = true
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	for i, ok := range seen {
		if !ok {
			t.Fatalf("index %d never visited", i)
		}
	}
}
