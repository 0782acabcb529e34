package matcher

import (
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rs/zerolog/log"

	"github.com/liliang-cn/bibmatch/internal/encoding"
	"github.com/liliang-cn/bibmatch/pkg/config"
	"github.com/liliang-cn/bibmatch/pkg/vectorize"
	"github.com/liliang-cn/bibmatch/pkg/vocab"
)

// DatasetWeightedVector is one reference document's precomputed combined
// vector and its L2 norm.
type DatasetWeightedVector struct {
	ID     string
	Vector []encoding.Pair
	Norm   float32
}

// dotProduct merges two ascending-index sparse vectors with a two-pointer
// walk, accumulating the product of matching indices.
func dotProduct(a, b []encoding.Pair) float32 {
	var sum float32
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Index == b[j].Index:
			sum += a[i].Value * b[j].Value
			i++
			j++
		case a[i].Index < b[j].Index:
			i++
		default:
			j++
		}
	}
	return sum
}

// cosineSimilarity divides the dot product by the product of the two
// precomputed norms. Degenerate empty vectors score 0 rather than NaN.
func cosineSimilarity(a []encoding.Pair, aNorm float32, b []encoding.Pair, bNorm float32) float32 {
	denom := aNorm * bNorm
	if denom == 0 {
		return 0
	}
	return dotProduct(a, b) / denom
}

// weightedAveragedVector combines a document's per-field vectors: each
// nonempty field vector is scaled by its weight and summed, and the sum is
// divided by the number of fields that contributed. Empty fields are
// ignored entirely rather than treated as zero vectors, which would skew
// the average.
func weightedAveragedVector(doc *vectorize.Document, weights Weights) ([]encoding.Pair, error) {
	activeParts := 0
	accum := make(map[uint32]float32)
	for _, field := range vocab.Fields {
		vector := doc.Vectors[field]
		if len(vector) == 0 {
			continue
		}
		weight, ok := weights[field]
		if !ok {
			return nil, fmt.Errorf("weights are missing field %q which has a nonempty vector", field)
		}
		activeParts++
		for _, p := range vector {
			accum[p.Index] += p.Value * weight
		}
	}
	if activeParts == 0 {
		return nil, nil
	}
	combined := make([]encoding.Pair, 0, len(accum))
	for index, value := range accum {
		combined = append(combined, encoding.Pair{Index: index, Value: value / float32(activeParts)})
	}
	sort.Slice(combined, func(i, j int) bool { return combined[i].Index < combined[j].Index })
	return combined, nil
}

// selfNorm returns the L2 norm of a sparse vector.
func selfNorm(v []encoding.Pair) float32 {
	return float32(math.Sqrt(float64(dotProduct(v, v))))
}

// precalcWeightedVectors computes the combined vector and norm for every
// dataset document in parallel. The result slice preserves document order.
func precalcWeightedVectors(cfg *config.Config, vectors *vectorize.Vectors, weights Weights) ([]DatasetWeightedVector, error) {
	if cfg.Verbose {
		log.Info().Str("source", cfg.Source).Msg("calculating weighted average vectors")
	}
	result := make([]DatasetWeightedVector, len(vectors.Documents))
	err := parallelRange(len(vectors.Documents), func(start, end int) error {
		for i := start; i < end; i++ {
			doc := &vectors.Documents[i]
			combined, err := weightedAveragedVector(doc, weights)
			if err != nil {
				return err
			}
			result[i] = DatasetWeightedVector{
				ID:     doc.ID,
				Vector: combined,
				Norm:   selfNorm(combined),
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// parallelRange splits [0, n) into one chunk per CPU and runs fn on each
// chunk concurrently. Workers touch disjoint ranges, so callers can write
// into shared preallocated slices without locks and the combined result is
// deterministic.
func parallelRange(n int, fn func(start, end int) error) error {
	if n == 0 {
		return nil
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		start, end := start, end
		g.Go(func() error { return fn(start, end) })
	}
	return g.Wait()
}
