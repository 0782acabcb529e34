// Package vectorize turns catalog records into per-field sparse TF-IDF
// vectors against a built vocabulary.
package vectorize

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/liliang-cn/bibmatch/internal/encoding"
	"github.com/liliang-cn/bibmatch/pkg/config"
	"github.com/liliang-cn/bibmatch/pkg/corpus"
	"github.com/liliang-cn/bibmatch/pkg/vocab"
)

// Document holds one record's sparse TF-IDF vector per field. Pairs are
// sorted by ascending word index with no duplicates and no zero values.
type Document struct {
	ID      string
	Vectors map[string][]encoding.Pair
}

// Vectors is the full dataset vector store.
type Vectors struct {
	Source    string
	TotalDocs uint32
	Documents []Document
}

// ProcessRecord vectorizes every field of one record.
func ProcessRecord(r *corpus.Record, v *vocab.Vocab) Document {
	return Document{
		ID: r.ID,
		Vectors: map[string][]encoding.Pair{
			"author":   processPart(v.Parts["author"], r.Author),
			"title":    processPart(v.Parts["title"], r.Title),
			"location": processPart(v.Parts["location"], r.Location),
			"year":     processPart(v.Parts["year"], r.Year),
			"all":      processPart(v.Parts["all"], r.Combined()),
		},
	}
}

// processPart builds the sparse TF-IDF vector for one field. Every distinct
// known token contributes 1 to the term frequency at its word index; every
// distinct unknown token contributes 1 at the reserved index 0.
func processPart(part *vocab.Part, text string) []encoding.Pair {
	tf := make(map[uint32]float64)
	for token := range part.Tokenize(text) {
		if info, ok := part.Tokens[token]; ok {
			tf[info.Index]++
		} else {
			tf[0]++
		}
	}
	pairs := make([]encoding.Pair, 0, len(tf))
	for index, count := range tf {
		value := float32(count * part.IDF[index])
		if value == 0 {
			continue
		}
		pairs = append(pairs, encoding.Pair{Index: index, Value: value})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Index < pairs[j].Index })
	return pairs
}

// Build rescans the corpus with the vocabulary loaded and produces the
// dataset vector store.
func Build(ctx context.Context, cfg *config.Config, client *corpus.Client) (*Vectors, error) {
	v, err := vocab.Load(cfg.VocabFile)
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		log.Info().Str("path", cfg.VocabFile).Msg("loaded vocab")
	}
	vectors := &Vectors{Source: cfg.Options.OutputSourceName}
	total, err := client.ForEach(ctx, cfg.Source, func(r *corpus.Record) error {
		vectors.Documents = append(vectors.Documents, ProcessRecord(r, v))
		return nil
	})
	if err != nil {
		return nil, err
	}
	vectors.TotalDocs = total
	log.Info().Uint32("total_docs", total).Str("source", vectors.Source).Msg("dataset vectors built")
	return vectors, nil
}
