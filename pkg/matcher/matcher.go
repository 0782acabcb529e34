// Package matcher scores candidate records against the precomputed dataset
// vectors and ranks the best matches per input edition.
//
// Scoring is a weighted sparse TF-IDF cosine over the per-field vectors,
// optionally gated by year and adjusted by title overlap and Jaro-Winkler
// similarity, normalized with z-scores over the shortlist.
package matcher

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/liliang-cn/bibmatch/internal/encoding"
	"github.com/liliang-cn/bibmatch/pkg/config"
	"github.com/liliang-cn/bibmatch/pkg/corpus"
	"github.com/liliang-cn/bibmatch/pkg/sourcedata"
	"github.com/liliang-cn/bibmatch/pkg/vectorize"
	"github.com/liliang-cn/bibmatch/pkg/vocab"
	"github.com/liliang-cn/bibmatch/pkg/zipfile"
)

// TopN is the number of candidates kept per input edition. The shortlist
// used for z-score normalization is 20 times larger.
const TopN = 10

// MatchCandidate is one scored reference document. Similarity is the
// running score after any enabled adjustments; OriginalSimilarity is the
// pre-adjustment base cosine.
type MatchCandidate struct {
	ID                     string
	SourceRecord           *sourcedata.SourceRecord
	Similarity             float32
	OriginalSimilarity     float32
	ZScore                 float32
	OverlapScore           float32
	AdjustedOverlapScore   float32
	JaroWinklerScore       float32
	JaroWinklerAuthorScore float32
}

func newCandidate(id string, similarity float32) MatchCandidate {
	return MatchCandidate{
		ID:                 id,
		Similarity:         similarity,
		OriginalSimilarity: similarity,
	}
}

// OutputRecord is the final result for one input edition.
type OutputRecord struct {
	Card   string
	Record zipfile.JsonRecord
	Top    []MatchCandidate
	Stats  MatchStat
}

// newOutputRecord attaches source records to the top candidates and
// normalizes sentinel editions for display.
func newOutputRecord(card string, record *zipfile.JsonRecord, top []MatchCandidate, stats MatchStat, records map[string]sourcedata.SourceRecord) OutputRecord {
	withSources := make([]MatchCandidate, 0, len(top))
	for _, candidate := range top {
		if sourceRecord, ok := records[candidate.ID]; ok {
			candidate.SourceRecord = &sourceRecord
			withSources = append(withSources, candidate)
		}
	}
	outRecord := *record
	if stats == StatNoEdition || stats == StatInvalidJSON {
		outRecord.Edition = 0
	}
	return OutputRecord{Card: card, Record: outRecord, Top: withSources, Stats: stats}
}

// Result is the complete outcome of a match run.
type Result struct {
	Records    []OutputRecord
	Statistics *MatchStatistics
	Weights    Weights
}

// Run matches every edition in the input batch against the dataset and
// returns the per-edition results with batch statistics.
func Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	prompt, records, err := zipfile.ReadInput(cfg, cfg.Input)
	if err != nil {
		return nil, err
	}
	voc, err := vocab.Load(cfg.VocabFile)
	if err != nil {
		return nil, err
	}
	datasetVectors, err := vectorize.Load(cfg.DatasetVectorFile)
	if err != nil {
		return nil, err
	}
	sourceData, err := sourcedata.Load(cfg.SourceDataFile)
	if err != nil {
		return nil, err
	}
	weights, err := LoadWeights(cfg)
	if err != nil {
		return nil, err
	}
	datasetWeighted, err := precalcWeightedVectors(cfg, datasetVectors, weights)
	if err != nil {
		return nil, err
	}

	statistics := NewMatchStatistics()
	statistics.SetPrompt(prompt)
	outputRecords := make([]OutputRecord, 0, len(records))

	for _, cardRecord := range records {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		card := cardRecord.Card
		record := cardRecord.Record
		if cfg.Options.AddAuthorToTitle {
			record.Title = combineTitleAndAuthor(record.Title, record.Author)
		}
		if stat, done := sentinelStat(cfg, card, &record); done {
			if cfg.Verbose {
				log.Info().Str("card", card).Int("edition", record.Edition).Str("stat", stat.Display()).Msg("record skipped")
			}
			statistics.Update(stat, card)
			outputRecords = append(outputRecords, newOutputRecord(card, &record, nil, stat, sourceData.Records))
			continue
		}
		top, err := processRecord(cfg, &record, voc, datasetWeighted, weights, sourceData.Records)
		if err != nil {
			return nil, err
		}
		stat := getStats(cfg, top)
		if cfg.Verbose {
			ev := log.Info().Str("card", card).Int("edition", record.Edition).Str("stat", stat.Display())
			if len(top) > 0 {
				ev = ev.Float32("similarity", top[0].Similarity)
			}
			ev.Msg("record matched")
		}
		statistics.Update(stat, card)
		outputRecords = append(outputRecords, newOutputRecord(card, &record, top, stat, sourceData.Records))
	}
	return &Result{Records: outputRecords, Statistics: statistics, Weights: weights}, nil
}

// sentinelStat classifies records that are never scored: excluded input
// ids and the no-edition / invalid-JSON sentinels.
func sentinelStat(cfg *config.Config, card string, record *zipfile.JsonRecord) (MatchStat, bool) {
	if inputIsExcluded(cfg, card, record.Edition) {
		return StatExcluded, true
	}
	switch record.Edition {
	case zipfile.NoEditionSentinel:
		return StatNoEdition, true
	case zipfile.InvalidJSONSentinel:
		return StatInvalidJSON, true
	}
	return StatNA, false
}

// inputIsExcluded checks "card:edition" against the input exclusion set.
func inputIsExcluded(cfg *config.Config, card string, edition int) bool {
	id := strings.TrimSpace(fmt.Sprintf("%s:%d", card, edition))
	return cfg.Options.InputExcludedIDs[id]
}

// processRecord vectorizes one input edition, scans the whole dataset in
// parallel, and distills the shortlist into the final top candidates.
func processRecord(cfg *config.Config, record *zipfile.JsonRecord, voc *vocab.Vocab, dataset []DatasetWeightedVector, weights Weights, records map[string]sourcedata.SourceRecord) ([]MatchCandidate, error) {
	inputDocument := vectorize.ProcessRecord(recordAsCorpus(record), voc)
	inputVector, err := weightedAveragedVector(&inputDocument, weights)
	if err != nil {
		return nil, err
	}
	norm := selfNorm(inputVector)

	candidates := make([]MatchCandidate, len(dataset))
	err = parallelRange(len(dataset), func(start, end int) error {
		for i := start; i < end; i++ {
			candidates[i] = processOneItem(cfg, inputVector, norm, record, &dataset[i], records)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if len(candidates) > TopN*20 {
		candidates = candidates[:TopN*20]
	}

	applyOverlapScore(cfg, candidates, record, records)
	applyJaroWinkler(cfg, candidates, record, records)
	calculateZScores(candidates)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ZScore > candidates[j].ZScore
	})
	if threshold := cfg.Options.ZThreshold; threshold != nil {
		candidates = retain(candidates, func(c *MatchCandidate) bool {
			return c.ZScore > *threshold
		})
	}
	if len(candidates) > TopN {
		candidates = candidates[:TopN]
	}
	candidates = retain(candidates, func(c *MatchCandidate) bool {
		return c.Similarity > 0
	})
	// With adjustments active, the threshold is re-applied to the adjusted
	// similarity.
	if threshold := cfg.Options.SimilarityThreshold; threshold != nil {
		if cfg.Options.OverlapAdjustment != nil || cfg.Options.JaroWinklerAdjustment {
			candidates = retain(candidates, func(c *MatchCandidate) bool {
				return c.Similarity >= *threshold
			})
		}
	}
	return candidates, nil
}

// processOneItem scores one dataset document against the input vector.
func processOneItem(cfg *config.Config, inputVector []encoding.Pair, norm float32, record *zipfile.JsonRecord, document *DatasetWeightedVector, records map[string]sourcedata.SourceRecord) MatchCandidate {
	if cfg.Options.ExcludedIDs[document.ID] {
		return newCandidate(document.ID, 0)
	}
	var sourceRecord *sourcedata.SourceRecord
	if r, ok := records[document.ID]; ok {
		sourceRecord = &r
	}
	similarity := calculateSimilarityScore(cfg, record, sourceRecord, inputVector, norm, document)
	if threshold := cfg.Options.SimilarityThreshold; threshold != nil && similarity < *threshold {
		similarity = 0
	}
	return newCandidate(document.ID, similarity)
}

func recordAsCorpus(record *zipfile.JsonRecord) *corpus.Record {
	return &corpus.Record{
		Source:   "json_record",
		Title:    record.Title,
		Author:   record.Author,
		Location: record.Location,
		Year:     record.Year,
	}
}

func retain(candidates []MatchCandidate, keep func(*MatchCandidate) bool) []MatchCandidate {
	kept := candidates[:0]
	for i := range candidates {
		if keep(&candidates[i]) {
			kept = append(kept, candidates[i])
		}
	}
	return kept
}
