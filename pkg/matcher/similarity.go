package matcher

import (
	"strconv"

	"github.com/liliang-cn/bibmatch/internal/encoding"
	"github.com/liliang-cn/bibmatch/pkg/config"
	"github.com/liliang-cn/bibmatch/pkg/sourcedata"
	"github.com/liliang-cn/bibmatch/pkg/zipfile"
)

// calculateSimilarityScore computes one candidate's similarity, applying
// the year gate when configured. A candidate without a source-data record
// cannot be year-gated and falls back to the base cosine.
func calculateSimilarityScore(cfg *config.Config, record *zipfile.JsonRecord, sourceRecord *sourcedata.SourceRecord, inputVector []encoding.Pair, selfNorm float32, document *DatasetWeightedVector) float32 {
	base := func() float32 {
		return cosineSimilarity(inputVector, selfNorm, document.Vector, document.Norm)
	}
	if !cfg.Options.ForceYear || sourceRecord == nil {
		return base()
	}
	// An unset tolerance is treated as 0; both select the exact gate.
	if cfg.Options.YearTolerance == nil || *cfg.Options.YearTolerance == 0 {
		return forcedYearSimilarity(cfg, record, sourceRecord, base)
	}
	return yearToleranceSimilarity(cfg, record, sourceRecord, base)
}

// forcedYearSimilarity requires an exact year hit. A record year of "0"
// disables the gate. Schema v2 checks membership in the edition's allowed
// years; schema v1 compares the year strings directly.
func forcedYearSimilarity(cfg *config.Config, record *zipfile.JsonRecord, sourceRecord *sourcedata.SourceRecord, base func() float32) float32 {
	if record.Year == "0" {
		return base()
	}
	if cfg.Options.JSONSchemaVersion >= 2 {
		sourceYear, err := strconv.Atoi(sourceRecord.Year)
		if err != nil {
			return 0 // source year is not a valid number
		}
		for _, allowed := range record.AllowedYears {
			if allowed == sourceYear {
				return base()
			}
		}
		return 0
	}
	if record.Year != sourceRecord.Year {
		return 0
	}
	return base()
}

// yearToleranceSimilarity widens the gate to ±tolerance years, with a
// linear penalty per year of difference. Only the record's scalar year is
// consulted; allowed years are ignored here.
func yearToleranceSimilarity(cfg *config.Config, record *zipfile.JsonRecord, sourceRecord *sourcedata.SourceRecord, base func() float32) float32 {
	if record.Year == "0" {
		return base()
	}
	tolerance := *cfg.Options.YearTolerance
	recordYear, err := strconv.Atoi(record.Year)
	if err != nil {
		return 0 // record year is not a valid number
	}
	sourceYear, err := strconv.Atoi(sourceRecord.Year)
	if err != nil {
		return 0 // source year is not a valid number
	}
	diff := recordYear - sourceYear
	if diff < 0 {
		diff = -diff
	}
	if diff > tolerance {
		return 0
	}
	penalty := 1 - float32(diff)*cfg.Options.YearTolerancePenalty
	if penalty < 0 {
		penalty = 0
	}
	return base() * penalty
}
