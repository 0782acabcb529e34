package matcher

import (
	"math"
	"strings"

	"github.com/liliang-cn/bibmatch/pkg/config"
	"github.com/liliang-cn/bibmatch/pkg/overlap"
	"github.com/liliang-cn/bibmatch/pkg/sourcedata"
	"github.com/liliang-cn/bibmatch/pkg/zipfile"
)

// applyOverlapScore multiplies every shortlisted candidate's similarity by
// the adjusted title-overlap score. No-op unless overlap adjustment is
// configured.
func applyOverlapScore(cfg *config.Config, top []MatchCandidate, record *zipfile.JsonRecord, records map[string]sourcedata.SourceRecord) {
	if cfg.Options.OverlapAdjustment == nil {
		return
	}
	for i := range top {
		sourceRecord, ok := records[top[i].ID]
		if !ok {
			continue
		}
		score := overlapScore(cfg, sourceRecord.Title, record.Title)
		top[i].OverlapScore = score
		adjusted := overlapScoreAdjust(score)
		top[i].AdjustedOverlapScore = adjusted
		top[i].Similarity *= adjusted
	}
}

// overlapScore relates the combined length of the retained maximal common
// substrings of the two titles to the input title length. Lengths are in
// bytes; overlaps shorter than the configured minimum are discarded.
func overlapScore(cfg *config.Config, sourceTitle, inputTitle string) float32 {
	if cfg.Options.OverlapAdjustment == nil {
		return 1 // unconfigured, leave the similarity unchanged
	}
	threshold := *cfg.Options.OverlapAdjustment
	if threshold > len(inputTitle) {
		threshold = len(inputTitle)
	}
	if threshold <= 0 {
		return 1
	}
	overlaps := overlap.MaximalOverlaps(strings.ToLower(sourceTitle), strings.ToLower(inputTitle))
	var total int
	var retained int
	for _, o := range overlaps {
		if len(o) >= threshold {
			retained++
			total += len(o)
		}
	}
	if retained == 0 || len(inputTitle) == 0 {
		return 0
	}
	return float32(total) / float32(len(inputTitle))
}

// overlapScoreAdjust passes the raw overlap score through a calibrated
// sigmoid, clamped to [0, 1]:
//
//	f(x) = 1 - 1/(1 + e^(7.5x - 2.8)) + 0.009
func overlapScoreAdjust(score float32) float32 {
	if score < 0 {
		return 0
	}
	if score >= 1 {
		return 1
	}
	exponent := math.Exp(float64(7.5*score - 2.8))
	return float32(1 - 1/(1+exponent) + 0.009)
}

// applyJaroWinkler multiplies every shortlisted candidate's similarity by
// the Jaro-Winkler score of the titles and/or authors, as configured.
func applyJaroWinkler(cfg *config.Config, top []MatchCandidate, record *zipfile.JsonRecord, records map[string]sourcedata.SourceRecord) {
	if !cfg.Options.JaroWinklerAdjustment && !cfg.Options.JaroWinklerAuthorAdjustment {
		return
	}
	truncate := cfg.Options.JaroWinklerTruncate
	if cfg.Options.JaroWinklerAdjustment {
		for i := range top {
			sourceRecord, ok := records[top[i].ID]
			if !ok {
				continue
			}
			inputTitle := record.Title
			if truncate == config.TruncateTitle || truncate == config.TruncateBoth {
				inputTitle = truncateToByteLength(inputTitle, len(sourceRecord.Title))
			}
			score := jaroWinkler(strings.ToLower(sourceRecord.Title), strings.ToLower(inputTitle))
			top[i].JaroWinklerScore = score
			top[i].Similarity *= score
		}
	}
	if cfg.Options.JaroWinklerAuthorAdjustment {
		for i := range top {
			sourceRecord, ok := records[top[i].ID]
			if !ok {
				continue
			}
			if sourceRecord.Author == "" || record.Author == "" {
				continue
			}
			inputAuthor := record.Author
			if truncate == config.TruncateAuthor || truncate == config.TruncateBoth {
				inputAuthor = truncateToByteLength(inputAuthor, len(sourceRecord.Author))
			}
			score := jaroWinkler(strings.ToLower(sourceRecord.Author), strings.ToLower(inputAuthor))
			top[i].JaroWinklerAuthorScore = score
			top[i].Similarity *= score
		}
	}
}

// truncateToByteLength cuts s down to at most maxLen bytes, backing up to
// the nearest rune boundary.
func truncateToByteLength(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	end := maxLen
	for end > 0 && !isRuneBoundary(s, end) {
		end--
	}
	return s[:end]
}

func isRuneBoundary(s string, i int) bool {
	return i == 0 || i == len(s) || (s[i]&0xC0) != 0x80
}
