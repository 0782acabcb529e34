package matcher

import (
	"github.com/liliang-cn/bibmatch/pkg/config"
)

// MatchStat classifies the outcome of matching one input edition.
type MatchStat string

const (
	StatSingleMatch                MatchStat = "SingleMatch"
	StatMultipleMatches            MatchStat = "MultipleMatches"
	StatUnqualifiedMultipleMatches MatchStat = "UnqualifiedMultipleMatches"
	StatNoMatch                    MatchStat = "NoMatch"
	// StatUnqualified is a single match not reaching min-single-similarity.
	StatUnqualified MatchStat = "Unqualified"
	// StatNoEdition marks a card that declared no editions.
	StatNoEdition MatchStat = "NoEdition"
	// StatExcluded marks an input edition on the input exclusion list.
	StatExcluded    MatchStat = "Excluded"
	StatInvalidJSON MatchStat = "InvalidJSON"
	StatNA          MatchStat = "NA"
)

// Display returns the user-facing label for the classification.
func (s MatchStat) Display() string {
	switch s {
	case StatSingleMatch:
		return "Single"
	case StatMultipleMatches:
		return "Multiple"
	case StatUnqualifiedMultipleMatches:
		return "Unqualified multiple"
	case StatNoMatch:
		return "No match"
	case StatUnqualified:
		return "Unqualified"
	case StatNoEdition:
		return "No edition"
	case StatExcluded:
		return "Excluded"
	case StatInvalidJSON:
		return "Invalid JSON"
	default:
		return ""
	}
}

// getStats classifies a finished top-K list. Classification is only
// meaningful when a similarity threshold is configured; otherwise NA.
func getStats(cfg *config.Config, top []MatchCandidate) MatchStat {
	if cfg.Options.SimilarityThreshold == nil {
		return StatNA
	}
	switch {
	case len(top) == 0:
		return StatNoMatch
	case len(top) == 1:
		if min := cfg.Options.MinSingleSimilarity; min != nil && top[0].Similarity < *min {
			return StatUnqualified
		}
		return StatSingleMatch
	default:
		if min := cfg.Options.MinMultipleSimilarity; min != nil {
			for _, candidate := range top {
				if candidate.Similarity < *min {
					return StatUnqualifiedMultipleMatches
				}
			}
		}
		return StatMultipleMatches
	}
}

// MatchStatistics aggregates per-record classifications across a batch.
type MatchStatistics struct {
	MatchTypes      map[MatchStat]int
	NumberOfRecords int
	Cards           map[string]bool
	PromptUsed      string
}

// NewMatchStatistics returns empty statistics.
func NewMatchStatistics() *MatchStatistics {
	return &MatchStatistics{
		MatchTypes: make(map[MatchStat]int),
		Cards:      make(map[string]bool),
	}
}

// Update records one classification. NoEdition and InvalidJSON count only
// into the card set, never into the per-record totals, so they stay out of
// the percent denominators.
func (m *MatchStatistics) Update(stat MatchStat, card string) {
	if stat == StatNoEdition || stat == StatInvalidJSON {
		m.Cards[card] = true
		return
	}
	m.MatchTypes[stat]++
	m.NumberOfRecords++
	m.Cards[card] = true
}

// SetPrompt records the prompt used for the run.
func (m *MatchStatistics) SetPrompt(prompt string) {
	m.PromptUsed = prompt
}

// NumberOfCards returns the number of distinct cards seen.
func (m *MatchStatistics) NumberOfCards() int {
	return len(m.Cards)
}

// Stat returns the count for one classification.
func (m *MatchStatistics) Stat(stat MatchStat) int {
	return m.MatchTypes[stat]
}

// StatPercent returns the classification's share of all counted records.
func (m *MatchStatistics) StatPercent(stat MatchStat) float32 {
	return float32(m.Stat(stat)) / float32(m.NumberOfRecords) * 100
}
