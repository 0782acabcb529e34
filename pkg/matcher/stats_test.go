package matcher

import (
	"testing"

	"github.com/liliang-cn/bibmatch/pkg/config"
)

func thresholdConfig(threshold float32) *config.Config {
	cfg := &config.Config{Options: config.NewOptions()}
	cfg.Options.SimilarityThreshold = &threshold
	return cfg
}

func TestGetStatsNoThreshold(t *testing.T) {
	cfg := &config.Config{Options: config.NewOptions()}
	if got := getStats(cfg, []MatchCandidate{newCandidate("a", 0.9)}); got != StatNA {
		t.Errorf("without threshold expected NA, got %v", got)
	}
}

func TestGetStatsClassification(t *testing.T) {
	minSingle := float32(0.8)
	minMultiple := float32(0.6)

	cases := []struct {
		name         string
		similarities []float32
		minSingle    *float32
		minMultiple  *float32
		want         MatchStat
	}{
		{"empty", nil, nil, nil, StatNoMatch},
		{"single", []float32{0.9}, nil, nil, StatSingleMatch},
		{"single qualified", []float32{0.9}, &minSingle, nil, StatSingleMatch},
		{"single unqualified", []float32{0.7}, &minSingle, nil, StatUnqualified},
		{"multiple", []float32{0.9, 0.8}, nil, nil, StatMultipleMatches},
		{"multiple qualified", []float32{0.9, 0.7}, nil, &minMultiple, StatMultipleMatches},
		{"multiple unqualified", []float32{0.9, 0.5}, nil, &minMultiple, StatUnqualifiedMultipleMatches},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := thresholdConfig(0.5)
			cfg.Options.MinSingleSimilarity = tc.minSingle
			cfg.Options.MinMultipleSimilarity = tc.minMultiple
			var top []MatchCandidate
			for _, s := range tc.similarities {
				top = append(top, newCandidate("id", s))
			}
			if got := getStats(cfg, top); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestStatisticsDenominator(t *testing.T) {
	stats := NewMatchStatistics()
	stats.Update(StatSingleMatch, "a.json")
	stats.Update(StatExcluded, "b.json")
	stats.Update(StatNoEdition, "c.json")
	stats.Update(StatInvalidJSON, "d.json")

	// Excluded counts into the record total; NoEdition and InvalidJSON only
	// count as cards.
	if stats.NumberOfRecords != 2 {
		t.Errorf("expected 2 counted records, got %d", stats.NumberOfRecords)
	}
	if stats.NumberOfCards() != 4 {
		t.Errorf("expected 4 cards, got %d", stats.NumberOfCards())
	}
	if got := stats.StatPercent(StatSingleMatch); got != 50 {
		t.Errorf("expected 50%%, got %v", got)
	}
	if stats.Stat(StatNoEdition) != 0 {
		t.Errorf("NoEdition should not be counted, got %d", stats.Stat(StatNoEdition))
	}
}

func TestMatchStatDisplay(t *testing.T) {
	cases := map[MatchStat]string{
		StatSingleMatch:                "Single",
		StatMultipleMatches:            "Multiple",
		StatUnqualifiedMultipleMatches: "Unqualified multiple",
		StatNoMatch:                    "No match",
		StatUnqualified:                "Unqualified",
		StatNoEdition:                  "No edition",
		StatExcluded:                   "Excluded",
		StatInvalidJSON:                "Invalid JSON",
		StatNA:                         "",
	}
	for stat, want := range cases {
		if got := stat.Display(); got != want {
			t.Errorf("%v: expected %q, got %q", stat, want, got)
		}
	}
}
