package matcher

import (
	"math"
	"testing"
)

func TestZScoresNormalized(t *testing.T) {
	candidates := make([]MatchCandidate, 0, 5)
	for _, s := range []float32{0.1, 0.3, 0.5, 0.7, 0.9} {
		candidates = append(candidates, newCandidate("id", s))
	}
	calculateZScores(candidates)

	var mean, variance float64
	for _, c := range candidates {
		mean += float64(c.ZScore)
	}
	mean /= float64(len(candidates))
	for _, c := range candidates {
		variance += (float64(c.ZScore) - mean) * (float64(c.ZScore) - mean)
	}
	variance /= float64(len(candidates))

	if math.Abs(mean) > 1e-5 {
		t.Errorf("z-score mean should be 0, got %v", mean)
	}
	if math.Abs(math.Sqrt(variance)-1) > 1e-5 {
		t.Errorf("z-score stddev should be 1 for distinct values, got %v", math.Sqrt(variance))
	}
}

func TestZScoresZeroDeviation(t *testing.T) {
	candidates := []MatchCandidate{
		newCandidate("a", 0.5),
		newCandidate("b", 0.5),
	}
	calculateZScores(candidates)
	for _, c := range candidates {
		if c.ZScore != 0 {
			t.Errorf("zero stddev should give z-score 0, got %v", c.ZScore)
		}
	}
}

func TestZScoresEmpty(t *testing.T) {
	calculateZScores(nil) // must not panic
}

func TestZScoresOrdering(t *testing.T) {
	candidates := []MatchCandidate{
		newCandidate("low", 0.1),
		newCandidate("high", 0.9),
		newCandidate("mid", 0.5),
	}
	calculateZScores(candidates)
	var high, low MatchCandidate
	for _, c := range candidates {
		switch c.ID {
		case "high":
			high = c
		case "low":
			low = c
		}
	}
	if high.ZScore <= 0 || low.ZScore >= 0 {
		t.Errorf("z-scores should straddle the mean: high %v, low %v", high.ZScore, low.ZScore)
	}
}
