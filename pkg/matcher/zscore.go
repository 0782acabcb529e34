package matcher

import "math"

// calculateZScores fills each candidate's z-score from the mean and
// population standard deviation of the similarities. A zero deviation
// yields z-scores of 0 for every candidate.
func calculateZScores(candidates []MatchCandidate) {
	n := len(candidates)
	if n == 0 {
		return
	}
	var sum float32
	for i := range candidates {
		sum += candidates[i].Similarity
	}
	mean := sum / float32(n)

	var variance float32
	for i := range candidates {
		d := candidates[i].Similarity - mean
		variance += d * d
	}
	variance /= float32(n)
	stddev := float32(math.Sqrt(float64(variance)))

	for i := range candidates {
		if stddev == 0 {
			candidates[i].ZScore = 0
		} else {
			candidates[i].ZScore = (candidates[i].Similarity - mean) / stddev
		}
	}
}
