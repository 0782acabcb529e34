package matcher

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/liliang-cn/bibmatch/pkg/config"
)

// Weights maps a field name to its contribution factor in the combined
// vector.
type Weights map[string]float32

// LoadWeights reads the weights file if one is configured, otherwise
// returns the default weights.
func LoadWeights(cfg *config.Config) (Weights, error) {
	if cfg.Options.WeightsFile == "" {
		return DefaultWeights(), nil
	}
	data, err := os.ReadFile(cfg.Options.WeightsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file %s: %w", cfg.Options.WeightsFile, err)
	}
	var w Weights
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to parse weights file %s: %w", cfg.Options.WeightsFile, err)
	}
	return w, nil
}

// DefaultWeights returns the calibrated default field weights.
func DefaultWeights() Weights {
	return Weights{
		"author":   0.75,
		"title":    1.5,
		"location": 1.0,
		"year":     1.0,
		"all":      0.0,
	}
}
