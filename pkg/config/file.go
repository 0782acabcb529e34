package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// LoadOptionsFromFile merges the matching_config section of a JSON config
// file into o. The section may carry an options object (snake_case keys)
// and a weights object; weights are written to a temp file and wired in as
// the weights file so the matcher loads them the usual way.
//
// A file that parses but has no matching_config section is ignored, so the
// same config file can serve other tools.
func LoadOptionsFromFile(filename string, o *Options) error {
	v := viper.New()
	v.SetConfigFile(filename)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	mc := v.Sub("matching_config")
	if mc == nil {
		return nil
	}
	if opts := mc.GetStringMap("options"); len(opts) > 0 {
		fillOptions(o, opts)
	}
	if weights := mc.GetStringMap("weights"); len(weights) > 0 {
		path, err := writeTempWeights(weights)
		if err != nil {
			return err
		}
		o.WeightsFile = path
	}
	return nil
}

func writeTempWeights(weights map[string]any) (string, error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("matching-weights-%s.json", uuid.NewString()))
	data, err := json.MarshalIndent(weights, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode weights: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write temporary weights file: %w", err)
	}
	return path, nil
}

func fillOptions(o *Options, opts map[string]any) {
	for key, value := range opts {
		switch key {
		case "force_year":
			o.ForceYear = asBool(value)
		case "year_tolerance":
			o.YearTolerance = asOptionalInt(value)
		case "year_tolerance_penalty":
			o.YearTolerancePenalty = asF32(value)
		case "include_source_data":
			o.IncludeSourceData = asBool(value)
		case "similarity_threshold":
			o.SimilarityThreshold = asOptionalF32(value)
		case "z_threshold":
			o.ZThreshold = asOptionalF32(value)
		case "min_single_similarity":
			o.MinSingleSimilarity = asOptionalF32(value)
		case "min_multiple_similarity":
			o.MinMultipleSimilarity = asOptionalF32(value)
		case "extended_output":
			o.ExtendedOutput = asBool(value)
		case "add_author_to_title":
			o.AddAuthorToTitle = asBool(value)
		case "add_serial_to_title":
			o.AddSerialToTitle = asBool(value)
		case "add_edition_to_title":
			o.AddEditionToTitle = asBool(value)
		case "overlap_adjustment":
			o.OverlapAdjustment = asOptionalInt(value)
		case "jaro_winkler_adjustment":
			o.JaroWinklerAdjustment = asBool(value)
		case "jaro_winkler_author_adjustment":
			o.JaroWinklerAuthorAdjustment = asBool(value)
		case "json_schema_version":
			o.JSONSchemaVersion = asInt(value)
		case "output_source_name":
			o.OutputSourceName = asString(value)
		case "dataset_dir":
			o.DatasetDir = asString(value)
		}
	}
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func asInt(v any) int {
	f, _ := asFloat(v)
	return int(f)
}

func asF32(v any) float32 {
	f, _ := asFloat(v)
	return float32(f)
}

func asOptionalInt(v any) *int {
	if v == nil {
		return nil
	}
	f, ok := asFloat(v)
	if !ok {
		return nil
	}
	n := int(f)
	return &n
}

func asOptionalF32(v any) *float32 {
	if v == nil {
		return nil
	}
	f, ok := asFloat(v)
	if !ok {
		return nil
	}
	n := float32(f)
	return &n
}
