package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultYearTolerancePenalty is the per-year similarity penalty slope used
// when year-tolerance gating is active.
const DefaultYearTolerancePenalty float32 = 0.25

// Options is the tunable option set accepted via repeated -O flags and the
// optional config file. Pointer fields are tri-state: nil means unset.
type Options struct {
	ForceYear            bool
	YearTolerance        *int
	YearTolerancePenalty float32
	IncludeSourceData    bool

	SimilarityThreshold   *float32
	ZThreshold            *float32
	MinSingleSimilarity   *float32
	MinMultipleSimilarity *float32

	WeightsFile    string
	ExtendedOutput bool

	AddAuthorToTitle  bool
	AddSerialToTitle  bool
	AddEditionToTitle bool

	// OverlapAdjustment holds the minimum overlap length; nil disables the
	// overlap adjustment entirely.
	OverlapAdjustment           *int
	JaroWinklerAdjustment       bool
	JaroWinklerAuthorAdjustment bool
	JaroWinklerTruncate         TruncateMode

	JSONSchemaVersion int
	OutputSourceName  string
	DatasetDir        string

	ExcludeFiles []string
	ExcludedIDs  map[string]bool

	InputExcludeFiles []string
	InputExcludedIDs  map[string]bool
}

// NewOptions returns the option set with all defaults applied.
func NewOptions() Options {
	return Options{
		YearTolerancePenalty: DefaultYearTolerancePenalty,
		JaroWinklerTruncate:  TruncateNone,
		JSONSchemaVersion:    1,
		DatasetDir:           "data",
		ExcludedIDs:          map[string]bool{},
		InputExcludedIDs:     map[string]bool{},
	}
}

// Apply parses one "name" or "name=value" option string into o.
func (o *Options) Apply(option string) error {
	name, value, _ := strings.Cut(option, "=")
	switch name {
	case "force-year":
		o.ForceYear = true
	case "year-tolerance":
		v, err := intValue(option, value)
		if err != nil {
			return err
		}
		o.YearTolerance = &v
	case "year-tolerance-penalty":
		v, err := f32Value(option, value)
		if err != nil {
			return err
		}
		o.YearTolerancePenalty = v
	case "include-source-data":
		o.IncludeSourceData = true
	case "similarity-threshold":
		v, err := f32Value(option, value)
		if err != nil {
			return err
		}
		o.SimilarityThreshold = &v
	case "z-threshold":
		v, err := f32Value(option, value)
		if err != nil {
			return err
		}
		o.ZThreshold = &v
	case "min-single-similarity":
		v, err := f32Value(option, value)
		if err != nil {
			return err
		}
		o.MinSingleSimilarity = &v
	case "min-multiple-similarity":
		v, err := f32Value(option, value)
		if err != nil {
			return err
		}
		o.MinMultipleSimilarity = &v
	case "weights-file":
		o.WeightsFile = value
	case "extended-output":
		o.ExtendedOutput = true
	case "add-author-to-title":
		o.AddAuthorToTitle = true
	case "add-serial-to-title":
		o.AddSerialToTitle = true
	case "add-edition-to-title":
		o.AddEditionToTitle = true
	case "overlap-adjustment":
		v, err := intValue(option, value)
		if err != nil {
			return err
		}
		o.OverlapAdjustment = &v
	case "jaro-winkler-adjustment":
		o.JaroWinklerAdjustment = true
	case "jaro-winkler-author-adjustment":
		o.JaroWinklerAuthorAdjustment = true
	case "jaro-winkler-truncate":
		switch value {
		case "title":
			o.JaroWinklerTruncate = TruncateTitle
		case "author":
			o.JaroWinklerTruncate = TruncateAuthor
		case "both":
			o.JaroWinklerTruncate = TruncateBoth
		default:
			return fmt.Errorf("invalid jaro-winkler-truncate mode: %q", value)
		}
	case "json-schema-version":
		v, err := intValue(option, value)
		if err != nil {
			return err
		}
		o.JSONSchemaVersion = v
	case "output-source-name":
		o.OutputSourceName = value
	case "dataset-dir":
		o.DatasetDir = value
	case "exclude-file": // repeatable
		o.ExcludeFiles = append(o.ExcludeFiles, value)
	case "input-exclude-file": // repeatable
		o.InputExcludeFiles = append(o.InputExcludeFiles, value)
	default:
		return fmt.Errorf("unknown option: %s", option)
	}
	return nil
}

// LoadExcludeLists reads every configured exclude file into the id sets.
func (o *Options) LoadExcludeLists() error {
	for _, filename := range o.ExcludeFiles {
		if err := readExcludeFile(filename, o.ExcludedIDs); err != nil {
			return err
		}
	}
	for _, filename := range o.InputExcludeFiles {
		if err := readExcludeFile(filename, o.InputExcludedIDs); err != nil {
			return err
		}
	}
	return nil
}

// readExcludeFile collects ids, one per line, into set. Empty lines and
// lines starting with # are skipped.
func readExcludeFile(filename string, set map[string]bool) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to read exclude file %s: %w", filename, err)
	}
	defer func() { _ = f.Close() }()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id == "" || strings.HasPrefix(id, "#") {
			continue
		}
		set[id] = true
	}
	return scanner.Err()
}

func intValue(option, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("option %s: expected integer value", option)
	}
	return v, nil
}

func f32Value(option, value string) (float32, error) {
	v, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return 0, fmt.Errorf("option %s: expected numeric value", option)
	}
	return float32(v), nil
}
