// Package config holds the immutable run configuration: command, artifact
// paths, output selection, and the option set that tunes the matcher.
package config

import (
	"fmt"
	"path/filepath"
)

// Command selects the pipeline stage to run.
type Command string

const (
	CmdBuildVocab          Command = "build-vocab"
	CmdBuildDatasetVectors Command = "build-dataset-vectors"
	CmdBuildSourceData     Command = "build-source-data"
	CmdDumpSourceData      Command = "dump-source-data"
	CmdMatchJSONZip        Command = "match-json-zip"
)

// OutputFormat selects the tabular writer for match results.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatCSV  OutputFormat = "csv"
	FormatXLSX OutputFormat = "xlsx"
)

// ParseOutputFormat maps a format name to an OutputFormat, defaulting to text.
func ParseOutputFormat(s string) OutputFormat {
	switch s {
	case "json":
		return FormatJSON
	case "csv":
		return FormatCSV
	case "xlsx":
		return FormatXLSX
	default:
		return FormatText
	}
}

// TruncateMode controls which input strings are truncated to the reference
// string's length before the Jaro-Winkler adjustments.
type TruncateMode string

const (
	TruncateNone   TruncateMode = "none"
	TruncateTitle  TruncateMode = "title"
	TruncateAuthor TruncateMode = "author"
	TruncateBoth   TruncateMode = "both"
)

// Config is the full, immutable run configuration. It is built once by the
// CLI layer and passed by pointer everywhere.
type Config struct {
	Cmd               Command
	Source            string
	VocabFile         string
	DatasetVectorFile string
	SourceDataFile    string
	Input             string
	Output            string // empty means stdout
	OutputFormat      OutputFormat
	CorpusURL         string
	Verbose           bool
	ConfigFile        string
	Options           Options

	// DefaultArgs records which artifact paths were left at their default,
	// so the report's reconstructed command line can omit them.
	DefaultArgs map[string]bool
}

// OutputToFile reports whether output goes to a file rather than stdout.
func (c *Config) OutputToFile() bool {
	return c.Output != ""
}

func (c *Config) defaultArtifact(suffix string) string {
	return filepath.Join(c.Options.DatasetDir, fmt.Sprintf("%s-%s", c.Options.OutputSourceName, suffix))
}

// ApplyArtifactDefaults fills any unset artifact paths with their defaults
// and records which ones defaulted.
func (c *Config) ApplyArtifactDefaults() {
	if c.DefaultArgs == nil {
		c.DefaultArgs = make(map[string]bool)
	}
	if c.VocabFile == "" {
		c.VocabFile = c.defaultArtifact("vocab.bin")
		c.DefaultArgs["vocab-file"] = true
	}
	if c.DatasetVectorFile == "" {
		c.DatasetVectorFile = c.defaultArtifact("dataset-vectors.bin")
		c.DefaultArgs["dataset-vector-file"] = true
	}
	if c.SourceDataFile == "" {
		c.SourceDataFile = c.defaultArtifact("source-data.bin")
		c.DefaultArgs["source-data-file"] = true
	}
}
