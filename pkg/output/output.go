// Package output writes match results as text, CSV, JSON, or XLSX rows.
package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/liliang-cn/bibmatch/pkg/config"
	"github.com/liliang-cn/bibmatch/pkg/matcher"
)

// Cell is one tabular output value, either a string or a number.
type Cell struct {
	Str     string
	Num     float64
	Numeric bool
}

func strCell(s string) Cell  { return Cell{Str: s} }
func numCell(n float64) Cell { return Cell{Num: n, Numeric: true} }

// WriteRecords writes the match results in the configured format. Text
// output goes to stdout unless a file is configured; every other format
// requires an output file.
func WriteRecords(cfg *config.Config, records []matcher.OutputRecord) error {
	if cfg.OutputToFile() {
		if parent := filepath.Dir(cfg.Output); parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return fmt.Errorf("unable to create output directory: %w", err)
			}
		}
	}
	switch cfg.OutputFormat {
	case config.FormatText:
		return writeText(cfg, records)
	case config.FormatJSON:
		if !cfg.OutputToFile() {
			return fmt.Errorf("json output requires an output file")
		}
		return writeJSON(cfg, cfg.Output, records)
	case config.FormatCSV:
		if !cfg.OutputToFile() {
			return fmt.Errorf("csv output requires an output file")
		}
		return writeCSV(cfg, cfg.Output, records)
	case config.FormatXLSX:
		if !cfg.OutputToFile() {
			return fmt.Errorf("xlsx output requires an output file")
		}
		return writeXLSX(cfg, cfg.Output, records)
	default:
		return fmt.Errorf("output format not implemented: %s", cfg.OutputFormat)
	}
}

// buildHeaders returns the column headers shared by the CSV and XLSX
// writers.
func buildHeaders(cfg *config.Config) []string {
	headers := []string{"card", "edition_idx", "title", "author", "location", "year", "match_stat", "id", "similarity", "zscore"}
	if cfg.Options.IncludeSourceData {
		headers = append(headers, "source_title", "source_author", "source_location", "source_year")
	}
	return headers
}

// buildRows flattens the output records into tabular rows. A record with
// no candidates yields a single row carrying just the record data and its
// classification.
func buildRows(cfg *config.Config, records []matcher.OutputRecord) [][]Cell {
	var rows [][]Cell
	for _, record := range records {
		if len(record.Top) == 0 {
			rows = append(rows, []Cell{
				strCell(record.Card),
				numCell(float64(record.Record.Edition)),
				strCell(record.Record.Title),
				strCell(record.Record.Author),
				strCell(record.Record.Location),
				strCell(record.Record.Year),
				strCell(record.Stats.Display()),
			})
			continue
		}
		for _, candidate := range record.Top {
			row := []Cell{
				strCell(record.Card),
				numCell(float64(record.Record.Edition)),
				strCell(record.Record.Title),
				strCell(record.Record.Author),
				strCell(record.Record.Location),
				strCell(record.Record.Year),
				strCell(record.Stats.Display()),
				strCell(candidate.ID),
				numCell(float64(candidate.Similarity)),
				numCell(float64(candidate.ZScore)),
			}
			if cfg.Options.IncludeSourceData && candidate.SourceRecord != nil {
				row = append(row,
					strCell(candidate.SourceRecord.Title),
					strCell(candidate.SourceRecord.Author),
					strCell(candidate.SourceRecord.Location),
					strCell(candidate.SourceRecord.Year),
				)
			}
			rows = append(rows, row)
		}
	}
	return rows
}
