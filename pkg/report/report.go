// Package report writes a markdown summary of a match run next to the
// output file: data paths, weights, options, statistics, and the command
// line to reproduce the run.
package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/liliang-cn/bibmatch/pkg/config"
	"github.com/liliang-cn/bibmatch/pkg/matcher"
)

// Write writes the run report to "<output stem>-report.md". Runs that
// print to stdout get no report.
func Write(cfg *config.Config, stats *matcher.MatchStatistics, weights matcher.Weights) error {
	if !cfg.OutputToFile() {
		return nil
	}
	filename := cfg.Output
	if pos := strings.LastIndex(filename, "."); pos >= 0 {
		filename = filename[:pos]
	}
	filename += "-report.md"
	markdown := createMarkdown(cfg, stats, weights)
	if err := os.WriteFile(filename, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("unable to write report: %w", err)
	}
	return nil
}

func createMarkdown(cfg *config.Config, stats *matcher.MatchStatistics, weights matcher.Weights) string {
	var b strings.Builder
	b.WriteString("# Report\n\n")

	b.WriteString("## Data\n\n")
	b.WriteString("| Field | Value |\n| --- | --- |\n")
	row(&b, "source", cfg.Source)
	row(&b, "input file", cfg.Input)
	output := cfg.Output
	if output == "" {
		output = "stdout"
	}
	row(&b, "output file", output)
	row(&b, "vocab file", cfg.VocabFile)
	row(&b, "vector file", cfg.DatasetVectorFile)
	row(&b, "source data file", cfg.SourceDataFile)
	b.WriteString("\n")

	b.WriteString("## Weights\n\n")
	b.WriteString("| Field | Weight |\n| --- | --- |\n")
	for _, field := range []string{"author", "title", "location", "year", "all"} {
		row(&b, field, fmt.Sprintf("%v", weights[field]))
	}
	b.WriteString("\n")

	b.WriteString("## Options\n\n")
	b.WriteString("| Option | Value |\n| --- | --- |\n")
	opts := &cfg.Options
	row(&b, "force_year", fmt.Sprintf("%v", opts.ForceYear))
	row(&b, "include_source_data", fmt.Sprintf("%v", opts.IncludeSourceData))
	row(&b, "similarity_threshold", optF32(opts.SimilarityThreshold))
	row(&b, "z_threshold", optF32(opts.ZThreshold))
	row(&b, "min_single_similarity", optF32(opts.MinSingleSimilarity))
	weightsFile := opts.WeightsFile
	if weightsFile == "" {
		weightsFile = "default weights"
	}
	row(&b, "weights_file", weightsFile)
	row(&b, "extended_output", fmt.Sprintf("%v", opts.ExtendedOutput))
	row(&b, "add_author_to_title", fmt.Sprintf("%v", opts.AddAuthorToTitle))
	row(&b, "overlap_adjustment", optInt(opts.OverlapAdjustment))
	row(&b, "min-multiple_similarity", optF32(opts.MinMultipleSimilarity))
	b.WriteString("\n")

	b.WriteString("## Statistics\n\n")
	b.WriteString("| Field | Value |\n| --- | --- |\n")
	row(&b, "Number of cards", fmt.Sprintf("%d", stats.NumberOfCards()))
	row(&b, "Number of match entities", fmt.Sprintf("%d", stats.NumberOfRecords))
	countRow(&b, stats, matcher.StatSingleMatch, "Number of single matches")
	countRow(&b, stats, matcher.StatUnqualified, "Number of unqualified single matches")
	countRow(&b, stats, matcher.StatMultipleMatches, "Number of multiple matches")
	countRow(&b, stats, matcher.StatUnqualifiedMultipleMatches, "Number of unqualified multiple matches")
	countRow(&b, stats, matcher.StatNoMatch, "Number of no matches")
	countRow(&b, stats, matcher.StatNoEdition, "Cards without editions")
	percentRow(&b, stats, matcher.StatSingleMatch, "Single match percentage")
	percentRow(&b, stats, matcher.StatUnqualified, "Unqualified single match percentage")
	percentRow(&b, stats, matcher.StatMultipleMatches, "Multiple match percentage")
	percentRow(&b, stats, matcher.StatUnqualifiedMultipleMatches, "Unqualified multiple match percentage")
	percentRow(&b, stats, matcher.StatNoMatch, "No match percentage")

	commandLine(&b, cfg)

	if stats.PromptUsed != "" {
		promptMarkdown(&b, stats.PromptUsed)
	}
	return b.String()
}

func row(b *strings.Builder, field, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", field, value)
}

func countRow(b *strings.Builder, stats *matcher.MatchStatistics, stat matcher.MatchStat, label string) {
	if stats.Stat(stat) > 0 {
		row(b, label, fmt.Sprintf("%d", stats.Stat(stat)))
	}
}

func percentRow(b *strings.Builder, stats *matcher.MatchStatistics, stat matcher.MatchStat, label string) {
	if stats.Stat(stat) > 0 {
		row(b, label, fmt.Sprintf("%.2f", stats.StatPercent(stat)))
	}
}

func optF32(v *float32) string {
	if v == nil {
		return "0"
	}
	return fmt.Sprintf("%v", *v)
}

func optInt(v *int) string {
	if v == nil {
		return "-1"
	}
	return fmt.Sprintf("%d", *v)
}

// commandLine reconstructs the invocation from the subcommand, source,
// input, output, format, the artifact paths not left at their defaults, the
// force-year, include-source-data, threshold, weights-file, extended-output,
// add-author-to-title and overlap-adjustment options, and -v. Other options
// and the config file are not included.
func commandLine(b *strings.Builder, cfg *config.Config) {
	opts := &cfg.Options
	parts := []string{
		string(cfg.Cmd),
		fmt.Sprintf("-s %s", cfg.Source),
		fmt.Sprintf("-i %s", cfg.Input),
	}
	if cfg.Output != "" {
		parts = append(parts, fmt.Sprintf("-o %s", cfg.Output))
	}
	parts = append(parts, fmt.Sprintf("-F %s", cfg.OutputFormat))
	if !cfg.DefaultArgs["vocab-file"] {
		parts = append(parts, fmt.Sprintf("-V %s", cfg.VocabFile))
	}
	if !cfg.DefaultArgs["dataset-vector-file"] {
		parts = append(parts, fmt.Sprintf("-D %s", cfg.DatasetVectorFile))
	}
	if !cfg.DefaultArgs["source-data-file"] {
		parts = append(parts, fmt.Sprintf("-S %s", cfg.SourceDataFile))
	}
	if opts.ForceYear {
		parts = append(parts, "-O force-year")
	}
	if opts.IncludeSourceData {
		parts = append(parts, "-O include-source-data")
	}
	if opts.SimilarityThreshold != nil {
		parts = append(parts, fmt.Sprintf("-O similarity-threshold=%v", *opts.SimilarityThreshold))
	}
	if opts.ZThreshold != nil {
		parts = append(parts, fmt.Sprintf("-O z-threshold=%v", *opts.ZThreshold))
	}
	if opts.MinSingleSimilarity != nil {
		parts = append(parts, fmt.Sprintf("-O min-single-similarity=%v", *opts.MinSingleSimilarity))
	}
	if opts.MinMultipleSimilarity != nil {
		parts = append(parts, fmt.Sprintf("-O min-multiple-similarity=%v", *opts.MinMultipleSimilarity))
	}
	if opts.WeightsFile != "" {
		parts = append(parts, fmt.Sprintf("-O weights-file=%s", opts.WeightsFile))
	}
	if opts.ExtendedOutput {
		parts = append(parts, "-O extended-output")
	}
	if opts.AddAuthorToTitle {
		parts = append(parts, "-O add-author-to-title")
	}
	if opts.OverlapAdjustment != nil {
		parts = append(parts, fmt.Sprintf("-O overlap-adjustment=%d", *opts.OverlapAdjustment))
	}
	if cfg.Verbose {
		parts = append(parts, "-v")
	}
	b.WriteString("\n## Command line\n\n")
	fmt.Fprintf(b, "```\nbibmatch %s\n```\n", strings.Join(parts, " "))
}

func promptMarkdown(b *strings.Builder, prompt string) {
	b.WriteString("\n## Prompt\n\n")
	for _, line := range strings.Split(strings.TrimRight(prompt, "\n"), "\n") {
		fmt.Fprintf(b, "> %s\n", line)
	}
}
