package output

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/liliang-cn/bibmatch/pkg/config"
	"github.com/liliang-cn/bibmatch/pkg/matcher"
)

func writeText(cfg *config.Config, records []matcher.OutputRecord) error {
	var w io.Writer = os.Stdout
	if cfg.OutputToFile() {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("unable to create file: %w", err)
		}
		defer func() { _ = f.Close() }()
		buffered := bufio.NewWriter(f)
		defer func() { _ = buffered.Flush() }()
		w = buffered
	}
	fmt.Fprintln(w, "Output in text format")
	for i := range records {
		writeRecordText(cfg, w, &records[i])
	}
	return nil
}

func writeRecordText(cfg *config.Config, w io.Writer, record *matcher.OutputRecord) {
	fmt.Fprintf(w, "\n\nTop %d matches for record %s %d: %+v\n", matcher.TopN, record.Card, record.Record.Edition, record.Record)
	for _, candidate := range record.Top {
		if cfg.Options.IncludeSourceData {
			if candidate.SourceRecord == nil {
				continue
			}
			sr := candidate.SourceRecord
			fmt.Fprintf(w, "%s: %v  /  %v  ==>  Title: %s, Author: %s, Location: %s, Year: %s\n",
				sr.ID, candidate.Similarity, candidate.ZScore, sr.Title, sr.Author, sr.Location, sr.Year)
		} else {
			fmt.Fprintf(w, "%s: %v  /  %v\n", candidate.ID, candidate.Similarity, candidate.ZScore)
		}
	}
}
