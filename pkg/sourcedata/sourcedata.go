// Package sourcedata stores the raw surface fields of every reference
// record, keyed by id, for display and post-scoring adjustments.
package sourcedata

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/liliang-cn/bibmatch/internal/artifact"
	"github.com/liliang-cn/bibmatch/pkg/config"
	"github.com/liliang-cn/bibmatch/pkg/corpus"
)

// SourceRecord is the raw surface form of one reference record.
type SourceRecord struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Location string `json:"location"`
	Year     string `json:"year"`
}

// SourceData maps reference ids to their raw records.
type SourceData struct {
	Source  string
	Records map[string]SourceRecord
}

// Build scans the corpus once, capturing the raw fields per id.
func Build(ctx context.Context, cfg *config.Config, client *corpus.Client) (*SourceData, error) {
	sd := &SourceData{
		Source:  cfg.Options.OutputSourceName,
		Records: make(map[string]SourceRecord),
	}
	total, err := client.ForEach(ctx, cfg.Source, func(r *corpus.Record) error {
		sd.Records[r.ID] = SourceRecord{
			ID:       r.ID,
			Title:    r.Title,
			Author:   r.Author,
			Location: r.Location,
			Year:     r.Year,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint32("records", total).Str("source", sd.Source).Msg("source data built")
	return sd, nil
}

// Save writes the record map to path as a single SQLite file, atomically
// replacing any previous artifact.
func (sd *SourceData) Save(path string) error {
	return artifact.Write(path, func(db *sql.DB) error {
		if err := artifact.WriteMeta(db, map[string]string{"source": sd.Source}); err != nil {
			return err
		}
		if _, err := db.Exec(`CREATE TABLE records (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			author TEXT NOT NULL,
			location TEXT NOT NULL,
			year TEXT NOT NULL
		)`); err != nil {
			return err
		}
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()
		stmt, err := tx.Prepare(`INSERT INTO records (id, title, author, location, year) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()
		for id, r := range sd.Records {
			if _, err := stmt.Exec(id, r.Title, r.Author, r.Location, r.Year); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// Load reads a record map saved with Save.
func Load(path string) (*SourceData, error) {
	log.Info().Str("path", path).Msg("loading source data")
	db, err := artifact.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	source, err := artifact.ReadMeta(db, "source")
	if err != nil {
		return nil, err
	}
	sd := &SourceData{Source: source, Records: make(map[string]SourceRecord)}

	rows, err := db.Query(`SELECT id, title, author, location, year FROM records`)
	if err != nil {
		return nil, artifact.WrapError("load_source_data", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var r SourceRecord
		if err := rows.Scan(&r.ID, &r.Title, &r.Author, &r.Location, &r.Year); err != nil {
			return nil, artifact.WrapError("load_source_data", err)
		}
		if _, dup := sd.Records[r.ID]; dup {
			return nil, artifact.WrapError("load_source_data", fmt.Errorf("duplicate record id %s", r.ID))
		}
		sd.Records[r.ID] = r
	}
	if err := rows.Err(); err != nil {
		return nil, artifact.WrapError("load_source_data", err)
	}
	return sd, nil
}

// Dump streams the records to w as JSON Lines, sorted by id.
func (sd *SourceData) Dump(w io.Writer) error {
	ids := make([]string, 0, len(sd.Records))
	for id := range sd.Records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	enc := json.NewEncoder(w)
	for _, id := range ids {
		r := sd.Records[id]
		if err := enc.Encode(&r); err != nil {
			return err
		}
	}
	return nil
}
