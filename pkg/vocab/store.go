package vocab

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/liliang-cn/bibmatch/internal/artifact"
)

// Save writes the vocabulary to path as a single SQLite file, atomically
// replacing any previous artifact.
func (v *Vocab) Save(path string) error {
	return artifact.Write(path, func(db *sql.DB) error {
		if err := artifact.WriteMeta(db, map[string]string{
			"source":     v.Source,
			"total_docs": strconv.FormatUint(uint64(v.TotalDocs), 10),
		}); err != nil {
			return err
		}
		if _, err := db.Exec(`CREATE TABLE words (idx INTEGER PRIMARY KEY, word TEXT NOT NULL)`); err != nil {
			return err
		}
		if _, err := db.Exec(`CREATE TABLE parts (field TEXT PRIMARY KEY, part_type TEXT NOT NULL)`); err != nil {
			return err
		}
		if _, err := db.Exec(`CREATE TABLE part_tokens (
			field TEXT NOT NULL,
			token TEXT NOT NULL,
			word_idx INTEGER NOT NULL,
			doc_count INTEGER NOT NULL,
			PRIMARY KEY (field, token)
		)`); err != nil {
			return err
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		wordStmt, err := tx.Prepare(`INSERT INTO words (idx, word) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		defer func() { _ = wordStmt.Close() }()
		for idx, word := range v.Words {
			if _, err := wordStmt.Exec(idx, word); err != nil {
				return err
			}
		}

		tokenStmt, err := tx.Prepare(`INSERT INTO part_tokens (field, token, word_idx, doc_count) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() { _ = tokenStmt.Close() }()
		for _, field := range Fields {
			part := v.Parts[field]
			if _, err := tx.Exec(`INSERT INTO parts (field, part_type) VALUES (?, ?)`, field, string(part.Type)); err != nil {
				return err
			}
			for token, info := range part.Tokens {
				if _, err := tokenStmt.Exec(field, token, info.Index, info.DocCount); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	})
}

// Load reads a vocabulary saved with Save. IDF values are recomputed from
// the persisted document counts, which reproduces the built structure
// exactly.
func Load(path string) (*Vocab, error) {
	log.Info().Str("path", path).Msg("loading vocab")
	db, err := artifact.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	source, err := artifact.ReadMeta(db, "source")
	if err != nil {
		return nil, err
	}
	totalStr, err := artifact.ReadMeta(db, "total_docs")
	if err != nil {
		return nil, err
	}
	total, err := strconv.ParseUint(totalStr, 10, 32)
	if err != nil {
		return nil, artifact.WrapError("load_vocab", fmt.Errorf("bad total_docs %q: %w", totalStr, err))
	}

	v := &Vocab{
		Source:    source,
		TotalDocs: uint32(total),
		Parts:     make(map[string]*Part, len(Fields)),
	}

	if err := loadWords(db, v); err != nil {
		return nil, artifact.WrapError("load_vocab", err)
	}
	if err := loadParts(db, v); err != nil {
		return nil, artifact.WrapError("load_vocab", err)
	}
	if err := loadTokens(db, v); err != nil {
		return nil, artifact.WrapError("load_vocab", err)
	}
	v.computeIDF()
	return v, nil
}

func loadWords(db *sql.DB, v *Vocab) error {
	rows, err := db.Query(`SELECT idx, word FROM words ORDER BY idx`)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var idx int
		var word string
		if err := rows.Scan(&idx, &word); err != nil {
			return err
		}
		if idx != len(v.Words) {
			return fmt.Errorf("words table has a gap at index %d", idx)
		}
		v.Words = append(v.Words, word)
	}
	return rows.Err()
}

func loadParts(db *sql.DB, v *Vocab) error {
	rows, err := db.Query(`SELECT field, part_type FROM parts`)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var field, partType string
		if err := rows.Scan(&field, &partType); err != nil {
			return err
		}
		v.Parts[field] = &Part{
			Type:   PartType(partType),
			Tokens: make(map[string]TokenInfo),
		}
	}
	return rows.Err()
}

func loadTokens(db *sql.DB, v *Vocab) error {
	rows, err := db.Query(`SELECT field, token, word_idx, doc_count FROM part_tokens`)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var field, token string
		var wordIdx, docCount uint32
		if err := rows.Scan(&field, &token, &wordIdx, &docCount); err != nil {
			return err
		}
		part, ok := v.Parts[field]
		if !ok {
			return fmt.Errorf("part_tokens references unknown field %q", field)
		}
		part.Tokens[token] = TokenInfo{Index: wordIdx, DocCount: docCount}
	}
	return rows.Err()
}
