package vectorize

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/liliang-cn/bibmatch/internal/artifact"
	"github.com/liliang-cn/bibmatch/internal/encoding"
	"github.com/liliang-cn/bibmatch/pkg/vocab"
)

// Save writes the vector store to path as a single SQLite file, atomically
// replacing any previous artifact. Document order is preserved so a reload
// scans the dataset in the same order it was built.
func (v *Vectors) Save(path string) error {
	return artifact.Write(path, func(db *sql.DB) error {
		if err := artifact.WriteMeta(db, map[string]string{
			"source":     v.Source,
			"total_docs": strconv.FormatUint(uint64(v.TotalDocs), 10),
		}); err != nil {
			return err
		}
		if _, err := db.Exec(`CREATE TABLE docs (seq INTEGER PRIMARY KEY, id TEXT NOT NULL)`); err != nil {
			return err
		}
		if _, err := db.Exec(`CREATE TABLE doc_vectors (
			seq INTEGER NOT NULL,
			field TEXT NOT NULL,
			vector BLOB NOT NULL,
			PRIMARY KEY (seq, field)
		)`); err != nil {
			return err
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		docStmt, err := tx.Prepare(`INSERT INTO docs (seq, id) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		defer func() { _ = docStmt.Close() }()
		vecStmt, err := tx.Prepare(`INSERT INTO doc_vectors (seq, field, vector) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() { _ = vecStmt.Close() }()

		for seq, doc := range v.Documents {
			if _, err := docStmt.Exec(seq, doc.ID); err != nil {
				return err
			}
			for _, field := range vocab.Fields {
				blob, err := encoding.EncodeSparse(doc.Vectors[field])
				if err != nil {
					return err
				}
				if _, err := vecStmt.Exec(seq, field, blob); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	})
}

// Load reads a vector store saved with Save.
func Load(path string) (*Vectors, error) {
	log.Info().Str("path", path).Msg("loading dataset vectors")
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
		return nil, artifact.WrapError("load_vectors", fmt.Errorf("bad total_docs %q: %w", totalStr, err))
	}

	v := &Vectors{Source: source, TotalDocs: uint32(total)}

	rows, err := db.Query(`SELECT seq, id FROM docs ORDER BY seq`)
	if err != nil {
		return nil, artifact.WrapError("load_vectors", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var seq int
		var id string
		if err := rows.Scan(&seq, &id); err != nil {
			return nil, artifact.WrapError("load_vectors", err)
		}
		if seq != len(v.Documents) {
			return nil, artifact.WrapError("load_vectors", fmt.Errorf("docs table has a gap at seq %d", seq))
		}
		v.Documents = append(v.Documents, Document{ID: id, Vectors: make(map[string][]encoding.Pair, len(vocab.Fields))})
	}
	if err := rows.Err(); err != nil {
		return nil, artifact.WrapError("load_vectors", err)
	}

	vecRows, err := db.Query(`SELECT seq, field, vector FROM doc_vectors`)
	if err != nil {
		return nil, artifact.WrapError("load_vectors", err)
	}
	defer func() { _ = vecRows.Close() }()
	for vecRows.Next() {
		var seq int
		var field string
		var blob []byte
		if err := vecRows.Scan(&seq, &field, &blob); err != nil {
			return nil, artifact.WrapError("load_vectors", err)
		}
		if seq < 0 || seq >= len(v.Documents) {
			return nil, artifact.WrapError("load_vectors", fmt.Errorf("doc_vectors references unknown seq %d", seq))
		}
		pairs, err := encoding.DecodeSparse(blob)
		if err != nil {
			return nil, artifact.WrapError("load_vectors", err)
		}
		v.Documents[seq].Vectors[field] = pairs
	}
	if err := vecRows.Err(); err != nil {
		return nil, artifact.WrapError("load_vectors", err)
	}
	return v, nil
}
