package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/futig/notes-answer/internal/entity"
	"github.com/futig/notes-answer/internal/pkg/similarity"
	"github.com/viant/sqlite-vec/vector"
	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

const notesSchema = `
CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	content    TEXT,
	embedding  BLOB,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

// OpenSQLite opens a SQLite database using the modernc.org/sqlite driver.
// In-memory databases are limited to one connection so every query sees the
// same database.
func OpenSQLite(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// NoteSQLite searches notes kept in a local SQLite file. Embeddings are
// stored as little-endian float32 BLOBs and compared in Go.
type NoteSQLite struct {
	db *sql.DB
}

func NewNoteSQLite(ctx context.Context, db *sql.DB) (*NoteSQLite, error) {
	if _, err := db.ExecContext(ctx, notesSchema); err != nil {
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &NoteSQLite{db: db}, nil
}

func (r *NoteSQLite) Search(ctx context.Context, embedding []float32, k int, scope entity.AuthScope) ([]entity.Match, error) {
	if err := checkSearch(embedding, k, scope); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, content, embedding FROM notes WHERE embedding IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("%w: query notes: %w", entity.ErrRetrieval, err)
	}
	defer rows.Close()

	var matches []entity.Match
	for rows.Next() {
		var (
			id      string
			content sql.NullString
			blob    []byte
		)
		if err := rows.Scan(&id, &content, &blob); err != nil {
			return nil, fmt.Errorf("%w: scan note: %w", entity.ErrRetrieval, err)
		}

		vec, err := vector.DecodeEmbedding(blob)
		if err != nil {
			return nil, fmt.Errorf("%w: note %s: %w", entity.ErrRetrieval, id, err)
		}
		// Notes embedded with another model are not comparable; skip them.
		if len(vec) != len(embedding) {
			continue
		}
		sim, err := vector.CosineSimilarity(embedding, vec)
		if err != nil {
			continue
		}

		matches = append(matches, entity.Match{ID: id, Content: content.String, Similarity: sim})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate notes: %w", entity.ErrRetrieval, err)
	}

	return similarity.RankMatches(matches, k), nil
}
