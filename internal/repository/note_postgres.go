package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/futig/notes-answer/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const matchDocumentsQuery = `SELECT id, content, similarity FROM match_documents($1::text::vector, $2)`

// NotePostgres searches notes stored in a pgvector enabled database.
type NotePostgres struct {
	db *pgxpool.Pool
}

func NewNotePostgres(db *pgxpool.Pool) *NotePostgres {
	return &NotePostgres{db: db}
}

func (r *NotePostgres) Search(ctx context.Context, embedding []float32, k int, scope entity.AuthScope) ([]entity.Match, error) {
	if err := checkSearch(embedding, k, scope); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, matchDocumentsQuery, vectorLiteral(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("%w: match documents: %w", entity.ErrRetrieval, err)
	}

	matches, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Match, error) {
		var (
			id         pgtype.UUID
			content    pgtype.Text
			similarity pgtype.Float8
		)
		if err := row.Scan(&id, &content, &similarity); err != nil {
			return entity.Match{}, err
		}
		return entity.Match{
			ID:         uuid.UUID(id.Bytes).String(),
			Content:    content.String,
			Similarity: similarity.Float64,
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scan matches: %w", entity.ErrRetrieval, err)
	}

	return matches, nil
}

// vectorLiteral renders the pgvector text form, e.g. [0.1,0.2].
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.Grow(len(v)*10 + 2)
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

func checkSearch(embedding []float32, k int, scope entity.AuthScope) error {
	if k < 1 {
		return fmt.Errorf("%w: match count must be positive, got %d", entity.ErrValidation, k)
	}
	if len(embedding) == 0 {
		return fmt.Errorf("%w: empty query embedding", entity.ErrValidation)
	}
	if scope.Mode != entity.ScopePrivileged {
		return fmt.Errorf("%w: local vector stores serve only the privileged scope, got %q", entity.ErrInternal, scope.Mode)
	}
	return nil
}
