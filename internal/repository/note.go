package repository

import (
	"context"

	"github.com/futig/notes-answer/internal/entity"
)

// NoteSearcher is implemented by the local vector stores. Both stores search
// every note and therefore accept only the privileged scope.
type NoteSearcher interface {
	Search(ctx context.Context, embedding []float32, k int, scope entity.AuthScope) ([]entity.Match, error)
}

var (
	_ NoteSearcher = &NotePostgres{}
	_ NoteSearcher = &NoteSQLite{}
)
