package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/futig/notes-answer/internal/entity"
	"github.com/viant/sqlite-vec/vector"
)

func newTestSQLite(t *testing.T) *NoteSQLite {
	t.Helper()
	db, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo, err := NewNoteSQLite(context.Background(), db)
	if err != nil {
		t.Fatalf("NewNoteSQLite: %v", err)
	}

	notes := []struct {
		id        string
		content   any
		embedding []float32
	}{
		{"n1", "hello", []float32{1, 0, 0}},
		{"n2", "world", []float32{0, 1, 0}},
		{"n3", nil, []float32{0.9, 0.1, 0}},
		{"n4", "other model", []float32{1, 0}},
	}
	for _, n := range notes {
		blob, err := vector.EncodeEmbedding(n.embedding)
		if err != nil {
			t.Fatalf("encode %s: %v", n.id, err)
		}
		if _, err := db.Exec(`INSERT INTO notes (id, content, embedding) VALUES (?, ?, ?)`,
			n.id, n.content, blob); err != nil {
			t.Fatalf("insert %s: %v", n.id, err)
		}
	}
	return repo
}

func TestNoteSQLite_Search(t *testing.T) {
	repo := newTestSQLite(t)

	matches, err := repo.Search(context.Background(), []float32{1, 0, 0}, 2, entity.PrivilegedScope())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("len = %d, want 2", len(matches))
	}
	if matches[0].ID != "n1" || matches[0].Content != "hello" {
		t.Errorf("first = %+v, want n1", matches[0])
	}
	if matches[1].ID != "n3" || matches[1].Content != "" {
		t.Errorf("second = %+v, want n3 with empty content", matches[1])
	}
	if matches[0].Similarity < matches[1].Similarity {
		t.Error("matches not ordered by similarity")
	}
}

func TestNoteSQLite_SearchSkipsMismatchedDimensions(t *testing.T) {
	repo := newTestSQLite(t)

	matches, err := repo.Search(context.Background(), []float32{1, 0, 0}, 10, entity.PrivilegedScope())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, m := range matches {
		if m.ID == "n4" {
			t.Error("note with different dimensions should be skipped")
		}
	}
	if len(matches) != 3 {
		t.Errorf("len = %d, want 3", len(matches))
	}
}

func TestNoteSQLite_SearchRejects(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	if _, err := repo.Search(ctx, []float32{1, 0, 0}, 1, entity.RestrictedScope("token")); !errors.Is(err, entity.ErrInternal) {
		t.Errorf("restricted scope: err = %v, want ErrInternal", err)
	}
	if _, err := repo.Search(ctx, []float32{1, 0, 0}, 0, entity.PrivilegedScope()); !errors.Is(err, entity.ErrValidation) {
		t.Errorf("k=0: err = %v, want ErrValidation", err)
	}
	if _, err := repo.Search(ctx, nil, 1, entity.PrivilegedScope()); !errors.Is(err, entity.ErrValidation) {
		t.Errorf("empty embedding: err = %v, want ErrValidation", err)
	}
}

func TestVectorLiteral(t *testing.T) {
	if got := vectorLiteral([]float32{0.5, -1, 2.25}); got != "[0.5,-1,2.25]" {
		t.Errorf("vectorLiteral = %s", got)
	}
	if got := vectorLiteral(nil); got != "[]" {
		t.Errorf("vectorLiteral(nil) = %s", got)
	}
}
