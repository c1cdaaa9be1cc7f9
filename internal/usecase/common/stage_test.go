package common

import (
	"errors"
	"testing"

	"github.com/futig/notes-answer/internal/entity"
)

func TestResolveTopK(t *testing.T) {
	tests := []struct {
		name    string
		k       int
		want    int
		wantErr bool
	}{
		{name: "default", k: 0, want: 5},
		{name: "explicit", k: 3, want: 3},
		{name: "clamped", k: 50, want: 20},
		{name: "negative", k: -1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTopK(tt.k, 5, 20)
			if tt.wantErr {
				if !errors.Is(err, entity.ErrValidation) {
					t.Fatalf("err = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStageError(t *testing.T) {
	raw := errors.New("connection reset")
	err := StageError(entity.ErrRetrieval, "search notes", raw)
	if !errors.Is(err, entity.ErrRetrieval) || !errors.Is(err, raw) {
		t.Errorf("unknown error not tagged: %v", err)
	}

	auth := StageError(entity.ErrRetrieval, "search notes", entity.ErrAuthorization)
	if !errors.Is(auth, entity.ErrAuthorization) || errors.Is(auth, entity.ErrRetrieval) {
		t.Errorf("domain error should keep its sentinel: %v", auth)
	}
}
