package similarity

import (
	"math"
	"testing"

	"github.com/futig/notes-answer/internal/entity"
	"github.com/viant/sqlite-vec/vector"
)

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	Normalize(v)
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("normalized = %v", v)
	}

	zero := []float32{0, 0}
	Normalize(zero)
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector changed: %v", zero)
	}
}

func TestNormalize_KeepsDirection(t *testing.T) {
	a := []float32{2, 1, 0}
	b := []float32{2, 1, 0}
	Normalize(b)

	sim, err := vector.CosineSimilarity(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(sim-1) > 1e-6 {
		t.Errorf("similarity to original = %v, want 1", sim)
	}
}

func TestRankMatches(t *testing.T) {
	matches := []entity.Match{
		{ID: "a", Similarity: 0.5},
		{ID: "b", Similarity: 0.9},
		{ID: "c", Similarity: 0.5},
		{ID: "d", Similarity: 0.7},
	}
	got := RankMatches(matches, 3)
	want := []string{"b", "d", "a"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("got[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}
