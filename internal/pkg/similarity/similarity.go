// Package similarity ranks retrieval results and prepares local embeddings.
// Distance math and BLOB encoding come from github.com/viant/sqlite-vec/vector.
package similarity

import (
	"math"
	"sort"

	"github.com/futig/notes-answer/internal/entity"
)

// Normalize scales v to unit length in place. Zero vectors are left as is.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}

// RankMatches orders matches by descending similarity, keeping the backend
// order for ties, and truncates to k.
func RankMatches(matches []entity.Match, k int) []entity.Match {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if k >= 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches
}
