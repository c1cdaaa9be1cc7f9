package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/futig/notes-answer/internal/entity"
	"github.com/futig/notes-answer/internal/pkg/similarity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockDimensions is the size of vectors produced by MockConnector.
const MockDimensions = 64

// MockConnector embeds text locally by hashing its words into a fixed-size
// bag of words. Texts sharing words end up close in cosine space, which is
// enough to exercise retrieval without a provider.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (m *MockConnector) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := HashEmbedding(text)
	if vec == nil {
		return nil, fmt.Errorf("%w: cannot embed empty text", entity.ErrValidation)
	}
	ctxzap.Debug(ctx, "[MOCK] embedding computed", zap.Int("dimensions", len(vec)))
	return vec, nil
}

// HashEmbedding returns a unit-length vector for text, or nil when text has
// no words.
func HashEmbedding(text string) []float32 {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return nil
	}

	vec := make([]float32, MockDimensions)
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%MockDimensions]++
	}
	similarity.Normalize(vec)
	return vec
}
