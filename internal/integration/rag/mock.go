package rag

import (
	"context"
	"fmt"

	"github.com/futig/notes-answer/internal/entity"
	"github.com/futig/notes-answer/internal/integration/embedding"
	"github.com/futig/notes-answer/internal/pkg/similarity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/viant/sqlite-vec/vector"
	"go.uber.org/zap"
)

var mockNotes = []string{
	"Reunião com o time de produto: decidimos lançar a versão beta do aplicativo em março e coletar feedback por duas semanas.",
	"A chave reserva do apartamento fica na gaveta de cima da cômoda do quarto.",
	"Receita de bolo de cenoura: três cenouras, quatro ovos, uma xícara de óleo, duas xícaras de açúcar e duas de farinha. Forno a 180 graus por 40 minutos.",
	"Senha do wifi de casa foi trocada em janeiro; a nova está anotada no verso do roteador.",
	"Ideias para o livro: protagonista arquiteta, cidade litorânea, conflito com a construtora que quer demolir o farol.",
}

type mockNote struct {
	id        string
	content   string
	embedding []float32
}

// MockStore searches a small fixed set of notes in memory. Vectors come from
// embedding.HashEmbedding, so it pairs with the mock embedding connector.
type MockStore struct {
	notes  []mockNote
	logger *zap.Logger
}

func NewMockStore(logger *zap.Logger) *MockStore {
	notes := make([]mockNote, 0, len(mockNotes))
	for i, content := range mockNotes {
		notes = append(notes, mockNote{
			id:        uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("mock-note-%d", i))).String(),
			content:   content,
			embedding: embedding.HashEmbedding(content),
		})
	}
	return &MockStore{notes: notes, logger: logger}
}

func (m *MockStore) Search(ctx context.Context, query []float32, k int, scope entity.AuthScope) ([]entity.Match, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: match count must be positive, got %d", entity.ErrValidation, k)
	}
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "[MOCK] searching notes", zap.String("scope", string(scope.Mode)), zap.Int("match_count", k))

	matches := make([]entity.Match, 0, len(m.notes))
	for _, n := range m.notes {
		sim, err := vector.CosineSimilarity(query, n.embedding)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", entity.ErrRetrieval, err)
		}
		matches = append(matches, entity.Match{ID: n.id, Similarity: sim, Content: n.content})
	}

	return similarity.RankMatches(matches, k), nil
}
