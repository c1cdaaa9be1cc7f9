package answer

import (
	"context"

	"github.com/futig/notes-answer/internal/entity"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	Search(ctx context.Context, embedding []float32, k int, scope entity.AuthScope) ([]entity.Match, error)
}

type ChatModel interface {
	Complete(ctx context.Context, messages []entity.ChatMessage) (string, error)
}
