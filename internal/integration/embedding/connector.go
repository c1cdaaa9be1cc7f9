package embedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/futig/notes-answer/internal/config"
	"github.com/futig/notes-answer/internal/entity"
	"github.com/futig/notes-answer/internal/integration/common"
	pkghttp "github.com/futig/notes-answer/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const embeddingsEndpoint = "/embeddings"

// Connector turns text into vectors using an OpenAI compatible embeddings API.
type Connector struct {
	model     string
	connector *pkghttp.Connector
}

func NewConnector(cfg config.OpenAIConfig, logger *zap.Logger) *Connector {
	return &Connector{
		model: cfg.EmbeddingModel,
		connector: common.NewBaseConnector(
			cfg.BaseURL, cfg.HTTPClientConfig, cfg.Retry, logger,
			pkghttp.WithAuthToken(cfg.APIKey),
		),
	}
}

// Embed returns the embedding of text. The vector is never empty on success.
func (c *Connector) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: cannot embed empty text", entity.ErrValidation)
	}

	ctxzap.Debug(ctx, "requesting embedding",
		zap.String("model", c.model),
		zap.Int("input_runes", len([]rune(text))),
	)

	req := entity.EmbeddingRequest{Model: c.model, Input: text}
	var resp entity.EmbeddingResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, embeddingsEndpoint, req, &resp); err != nil {
		return nil, fmt.Errorf("%w: embedding request failed: %w", entity.ErrProvider, err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: embedding response carried no vector", entity.ErrProvider)
	}

	vec := resp.Data[0].Embedding
	ctxzap.Debug(ctx, "embedding received", zap.Int("dimensions", len(vec)))

	return vec, nil
}
