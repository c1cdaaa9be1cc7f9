package llm

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

const chatCompletionsEndpoint = "/chat/completions"

// Connector talks to an OpenAI compatible chat completions API.
type Connector struct {
	config    config.OpenAIConfig
	connector *pkghttp.Connector
}

func NewConnector(cfg config.OpenAIConfig, logger *zap.Logger) *Connector {
	return &Connector{
		config: cfg,
		connector: common.NewBaseConnector(
			cfg.BaseURL, cfg.HTTPClientConfig, cfg.Retry, logger,
			pkghttp.WithAuthToken(cfg.APIKey),
		),
	}
}

// Complete sends the conversation and returns the trimmed text of the first
// choice. An empty string is a valid result; callers decide on a fallback.
func (c *Connector) Complete(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	ctxzap.Info(ctx, "requesting chat completion",
		zap.String("model", c.config.ChatModel),
		zap.Int("messages", len(messages)),
	)

	req := entity.ChatCompletionRequest{
		Model:       c.config.ChatModel,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		Messages:    messages,
	}

	var resp entity.ChatCompletionResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, chatCompletionsEndpoint, req, &resp); err != nil {
		return "", fmt.Errorf("%w: chat completion failed: %w", entity.ErrProvider, err)
	}

	if len(resp.Choices) == 0 {
		ctxzap.Warn(ctx, "chat completion returned no choices")
		return "", nil
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	ctxzap.Info(ctx, "chat completion received",
		zap.Int("answer_runes", len([]rune(answer))),
		zap.String("finish_reason", resp.Choices[0].FinishReason),
	)

	return answer, nil
}
