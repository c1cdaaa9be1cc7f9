package builder

import (
	"context"
	"fmt"

	"github.com/futig/notes-answer/internal/config"
	"github.com/futig/notes-answer/internal/integration/embedding"
	"github.com/futig/notes-answer/internal/integration/llm"
	"github.com/futig/notes-answer/internal/usecase/answer"
	"github.com/futig/notes-answer/internal/usecase/suggest"
	"go.uber.org/zap"
)

// Pipeline holds the use cases shared by the HTTP API, the Telegram bot
// and the CLI.
type Pipeline struct {
	Config  *config.Config
	Logger  *zap.Logger
	Answer  *answer.AnswerUsecase
	Suggest *suggest.SuggestUsecase

	closeStore func()
}

// Close releases backend connections.
func (p *Pipeline) Close() {
	if p.closeStore != nil {
		p.closeStore()
	}
}

// BuildPipeline loads configuration and wires the answering and duplicate
// suggestion use cases.
func BuildPipeline(ctx context.Context) (*Pipeline, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	return newPipeline(ctx, cfg, logger)
}

func newPipeline(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	logger.Info("Building pipeline",
		zap.String("environment", cfg.Environment),
		zap.String("access_scope", string(cfg.AccessScope)),
		zap.String("citation_policy", string(cfg.CitationPolicy)),
		zap.String("vector_backend", cfg.VectorBackend),
		zap.Bool("mocks", cfg.EnableMocks),
	)

	// Initialize external service connectors (with mock support)
	var embedder answer.Embedder
	var chat answer.ChatModel

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		embedder = embedding.NewMockConnector(logger)
		chat = llm.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services",
			zap.String("embedding_model", cfg.OpenAICfg.EmbeddingModel),
			zap.String("chat_model", cfg.OpenAICfg.ChatModel),
		)
		embedder = embedding.NewConnector(cfg.OpenAICfg, logger)
		chat = llm.NewConnector(cfg.OpenAICfg, logger)
	}

	store, closeStore, err := setupVectorStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup vector store: %w", err)
	}

	// Initialize use cases
	answerUC := answer.NewAnswerUsecase(embedder, store, chat, cfg)
	suggestUC := suggest.NewSuggestUsecase(embedder, store, cfg.SuggestCfg)
	logger.Info("Use cases initialized")

	return &Pipeline{
		Config:     cfg,
		Logger:     logger,
		Answer:     answerUC,
		Suggest:    suggestUC,
		closeStore: closeStore,
	}, nil
}
