package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/notes-answer/internal/config"
	"github.com/futig/notes-answer/internal/entity"
	"github.com/futig/notes-answer/internal/pkg/logger"
	"github.com/futig/notes-answer/internal/usecase/common"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// AnswerUsecase runs the answering pipeline: embed the question, search the
// caller's notes, assemble the context and generate the answer. Stages run
// strictly in sequence and the first failure ends the request.
type AnswerUsecase struct {
	embedder  Embedder
	store     VectorStore
	assembler *Assembler
	generator *Generator
	cfg       config.AnswerConfig
	prompts   config.Prompts
}

func NewAnswerUsecase(
	embedder Embedder,
	store VectorStore,
	chat ChatModel,
	cfg *config.Config,
) *AnswerUsecase {
	return &AnswerUsecase{
		embedder:  embedder,
		store:     store,
		assembler: NewAssembler(cfg.ContextCfg, cfg.Prompts, cfg.CitationPolicy),
		generator: NewGenerator(chat, cfg.Prompts, cfg.CitationPolicy),
		cfg:       cfg.AnswerCfg,
		prompts:   cfg.Prompts,
	}
}

func (uc *AnswerUsecase) Answer(ctx context.Context, req entity.AnswerRequest) (*entity.AnswerResult, error) {
	ctx = logger.WithAction(ctx, "answer_question")

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question must not be empty", entity.ErrValidation)
	}
	topK, err := common.ResolveTopK(req.TopK, uc.cfg.DefaultTopK, uc.cfg.MaxTopK)
	if err != nil {
		return nil, err
	}
	if err := req.Scope.Validate(); err != nil {
		return nil, err
	}

	ctx = logger.AddFields(ctx,
		zap.Int("top_k", topK),
		zap.String("scope", string(req.Scope.Mode)),
	)
	ctxzap.Info(ctx, "answering question", zap.Int("question_runes", len([]rune(question))))

	vec, err := uc.embedder.Embed(ctx, question)
	if err != nil {
		return nil, common.StageError(entity.ErrProvider, "embed question", err)
	}

	matches, err := uc.store.Search(ctx, vec, topK, req.Scope)
	if err != nil {
		return nil, common.StageError(entity.ErrRetrieval, "search notes", err)
	}

	if len(matches) == 0 {
		ctxzap.Info(ctx, "no matching notes")
		return &entity.AnswerResult{Answer: uc.prompts.InsufficientAnswer, Sources: []entity.Source{}}, nil
	}

	ctxzap.Info(ctx, "notes retrieved",
		zap.Int("count", len(matches)),
		zap.Float64("best_similarity", matches[0].Similarity),
	)

	block, sources := uc.assembler.Assemble(matches)

	answer, err := uc.generator.Generate(ctx, question, block)
	if err != nil {
		return nil, common.StageError(entity.ErrProvider, "generate answer", err)
	}

	ctxzap.Info(ctx, "answer generated", zap.Int("sources", len(sources)))

	return &entity.AnswerResult{Answer: answer, Sources: sources}, nil
}
