package suggest

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/futig/notes-answer/internal/config"
	"github.com/futig/notes-answer/internal/entity"
	"github.com/futig/notes-answer/internal/pkg/logger"
	"github.com/futig/notes-answer/internal/usecase/common"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// SuggestUsecase decides whether a candidate text duplicates an existing
// note. It only informs the caller and never writes.
type SuggestUsecase struct {
	embedder Embedder
	store    VectorStore
	cfg      config.SuggestConfig
}

func NewSuggestUsecase(embedder Embedder, store VectorStore, cfg config.SuggestConfig) *SuggestUsecase {
	return &SuggestUsecase{embedder: embedder, store: store, cfg: cfg}
}

func (uc *SuggestUsecase) Suggest(ctx context.Context, req entity.SuggestRequest) (entity.DuplicateDecision, error) {
	ctx = logger.WithAction(ctx, "suggest_similar")

	minSimilarity := uc.cfg.MinSimilarity
	if req.MinSimilarity != nil {
		minSimilarity = *req.MinSimilarity
	}
	if minSimilarity < -1 || minSimilarity > 1 {
		return entity.DuplicateDecision{}, fmt.Errorf("%w: min_similarity must be between -1 and 1, got %g", entity.ErrValidation, minSimilarity)
	}
	topK, err := common.ResolveTopK(req.TopK, uc.cfg.DefaultTopK, uc.cfg.MaxTopK)
	if err != nil {
		return entity.DuplicateDecision{}, err
	}

	// Short texts are not worth an embedding call.
	text := strings.TrimSpace(req.Text)
	if utf8.RuneCountInString(text) < uc.cfg.MinTextLength {
		ctxzap.Debug(ctx, "text too short for duplicate check", zap.Int("runes", utf8.RuneCountInString(text)))
		return entity.DuplicateDecision{}, nil
	}

	if err := req.Scope.Validate(); err != nil {
		return entity.DuplicateDecision{}, err
	}

	vec, err := uc.embedder.Embed(ctx, text)
	if err != nil {
		return entity.DuplicateDecision{}, common.StageError(entity.ErrProvider, "embed text", err)
	}

	matches, err := uc.store.Search(ctx, vec, topK, req.Scope)
	if err != nil {
		return entity.DuplicateDecision{}, common.StageError(entity.ErrRetrieval, "search notes", err)
	}

	best, ok := bestMatch(matches)
	if !ok {
		ctxzap.Info(ctx, "no candidate notes")
		return entity.DuplicateDecision{}, nil
	}
	if best.Similarity < minSimilarity {
		ctxzap.Info(ctx, "best note below threshold",
			zap.Float64("similarity", best.Similarity),
			zap.Float64("min_similarity", minSimilarity),
		)
		return entity.DuplicateDecision{}, nil
	}

	ctxzap.Info(ctx, "possible duplicate found", zap.String("note_id", best.ID), zap.Float64("similarity", best.Similarity))

	best.Content = truncateRunes(best.Content, uc.cfg.PreviewLength)
	return entity.DuplicateDecision{Matched: true, Best: &best}, nil
}

// bestMatch returns the highest-similarity match, the earliest on ties.
func bestMatch(matches []entity.Match) (entity.Match, bool) {
	if len(matches) == 0 {
		return entity.Match{}, false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Similarity > best.Similarity {
			best = m
		}
	}
	return best, true
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
