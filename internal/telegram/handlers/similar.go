package handlers

import (
	"context"
	"fmt"

	"github.com/futig/notes-answer/internal/config"
	"github.com/futig/notes-answer/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// SimilarHandler checks a draft note against existing notes
type SimilarHandler struct {
	BaseHandler
	bot       BotAPI
	suggestUC SuggestUsecase
	prompts   config.Prompts
}

func NewSimilarHandler(bot BotAPI, suggestUC SuggestUsecase, prompts config.Prompts) *SimilarHandler {
	return &SimilarHandler{
		BaseHandler: BaseHandler{
			commands:      []string{CommandSimilar},
			messageSender: NewMessageSender(bot),
		},
		bot:       bot,
		suggestUC: suggestUC,
		prompts:   prompts,
	}
}

func (h *SimilarHandler) Handle(ctx context.Context, msg *Message) error {
	if isBlank(msg.Text) {
		h.replyTo(ctx, msg, h.prompts.BotEmptyQuestion)
		return nil
	}

	typing := StartTyping(ctx, h.bot, msg.ChatID)
	decision, err := h.suggestUC.Suggest(ctx, entity.SuggestRequest{
		Text:  msg.Text,
		Scope: entity.PrivilegedScope(),
	})
	typing.Stop()
	if err != nil {
		return fmt.Errorf("suggest similar: %w", err)
	}

	if !decision.Matched || decision.Best == nil {
		h.replyTo(ctx, msg, h.prompts.BotNoDuplicate)
		return nil
	}

	ctxzap.Info(ctx, "duplicate found",
		zap.String("note_id", decision.Best.ID),
		zap.Float64("similarity", decision.Best.Similarity),
	)

	text := fmt.Sprintf("%s (%.0f%%):\n\n%s",
		h.prompts.BotDuplicateFound, decision.Best.Similarity*100, decision.Best.Content)
	h.replyTo(ctx, msg, text)
	return nil
}
