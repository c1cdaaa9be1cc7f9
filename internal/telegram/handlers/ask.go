package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/notes-answer/internal/config"
	"github.com/futig/notes-answer/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// AskHandler runs the answering pipeline for /ask and plain text messages
type AskHandler struct {
	BaseHandler
	bot      BotAPI
	answerUC AnswerUsecase
	prompts  config.Prompts
}

func NewAskHandler(bot BotAPI, answerUC AnswerUsecase, prompts config.Prompts) *AskHandler {
	return &AskHandler{
		BaseHandler: BaseHandler{
			commands:      []string{CommandAsk},
			messageSender: NewMessageSender(bot),
		},
		bot:      bot,
		answerUC: answerUC,
		prompts:  prompts,
	}
}

func (h *AskHandler) Handle(ctx context.Context, msg *Message) error {
	if isBlank(msg.Text) {
		h.replyTo(ctx, msg, h.prompts.BotEmptyQuestion)
		return nil
	}

	typing := StartTyping(ctx, h.bot, msg.ChatID)
	result, err := h.answerUC.Answer(ctx, entity.AnswerRequest{
		Question: msg.Text,
		Scope:    entity.PrivilegedScope(),
	})
	typing.Stop()
	if err != nil {
		return fmt.Errorf("answer question: %w", err)
	}

	ctxzap.Info(ctx, "question answered",
		zap.Int("sources", len(result.Sources)),
	)

	h.replyTo(ctx, msg, renderAnswer(result, h.prompts.BotSourcesHeader))
	return nil
}

// renderAnswer appends the consulted note titles to the answer text.
func renderAnswer(result *entity.AnswerResult, sourcesHeader string) string {
	if len(result.Sources) == 0 {
		return result.Answer
	}

	var b strings.Builder
	b.WriteString(result.Answer)
	b.WriteString("\n\n")
	b.WriteString(sourcesHeader)
	for _, s := range result.Sources {
		fmt.Fprintf(&b, "\n%d. %s (%.0f%%)", s.Rank, s.Title, s.Similarity*100)
	}
	return b.String()
}
