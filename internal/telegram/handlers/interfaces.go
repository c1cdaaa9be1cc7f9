package handlers

import (
	"context"

	"github.com/futig/notes-answer/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// AnswerUsecase answers questions over the notes corpus
type AnswerUsecase interface {
	Answer(ctx context.Context, req entity.AnswerRequest) (*entity.AnswerResult, error)
}

// SuggestUsecase finds a near-duplicate of a draft note
type SuggestUsecase interface {
	Suggest(ctx context.Context, req entity.SuggestRequest) (entity.DuplicateDecision, error)
}

// BotAPI is the subset of *tgbotapi.BotAPI used by handlers
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}
