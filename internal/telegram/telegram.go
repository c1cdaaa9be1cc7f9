package telegram

import (
	"context"
	"fmt"

	"github.com/futig/notes-answer/internal/config"
	"github.com/futig/notes-answer/internal/telegram/bot"
	"github.com/futig/notes-answer/internal/telegram/handlers"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot authorizes against the Bot API and registers the command handlers
func NewBot(
	cfg *config.TelegramConfig,
	prompts config.Prompts,
	answerUC handlers.AnswerUsecase,
	suggestUC handlers.SuggestUsecase,
	logger *zap.Logger,
) (Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}
	api.Debug = false

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	b := bot.New(api, cfg, prompts, logger)
	registerHandlers(b, api, prompts, answerUC, suggestUC)

	logger.Info("telegram bot initialized successfully",
		zap.Int("allowed_chats", len(cfg.AllowedChatIDs)),
	)

	return b, nil
}

func registerHandlers(
	b *bot.Bot,
	api handlers.BotAPI,
	prompts config.Prompts,
	answerUC handlers.AnswerUsecase,
	suggestUC handlers.SuggestUsecase,
) {
	askHandler := handlers.NewAskHandler(api, answerUC, prompts)
	b.RegisterHandler(askHandler)
	b.RegisterTextHandler(askHandler)

	b.RegisterHandler(handlers.NewSimilarHandler(api, suggestUC, prompts))
	b.RegisterHandler(handlers.NewHelpHandler(api, prompts))
}
