package handlers

import (
	"context"
	"errors"
	"time"

	pkgRetry "github.com/futig/notes-answer/internal/pkg/retry"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Telegram rejects messages longer than this many characters
const maxMessageRunes = 4096

var sendRetry = &pkgRetry.RetryConfig{
	Attempts: 3,
	Delay:    500 * time.Millisecond,
	MaxDelay: 2 * time.Second,
}

// MessageSender provides centralized message sending functionality
type MessageSender struct {
	bot BotAPI
}

// NewMessageSender creates a new MessageSender
func NewMessageSender(bot BotAPI) *MessageSender {
	return &MessageSender{bot: bot}
}

// Send sends a message to the specified chat
func (s *MessageSender) Send(ctx context.Context, chatID int64, text string) error {
	return s.send(ctx, tgbotapi.NewMessage(chatID, clip(text)))
}

// Reply sends a message quoting replyTo
func (s *MessageSender) Reply(ctx context.Context, chatID int64, replyTo int, text string) error {
	msg := tgbotapi.NewMessage(chatID, clip(text))
	msg.ReplyToMessageID = replyTo
	return s.send(ctx, msg)
}

// send retries transient delivery failures. Errors from the Bot API itself,
// such as a blocked bot or a bad request, are not retried.
func (s *MessageSender) send(ctx context.Context, msg tgbotapi.MessageConfig) error {
	attempt := 0
	err := pkgRetry.Do(ctx, sendRetry, isTransientSendError, func() error {
		attempt++
		_, err := s.bot.Send(msg)
		if err != nil && attempt < int(sendRetry.Attempts) && isTransientSendError(err) {
			ctxzap.Warn(ctx, "failed to send message, retrying",
				zap.Error(err),
				zap.Int("attempt", attempt),
				zap.Int64("chat_id", msg.ChatID),
			)
		}
		return err
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send message",
			zap.Error(err),
			zap.Int("attempts", attempt),
			zap.Int64("chat_id", msg.ChatID),
		)
	}
	return err
}

func isTransientSendError(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.RetryAfter > 0
	}
	return true
}

func clip(text string) string {
	runes := []rune(text)
	if len(runes) <= maxMessageRunes {
		return text
	}
	return string(runes[:maxMessageRunes-1]) + "…"
}
