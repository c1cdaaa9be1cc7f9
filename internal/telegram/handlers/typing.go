package handlers

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Telegram typing action expires after 5 seconds
const typingInterval = 4 * time.Second

// TypingNotifier sends periodic "typing" actions while the pipeline runs
type TypingNotifier struct {
	bot    BotAPI
	chatID int64
	done   chan struct{}
	once   sync.Once
}

// StartTyping sends a typing action immediately and keeps refreshing it
// until Stop is called or ctx is done.
func StartTyping(ctx context.Context, bot BotAPI, chatID int64) *TypingNotifier {
	t := &TypingNotifier{
		bot:    bot,
		chatID: chatID,
		done:   make(chan struct{}),
	}

	t.sendAction(ctx)

	go func() {
		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.sendAction(ctx)
			case <-t.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return t
}

// Stop stops sending typing indicators. Safe to call more than once.
func (t *TypingNotifier) Stop() {
	t.once.Do(func() { close(t.done) })
}

func (t *TypingNotifier) sendAction(ctx context.Context) {
	action := tgbotapi.NewChatAction(t.chatID, tgbotapi.ChatTyping)
	if _, err := t.bot.Request(action); err != nil {
		ctxzap.Warn(ctx, "failed to send typing action",
			zap.Error(err),
			zap.Int64("chat_id", t.chatID),
		)
	}
}
