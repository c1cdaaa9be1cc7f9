package middleware

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
)

// AllowlistMiddleware drops updates from chats that are not allowed to query
// the notes. The bot searches in privileged scope, so every chat that gets
// through sees the whole corpus.
type AllowlistMiddleware struct {
	allowed map[int64]struct{}
}

func NewAllowlistMiddleware(chatIDs []int64) *AllowlistMiddleware {
	allowed := make(map[int64]struct{}, len(chatIDs))
	for _, id := range chatIDs {
		allowed[id] = struct{}{}
	}
	return &AllowlistMiddleware{allowed: allowed}
}

func (m *AllowlistMiddleware) Handle(ctx context.Context, update tgbotapi.Update, next Next) {
	_, chatID := origin(update)
	if _, ok := m.allowed[chatID]; !ok {
		ctxzap.Warn(ctx, "update from chat outside allowlist dropped")
		return
	}
	next(ctx, update)
}
