package middleware

import (
	"context"
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// RecoveryMiddleware recovers from panics
type RecoveryMiddleware struct {
	bot       Sender
	errorText string
}

// NewRecoveryMiddleware creates a new recovery middleware. errorText is
// sent to the chat whose update caused the panic.
func NewRecoveryMiddleware(bot Sender, errorText string) *RecoveryMiddleware {
	return &RecoveryMiddleware{
		bot:       bot,
		errorText: errorText,
	}
}

// Handle recovers from panics
func (m *RecoveryMiddleware) Handle(ctx context.Context, update tgbotapi.Update, next Next) {
	defer func() {
		if r := recover(); r != nil {
			ctxzap.Error(ctx, "panic recovered in telegram handler",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
			)

			if _, chatID := origin(update); chatID != 0 {
				if _, err := m.bot.Send(tgbotapi.NewMessage(chatID, m.errorText)); err != nil {
					ctxzap.Error(ctx, "failed to send error message",
						zap.Error(err),
						zap.Int64("chat_id", chatID),
					)
				}
			}
		}
	}()

	next(ctx, update)
}
