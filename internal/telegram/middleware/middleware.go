package middleware

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Next continues the middleware chain
type Next func(ctx context.Context, update tgbotapi.Update)

// Sender is the subset of *tgbotapi.BotAPI used to notify users
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// origin returns the user and chat an update came from, zero when unknown.
func origin(update tgbotapi.Update) (userID, chatID int64) {
	if user := update.SentFrom(); user != nil {
		userID = user.ID
	}
	if chat := update.FromChat(); chat != nil {
		chatID = chat.ID
	}
	return userID, chatID
}
