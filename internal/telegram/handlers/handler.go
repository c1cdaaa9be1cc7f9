package handlers

import (
	"context"
	"strings"
)

// Bot commands
const (
	CommandStart   = "start"
	CommandHelp    = "help"
	CommandAsk     = "ask"
	CommandSimilar = "similar"
)

// Message represents a normalized Telegram message
type Message struct {
	ChatID    int64
	UserID    int64
	MessageID int
	// Text is the message text with the command stripped
	Text string
}

// Handler processes one bot command
type Handler interface {
	Handle(ctx context.Context, msg *Message) error

	// Commands returns the commands routed to this handler
	Commands() []string
}

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	commands      []string
	messageSender *MessageSender
}

// Commands implements Handler
func (h *BaseHandler) Commands() []string {
	return h.commands
}

// sendMessage is a convenience wrapper for messageSender.Send
func (h *BaseHandler) sendMessage(ctx context.Context, chatID int64, text string) {
	if h.messageSender != nil {
		_ = h.messageSender.Send(ctx, chatID, text)
	}
}

// replyTo quotes the original message when it is known
func (h *BaseHandler) replyTo(ctx context.Context, msg *Message, text string) {
	if h.messageSender != nil {
		_ = h.messageSender.Reply(ctx, msg.ChatID, msg.MessageID, text)
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
