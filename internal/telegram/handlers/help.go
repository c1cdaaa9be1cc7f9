package handlers

import (
	"context"

	"github.com/futig/notes-answer/internal/config"
)

// HelpHandler answers /start and /help
type HelpHandler struct {
	BaseHandler
	prompts config.Prompts
}

func NewHelpHandler(bot BotAPI, prompts config.Prompts) *HelpHandler {
	return &HelpHandler{
		BaseHandler: BaseHandler{
			commands:      []string{CommandStart, CommandHelp},
			messageSender: NewMessageSender(bot),
		},
		prompts: prompts,
	}
}

func (h *HelpHandler) Handle(ctx context.Context, msg *Message) error {
	h.sendMessage(ctx, msg.ChatID, h.prompts.BotHelp)
	return nil
}
