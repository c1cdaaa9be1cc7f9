package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/futig/notes-answer/internal/config"
	"github.com/futig/notes-answer/internal/telegram/handlers"
	"github.com/futig/notes-answer/internal/telegram/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// API is the subset of *tgbotapi.BotAPI the bot depends on
type API interface {
	handlers.BotAPI
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot represents the Telegram bot
type Bot struct {
	api         API
	cfg         *config.TelegramConfig
	prompts     config.Prompts
	handlers    map[string]handlers.Handler
	textHandler handlers.Handler
	logger      *zap.Logger
	allowlistMW *middleware.AllowlistMiddleware
	loggingMW   *middleware.LoggingMiddleware
	recoveryMW  *middleware.RecoveryMiddleware
	rateLimitMW *middleware.RateLimiterMiddleware
	sender      *handlers.MessageSender
	updatesChan tgbotapi.UpdatesChannel
	stopChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// New creates a new Telegram bot on top of an authorized API client
func New(api API, cfg *config.TelegramConfig, prompts config.Prompts, logger *zap.Logger) *Bot {
	return &Bot{
		api:         api,
		cfg:         cfg,
		prompts:     prompts,
		handlers:    make(map[string]handlers.Handler),
		logger:      logger,
		allowlistMW: middleware.NewAllowlistMiddleware(cfg.AllowedChatIDs),
		loggingMW:   middleware.NewLoggingMiddleware(logger),
		recoveryMW:  middleware.NewRecoveryMiddleware(api, prompts.BotError),
		rateLimitMW: middleware.NewRateLimiterMiddleware(
			cfg.RateLimitPerMinute,
			cfg.RateLimitBurst,
			api,
			prompts.BotRateLimited,
		),
		sender:   handlers.NewMessageSender(api),
		stopChan: make(chan struct{}),
	}
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	// Configure updates
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout

	b.updatesChan = b.api.GetUpdatesChan(u)

	// Add logger to context for processUpdates
	ctx = ctxzap.ToContext(ctx, b.logger)

	go b.processUpdates(ctx)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops the bot gracefully with timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	b.stopOnce.Do(func() {
		close(b.stopChan)
		b.api.StopReceivingUpdates()
	})

	// Wait for all active handlers to complete
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

// processUpdates processes incoming updates
func (b *Bot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				return
			}
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.HandleUpdate(ctx, u)
			}(update)
		}
	}
}

// HandleUpdate runs one update through the middleware chain
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	// Logging first so every later middleware logs with the request id
	b.loggingMW.Handle(ctx, update, func(ctx context.Context, u tgbotapi.Update) {
		b.allowlistMW.Handle(ctx, u, func(ctx context.Context, u tgbotapi.Update) {
			b.rateLimitMW.Handle(ctx, u, func(ctx context.Context, u tgbotapi.Update) {
				b.recoveryMW.Handle(ctx, u, b.route)
			})
		})
	})
}

// route dispatches a message to the handler of its command. Plain text is
// treated as a question.
func (b *Bot) route(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	if message == nil || message.From == nil {
		return
	}

	handler := b.textHandler
	text := message.Text
	if message.IsCommand() {
		command := message.Command()
		ctxzap.Info(ctx, "command received", zap.String("command", command))

		h, exists := b.handlers[command]
		if !exists {
			b.sendError(ctx, message.Chat.ID, b.prompts.BotHelp)
			return
		}
		handler = h
		text = message.CommandArguments()
	}
	if handler == nil {
		return
	}

	msg := &handlers.Message{
		ChatID:    message.Chat.ID,
		UserID:    message.From.ID,
		MessageID: message.MessageID,
		Text:      strings.TrimSpace(text),
	}

	if err := handler.Handle(ctx, msg); err != nil {
		ctxzap.Error(ctx, "handler error", zap.Error(err))
		b.sendError(ctx, message.Chat.ID, b.prompts.BotError)
	}
}

// sendError sends an error message
func (b *Bot) sendError(ctx context.Context, chatID int64, text string) {
	_ = b.sender.Send(ctx, chatID, text)
}

// RegisterHandler routes the handler's commands to it
func (b *Bot) RegisterHandler(handler handlers.Handler) {
	for _, command := range handler.Commands() {
		b.handlers[command] = handler
		b.logger.Info("handler registered", zap.String("command", command))
	}
}

// RegisterTextHandler handles messages that are not commands
func (b *Bot) RegisterTextHandler(handler handlers.Handler) {
	b.textHandler = handler
}
