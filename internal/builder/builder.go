package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/notes-answer/internal/api"
	answerapi "github.com/futig/notes-answer/internal/api/answer"
	"github.com/futig/notes-answer/internal/api/auth"
	suggestapi "github.com/futig/notes-answer/internal/api/suggest"
	"github.com/futig/notes-answer/internal/config"
	"github.com/futig/notes-answer/internal/entity"
	"github.com/futig/notes-answer/internal/telegram"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	pipeline, err := BuildPipeline(context.Background())
	if err != nil {
		return nil, err
	}
	return newApp(pipeline), nil
}

func newApp(p *Pipeline) *App {
	cfg, logger := p.Config, p.Logger

	if cfg.AccessScope == entity.ScopePrivileged && cfg.APIServiceToken == "" {
		logger.Warn("privileged deployment without API_SERVICE_TOKEN; keep the API on a trusted network")
	}

	// Setup API handlers
	authn := auth.NewAuthenticator(cfg.AccessScope, cfg.APIServiceToken)
	answerHandler := answerapi.NewHandler(p.Answer, authn, cfg.ExposeSourceContent)
	suggestHandler := suggestapi.NewHandler(p.Suggest, authn)
	logger.Info("API handlers initialized")

	// Setup router
	budget := cfg.RequestBudget()
	router := api.SetupRouter(answerHandler, suggestHandler, cfg.CORSAllowedOrigins, budget, logger)
	logger.Info("HTTP router configured", zap.Duration("request_budget", budget))

	// Create HTTP server
	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      budget + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	return &App{
		server:   server,
		pipeline: p,
		logger:   logger,
	}
}

// BuildTelegramBot creates and initializes the Telegram bot
func BuildTelegramBot() (telegram.Bot, *Pipeline, error) {
	pipeline, err := BuildPipeline(context.Background())
	if err != nil {
		return nil, nil, err
	}

	if err := config.ValidateTelegram(pipeline.Config); err != nil {
		pipeline.Close()
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}

	bot, err := telegram.NewBot(&pipeline.Config.TelegramCfg, pipeline.Config.Prompts, pipeline.Answer, pipeline.Suggest, pipeline.Logger)
	if err != nil {
		pipeline.Close()
		return nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	pipeline.Logger.Info("Telegram bot built successfully",
		zap.String("environment", pipeline.Config.Environment),
	)

	return bot, pipeline, nil
}
