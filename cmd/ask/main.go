// Command ask queries the notes from the terminal using the same pipeline as
// the HTTP API.
//
//	ask -question "onde fica a chave reserva?"
//	ask -similar "bolo de cenoura com três ovos" -min-similarity 0.75
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/futig/notes-answer/internal/builder"
	"github.com/futig/notes-answer/internal/entity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

var (
	question      = flag.String("question", "", "question to answer from the notes")
	similar       = flag.String("similar", "", "draft note text to check for duplicates")
	token         = flag.String("token", "", "caller bearer token, required when ACCESS_SCOPE=caller-restricted")
	topK          = flag.Int("top-k", 0, "number of notes to retrieve (0 uses the configured default)")
	minSimilarity = flag.Float64("min-similarity", 0.8, "duplicate threshold in [-1, 1]; when unset the configured default applies")
	_             = flag.String("env", "local", "Environment to run (local, prod, or custom)")
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	dimColor    = color.New(color.Faint)
	errorColor  = color.New(color.FgRed, color.Bold)
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	if (*question == "") == (*similar == "") {
		errorColor.Fprintln(os.Stderr, "exactly one of -question or -similar is required")
		flag.Usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := builder.BuildPipeline(ctx)
	if err != nil {
		errorColor.Fprintln(os.Stderr, err)
		return 1
	}
	defer pipeline.Close()
	defer func() { _ = pipeline.Logger.Sync() }()

	scope, err := callerScope(pipeline.Config.AccessScope, *token)
	if err != nil {
		errorColor.Fprintln(os.Stderr, err)
		return 2
	}

	logger := pipeline.Logger.With(zap.String("request_id", uuid.NewString()))
	ctx = ctxzap.ToContext(ctx, logger)

	if *question != "" {
		err = ask(ctx, pipeline, scope)
	} else {
		err = suggest(ctx, pipeline, scope)
	}
	if err != nil {
		errorColor.Fprintln(os.Stderr, describe(err))
		return 1
	}
	return 0
}

func callerScope(mode entity.AccessScope, bearer string) (entity.AuthScope, error) {
	if mode == entity.ScopePrivileged {
		return entity.PrivilegedScope(), nil
	}
	if strings.TrimSpace(bearer) == "" {
		return entity.AuthScope{}, fmt.Errorf("-token is required when ACCESS_SCOPE=%s", mode)
	}
	return entity.RestrictedScope(bearer), nil
}

func ask(ctx context.Context, p *builder.Pipeline, scope entity.AuthScope) error {
	result, err := p.Answer.Answer(ctx, entity.AnswerRequest{
		Question: *question,
		TopK:     *topK,
		Scope:    scope,
	})
	if err != nil {
		return err
	}

	fmt.Println(result.Answer)
	if len(result.Sources) == 0 {
		return nil
	}

	fmt.Println()
	headerColor.Println(p.Config.Prompts.BotSourcesHeader)
	for _, s := range result.Sources {
		fmt.Printf("%2d. %s ", s.Rank, s.Title)
		dimColor.Printf("(%.3f, %s)\n", s.Similarity, s.ID)
	}
	return nil
}

func suggest(ctx context.Context, p *builder.Pipeline, scope entity.AuthScope) error {
	req := entity.SuggestRequest{
		Text:  *similar,
		TopK:  *topK,
		Scope: scope,
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "min-similarity" {
			req.MinSimilarity = minSimilarity
		}
	})

	decision, err := p.Suggest.Suggest(ctx, req)
	if err != nil {
		return err
	}

	if !decision.Matched {
		fmt.Println(p.Config.Prompts.BotNoDuplicate)
		return nil
	}

	headerColor.Printf("%s (%.3f)\n", p.Config.Prompts.BotDuplicateFound, decision.Best.Similarity)
	dimColor.Println(decision.Best.ID)
	fmt.Println(decision.Best.Content)
	return nil
}

func describe(err error) string {
	switch {
	case errors.Is(err, entity.ErrValidation):
		return "invalid input: " + err.Error()
	case errors.Is(err, entity.ErrAuthorization):
		return "not authorized: " + err.Error()
	default:
		return err.Error()
	}
}
