package builder

import (
	"context"
	"fmt"

	"github.com/futig/notes-answer/internal/config"
	"github.com/futig/notes-answer/internal/integration/rag"
	"github.com/futig/notes-answer/internal/repository"
	"github.com/futig/notes-answer/internal/usecase/answer"
	"go.uber.org/zap"
)

// setupVectorStore builds the retrieval backend selected by configuration.
// The returned closer releases the backend's connections.
func setupVectorStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (answer.VectorStore, func(), error) {
	noop := func() {}

	if cfg.EnableMocks {
		logger.Info("Using mock vector store")
		return rag.NewMockStore(logger), noop, nil
	}

	switch cfg.VectorBackend {
	case config.BackendSupabase:
		store, err := rag.NewSupabaseStore(cfg.SupabaseCfg, cfg.AccessScope, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("create supabase store: %w", err)
		}
		logger.Info("Using supabase vector store",
			zap.String("url", cfg.SupabaseCfg.URL),
			zap.String("scope", string(cfg.AccessScope)),
		)
		return store, noop, nil

	case config.BackendPostgres:
		db, err := setupDatabase(ctx, cfg.PostgresCfg, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("setup database: %w", err)
		}
		if cfg.PostgresCfg.RunMigrations {
			logger.Info("Running database migrations", zap.String("source", cfg.PostgresCfg.MigrationsSource))
			if err := repository.RunMigrations(cfg.PostgresCfg.MigrationsSource, cfg.PostgresCfg.DatabaseURL); err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("run migrations: %w", err)
			}
			logger.Info("Database migrations completed successfully")
		}
		return repository.NewNotePostgres(db), db.Close, nil

	case config.BackendSQLite:
		db, err := repository.OpenSQLite(cfg.SQLiteCfg.Path)
		if err != nil {
			return nil, nil, err
		}
		store, err := repository.NewNoteSQLite(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("Using sqlite vector store", zap.String("path", cfg.SQLiteCfg.Path))
		return store, func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown vector backend %q", cfg.VectorBackend)
	}
}
