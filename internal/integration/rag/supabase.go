package rag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/futig/notes-answer/internal/config"
	"github.com/futig/notes-answer/internal/entity"
	"github.com/futig/notes-answer/internal/integration/common"
	"github.com/futig/notes-answer/internal/pkg/similarity"
	pkghttp "github.com/futig/notes-answer/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const rpcPath = "/rest/v1/rpc/"

// SupabaseStore runs vector search through the PostgREST RPC endpoint of a
// Supabase project. The store is bound to one access scope at construction
// and refuses requests for any other scope.
type SupabaseStore struct {
	cfg       config.SupabaseConfig
	mode      entity.AccessScope
	connector *pkghttp.Connector
}

func NewSupabaseStore(cfg config.SupabaseConfig, mode entity.AccessScope, logger *zap.Logger) (*SupabaseStore, error) {
	if cfg.URL == "" {
		return nil, errors.New("supabase url is required")
	}
	switch mode {
	case entity.ScopeCallerRestricted:
		if cfg.AnonKey == "" {
			return nil, errors.New("supabase anon key is required for caller-restricted scope")
		}
	case entity.ScopePrivileged:
		if cfg.ServiceRoleKey == "" {
			return nil, errors.New("supabase service role key is required for privileged scope")
		}
	default:
		return nil, fmt.Errorf("unknown access scope %q", mode)
	}

	return &SupabaseStore{
		cfg:       cfg,
		mode:      mode,
		connector: common.NewBaseConnector(cfg.URL, cfg.HTTPClientConfig, cfg.Retry, logger),
	}, nil
}

// Search returns at most k notes ordered by descending similarity.
func (s *SupabaseStore) Search(ctx context.Context, embedding []float32, k int, scope entity.AuthScope) ([]entity.Match, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: match count must be positive, got %d", entity.ErrValidation, k)
	}
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if scope.Mode != s.mode {
		return nil, fmt.Errorf("%w: store serves %s scope, request asked for %s", entity.ErrInternal, s.mode, scope.Mode)
	}

	function, opts := s.requestFor(scope)

	ctxzap.Debug(ctx, "searching notes",
		zap.String("function", function),
		zap.String("scope", string(scope.Mode)),
		zap.Int("match_count", k),
	)

	req := entity.MatchDocumentsRequest{QueryEmbedding: embedding, MatchCount: k}
	var rows []entity.MatchDocumentsRow
	if err := s.connector.DoRequest(ctx, http.MethodPost, rpcPath+function, req, &rows, opts...); err != nil {
		return nil, s.mapError(scope, err)
	}

	matches := make([]entity.Match, 0, len(rows))
	for _, row := range rows {
		m := entity.Match{ID: string(row.ID), Similarity: row.Similarity}
		if row.Content != nil {
			m.Content = *row.Content
		}
		matches = append(matches, m)
	}

	ctxzap.Debug(ctx, "notes found", zap.Int("count", len(matches)))

	return similarity.RankMatches(matches, k), nil
}

// requestFor selects the RPC function and credentials for the scope. The
// restricted path forwards the caller token so row level security applies.
func (s *SupabaseStore) requestFor(scope entity.AuthScope) (string, []pkghttp.RequestOpt) {
	if scope.Mode == entity.ScopeCallerRestricted {
		return s.cfg.UserMatchFunction, []pkghttp.RequestOpt{
			pkghttp.WithHeader("apikey", s.cfg.AnonKey),
			pkghttp.WithBearer(scope.BearerToken),
		}
	}
	return s.cfg.MatchFunction, []pkghttp.RequestOpt{
		pkghttp.WithHeader("apikey", s.cfg.ServiceRoleKey),
		pkghttp.WithBearer(s.cfg.ServiceRoleKey),
	}
}

func (s *SupabaseStore) mapError(scope entity.AuthScope, err error) error {
	var httpErr *pkghttp.HTTPError
	if !errors.As(err, &httpErr) {
		return fmt.Errorf("%w: %w", entity.ErrRetrieval, err)
	}

	detail := httpErr.Message
	var pgErr entity.PostgRESTError
	if json.Unmarshal([]byte(httpErr.Message), &pgErr) == nil && pgErr.Message != "" {
		detail = pgErr.Message
	}

	// A rejected caller token is an identity problem, not a backend outage.
	if scope.Mode == entity.ScopeCallerRestricted &&
		(httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden) {
		return fmt.Errorf("%w: backend rejected caller token: %s", entity.ErrAuthorization, detail)
	}

	return fmt.Errorf("%w: backend returned %d: %s", entity.ErrRetrieval, httpErr.StatusCode, detail)
}
