package rag

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/futig/notes-answer/internal/config"
	"github.com/futig/notes-answer/internal/entity"
	"github.com/futig/notes-answer/internal/integration/embedding"
	"go.uber.org/zap/zaptest"
)

func testConfig(url string) config.SupabaseConfig {
	return config.SupabaseConfig{
		URL:               url,
		AnonKey:           "anon-key",
		ServiceRoleKey:    "service-key",
		UserMatchFunction: "match_documents_for_user",
		MatchFunction:     "match_documents",
	}
}

type capturedRequest struct {
	path   string
	apiKey string
	auth   string
	body   entity.MatchDocumentsRequest
}

func newCapturingServer(t *testing.T, status int, body string, got *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.apiKey = r.Header.Get("apikey")
		got.auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got.body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSupabaseStore_SearchByScope(t *testing.T) {
	tests := []struct {
		name       string
		mode       entity.AccessScope
		scope      entity.AuthScope
		wantPath   string
		wantAPIKey string
		wantAuth   string
	}{
		{
			name:       "caller restricted",
			mode:       entity.ScopeCallerRestricted,
			scope:      entity.RestrictedScope("user-jwt"),
			wantPath:   "/rest/v1/rpc/match_documents_for_user",
			wantAPIKey: "anon-key",
			wantAuth:   "Bearer user-jwt",
		},
		{
			name:       "privileged",
			mode:       entity.ScopePrivileged,
			scope:      entity.PrivilegedScope(),
			wantPath:   "/rest/v1/rpc/match_documents",
			wantAPIKey: "service-key",
			wantAuth:   "Bearer service-key",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got capturedRequest
			srv := newCapturingServer(t, http.StatusOK,
				`[{"id":"n2","content":null,"similarity":0.4},{"id":7,"content":"texto","similarity":0.9}]`, &got)

			store, err := NewSupabaseStore(testConfig(srv.URL), tt.mode, zaptest.NewLogger(t))
			if err != nil {
				t.Fatalf("NewSupabaseStore: %v", err)
			}
			matches, err := store.Search(context.Background(), []float32{0.1, 0.2}, 3, tt.scope)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}

			if got.path != tt.wantPath {
				t.Errorf("path = %s, want %s", got.path, tt.wantPath)
			}
			if got.apiKey != tt.wantAPIKey {
				t.Errorf("apikey = %s, want %s", got.apiKey, tt.wantAPIKey)
			}
			if got.auth != tt.wantAuth {
				t.Errorf("Authorization = %s, want %s", got.auth, tt.wantAuth)
			}
			if got.body.MatchCount != 3 || len(got.body.QueryEmbedding) != 2 {
				t.Errorf("body = %+v", got.body)
			}

			if len(matches) != 2 {
				t.Fatalf("len(matches) = %d, want 2", len(matches))
			}
			if matches[0].ID != "7" || matches[0].Content != "texto" {
				t.Errorf("first match = %+v, want id 7 ranked first", matches[0])
			}
			if matches[1].Content != "" {
				t.Errorf("null content should map to empty, got %q", matches[1].Content)
			}
		})
	}
}

func TestSupabaseStore_SearchErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		mode    entity.AccessScope
		scope   entity.AuthScope
		wantErr error
	}{
		{
			name:    "rejected caller token",
			status:  http.StatusUnauthorized,
			body:    `{"message":"JWT expired"}`,
			mode:    entity.ScopeCallerRestricted,
			scope:   entity.RestrictedScope("old"),
			wantErr: entity.ErrAuthorization,
		},
		{
			name:    "missing function",
			status:  http.StatusNotFound,
			body:    `{"code":"PGRST202","message":"Could not find the function"}`,
			mode:    entity.ScopePrivileged,
			scope:   entity.PrivilegedScope(),
			wantErr: entity.ErrRetrieval,
		},
		{
			name:    "privileged 401 stays a retrieval failure",
			status:  http.StatusUnauthorized,
			body:    `{}`,
			mode:    entity.ScopePrivileged,
			scope:   entity.PrivilegedScope(),
			wantErr: entity.ErrRetrieval,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got capturedRequest
			srv := newCapturingServer(t, tt.status, tt.body, &got)
			store, err := NewSupabaseStore(testConfig(srv.URL), tt.mode, zaptest.NewLogger(t))
			if err != nil {
				t.Fatal(err)
			}
			_, err = store.Search(context.Background(), []float32{1}, 1, tt.scope)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSupabaseStore_RejectsWithoutCalling(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	store, err := NewSupabaseStore(testConfig(srv.URL), entity.ScopeCallerRestricted, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := store.Search(context.Background(), []float32{1}, 1, entity.RestrictedScope("")); !errors.Is(err, entity.ErrAuthorization) {
		t.Errorf("missing token: err = %v, want ErrAuthorization", err)
	}
	if _, err := store.Search(context.Background(), []float32{1}, 1, entity.PrivilegedScope()); !errors.Is(err, entity.ErrInternal) {
		t.Errorf("scope mismatch: err = %v, want ErrInternal", err)
	}
	if _, err := store.Search(context.Background(), []float32{1}, 0, entity.RestrictedScope("t")); !errors.Is(err, entity.ErrValidation) {
		t.Errorf("k=0: err = %v, want ErrValidation", err)
	}
	if calls != 0 {
		t.Errorf("backend called %d times, want 0", calls)
	}
}

func TestNewSupabaseStore_RequiresKeys(t *testing.T) {
	cfg := testConfig("http://localhost")
	cfg.AnonKey = ""
	if _, err := NewSupabaseStore(cfg, entity.ScopeCallerRestricted, zaptest.NewLogger(t)); err == nil {
		t.Error("expected error without anon key")
	}
	cfg = testConfig("http://localhost")
	cfg.ServiceRoleKey = ""
	if _, err := NewSupabaseStore(cfg, entity.ScopePrivileged, zaptest.NewLogger(t)); err == nil {
		t.Error("expected error without service role key")
	}
}

func TestMockStore_Search(t *testing.T) {
	store := NewMockStore(zaptest.NewLogger(t))
	query := embedding.HashEmbedding("onde fica a chave reserva do apartamento")

	matches, err := store.Search(context.Background(), query, 2, entity.PrivilegedScope())
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("len = %d, want 2", len(matches))
	}
	if matches[0].Similarity < matches[1].Similarity {
		t.Error("matches not ordered by similarity")
	}
	if matches[0].Content != mockNotes[1] {
		t.Errorf("best match = %q", matches[0].Content)
	}
}
