package auth

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/futig/notes-answer/internal/entity"
)

func TestAuthenticator_Scope(t *testing.T) {
	tests := []struct {
		name      string
		mode      entity.AccessScope
		service   string
		headers   map[string]string
		wantScope entity.AuthScope
		wantErr   error
	}{
		{
			name:      "restricted with token",
			mode:      entity.ScopeCallerRestricted,
			headers:   map[string]string{"Authorization": "Bearer user-jwt"},
			wantScope: entity.RestrictedScope("user-jwt"),
		},
		{
			name:      "restricted scheme is case insensitive",
			mode:      entity.ScopeCallerRestricted,
			headers:   map[string]string{"Authorization": "bearer  user-jwt "},
			wantScope: entity.RestrictedScope("user-jwt"),
		},
		{
			name:    "restricted without token",
			mode:    entity.ScopeCallerRestricted,
			wantErr: entity.ErrAuthorization,
		},
		{
			name:    "restricted with basic auth",
			mode:    entity.ScopeCallerRestricted,
			headers: map[string]string{"Authorization": "Basic dXNlcjpwdw=="},
			wantErr: entity.ErrAuthorization,
		},
		{
			name:      "privileged without service token",
			mode:      entity.ScopePrivileged,
			wantScope: entity.PrivilegedScope(),
		},
		{
			name:      "privileged with api key header",
			mode:      entity.ScopePrivileged,
			service:   "s3cret",
			headers:   map[string]string{"X-API-Key": "s3cret"},
			wantScope: entity.PrivilegedScope(),
		},
		{
			name:      "privileged with bearer",
			mode:      entity.ScopePrivileged,
			service:   "s3cret",
			headers:   map[string]string{"Authorization": "Bearer s3cret"},
			wantScope: entity.PrivilegedScope(),
		},
		{
			name:    "privileged with wrong token",
			mode:    entity.ScopePrivileged,
			service: "s3cret",
			headers: map[string]string{"X-API-Key": "guess"},
			wantErr: entity.ErrAuthorization,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/answer-question", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			got, err := NewAuthenticator(tt.mode, tt.service).Scope(r)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.wantScope {
				t.Errorf("scope = %+v, want %+v", got, tt.wantScope)
			}
		})
	}
}
