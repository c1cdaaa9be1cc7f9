package auth

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/futig/notes-answer/internal/entity"
)

const apiKeyHeader = "X-API-Key"

// Authenticator derives the retrieval scope of an HTTP request. The mode is
// fixed per deployment; a restricted deployment never degrades to
// privileged when the caller token is missing.
type Authenticator struct {
	mode         entity.AccessScope
	serviceToken string
}

// NewAuthenticator builds an Authenticator. serviceToken, when set, must be
// presented by callers of a privileged deployment.
func NewAuthenticator(mode entity.AccessScope, serviceToken string) *Authenticator {
	return &Authenticator{mode: mode, serviceToken: serviceToken}
}

func (a *Authenticator) Scope(r *http.Request) (entity.AuthScope, error) {
	token := BearerToken(r)

	switch a.mode {
	case entity.ScopeCallerRestricted:
		if token == "" {
			return entity.AuthScope{}, fmt.Errorf("%w: missing bearer token", entity.ErrAuthorization)
		}
		return entity.RestrictedScope(token), nil

	case entity.ScopePrivileged:
		if a.serviceToken != "" {
			presented := r.Header.Get(apiKeyHeader)
			if presented == "" {
				presented = token
			}
			if subtle.ConstantTimeCompare([]byte(presented), []byte(a.serviceToken)) != 1 {
				return entity.AuthScope{}, fmt.Errorf("%w: invalid service token", entity.ErrAuthorization)
			}
		}
		return entity.PrivilegedScope(), nil

	default:
		return entity.AuthScope{}, fmt.Errorf("%w: unknown access scope %q", entity.ErrInternal, a.mode)
	}
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
