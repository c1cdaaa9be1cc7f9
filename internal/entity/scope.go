package entity

import "fmt"

// AccessScope selects which notes the vector backend may return.
type AccessScope string

const (
	// ScopeCallerRestricted limits results to the notes of the authenticated
	// caller. The caller token is forwarded to the backend.
	ScopeCallerRestricted AccessScope = "caller-restricted"
	// ScopePrivileged searches all notes. Only for trusted server-side callers.
	ScopePrivileged AccessScope = "privileged"
)

func ParseAccessScope(s string) (AccessScope, error) {
	switch AccessScope(s) {
	case ScopeCallerRestricted, ScopePrivileged:
		return AccessScope(s), nil
	default:
		return "", fmt.Errorf("unknown access scope %q (want %q or %q)", s, ScopeCallerRestricted, ScopePrivileged)
	}
}

// AuthScope is the per-request authorization context handed to the
// retrieval gateway.
type AuthScope struct {
	Mode        AccessScope
	BearerToken string
}

// RestrictedScope builds a caller-restricted scope for the given token.
func RestrictedScope(token string) AuthScope {
	return AuthScope{Mode: ScopeCallerRestricted, BearerToken: token}
}

// PrivilegedScope builds a privileged scope.
func PrivilegedScope() AuthScope {
	return AuthScope{Mode: ScopePrivileged}
}

// Validate ensures a restricted scope always carries an identity.
func (s AuthScope) Validate() error {
	switch s.Mode {
	case ScopeCallerRestricted:
		if s.BearerToken == "" {
			return fmt.Errorf("%w: caller-restricted scope requires a bearer token", ErrAuthorization)
		}
		return nil
	case ScopePrivileged:
		return nil
	default:
		return fmt.Errorf("%w: unknown access scope %q", ErrInternal, s.Mode)
	}
}

// CitationPolicy controls whether source identifiers may appear in answers.
type CitationPolicy string

const (
	// CitationNone forbids any source section or identifier in the answer.
	CitationNone CitationPolicy = "none"
	// CitationAppendIDs asks the model to append a bracketed id list.
	CitationAppendIDs CitationPolicy = "append-ids"
)

func ParseCitationPolicy(s string) (CitationPolicy, error) {
	switch CitationPolicy(s) {
	case CitationNone, CitationAppendIDs:
		return CitationPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown citation policy %q (want %q or %q)", s, CitationNone, CitationAppendIDs)
	}
}
