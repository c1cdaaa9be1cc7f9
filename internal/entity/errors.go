package entity

import "errors"

// Domain errors
var (
	// Request errors
	ErrValidation       = errors.New("invalid request")
	ErrAuthorization    = errors.New("unauthorized")
	ErrMethodNotAllowed = errors.New("method not allowed")

	// Collaborator errors
	ErrProvider  = errors.New("provider error")
	ErrRetrieval = errors.New("retrieval error")

	// Catch-all
	ErrInternal = errors.New("internal error")
)
