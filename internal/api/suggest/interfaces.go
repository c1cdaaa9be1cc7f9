package suggest

import (
	"context"
	"net/http"

	"github.com/futig/notes-answer/internal/entity"
)

type SuggestUsecase interface {
	Suggest(ctx context.Context, req entity.SuggestRequest) (entity.DuplicateDecision, error)
}

type Authenticator interface {
	Scope(r *http.Request) (entity.AuthScope, error)
}
