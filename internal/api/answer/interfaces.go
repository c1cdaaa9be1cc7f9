package answer

import (
	"context"
	"net/http"

	"github.com/futig/notes-answer/internal/entity"
)

type AnswerUsecase interface {
	Answer(ctx context.Context, req entity.AnswerRequest) (*entity.AnswerResult, error)
}

type Authenticator interface {
	Scope(r *http.Request) (entity.AuthScope, error)
}
