package suggest

import (
	"net/http"

	"github.com/futig/notes-answer/internal/entity"
	"github.com/futig/notes-answer/internal/pkg/logger"
	"github.com/futig/notes-answer/internal/pkg/response"
	"github.com/futig/notes-answer/internal/pkg/validator"
)

type Handler struct {
	usecase SuggestUsecase
	auth    Authenticator
}

func NewHandler(usecase SuggestUsecase, auth Authenticator) *Handler {
	return &Handler{usecase: usecase, auth: auth}
}

// SuggestSimilar handles POST /suggest-similar
func (h *Handler) SuggestSimilar(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SuggestSimilar")

	scope, err := h.auth.Scope(r)
	if err != nil {
		response.HandleError(ctx, w, err)
		return
	}

	var req entity.SuggestSimilarRequest
	if err := validator.DecodeJSON(w, r, &req); err != nil {
		response.HandleError(ctx, w, err)
		return
	}
	if err := validator.ValidateSuggestSimilar(&req); err != nil {
		response.HandleError(ctx, w, err)
		return
	}

	decision, err := h.usecase.Suggest(ctx, toSuggestRequest(&req, scope))
	if err != nil {
		response.HandleError(ctx, w, err)
		return
	}

	response.Success(w, toSuggestResponse(decision))
}
