package answer

import (
	"net/http"

	"github.com/futig/notes-answer/internal/entity"
	"github.com/futig/notes-answer/internal/pkg/logger"
	"github.com/futig/notes-answer/internal/pkg/response"
	"github.com/futig/notes-answer/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase       AnswerUsecase
	auth          Authenticator
	exposeContent bool
}

func NewHandler(usecase AnswerUsecase, auth Authenticator, exposeContent bool) *Handler {
	return &Handler{
		usecase:       usecase,
		auth:          auth,
		exposeContent: exposeContent,
	}
}

// AnswerQuestion handles POST /answer-question
func (h *Handler) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "AnswerQuestion")

	scope, err := h.auth.Scope(r)
	if err != nil {
		response.HandleError(ctx, w, err)
		return
	}

	var req entity.AnswerQuestionRequest
	if err := validator.DecodeJSON(w, r, &req); err != nil {
		response.HandleError(ctx, w, err)
		return
	}
	if err := validator.ValidateAnswerQuestion(&req); err != nil {
		response.HandleError(ctx, w, err)
		return
	}

	ucReq := toAnswerRequest(&req, scope)
	ctxzap.Debug(ctx, "answer request accepted", zap.Int("top_k", ucReq.TopK))

	res, err := h.usecase.Answer(ctx, ucReq)
	if err != nil {
		response.HandleError(ctx, w, err)
		return
	}

	response.Success(w, toAnswerResponse(res, h.exposeContent))
}
