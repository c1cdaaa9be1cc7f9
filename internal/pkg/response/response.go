package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/futig/notes-answer/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		// Headers are already sent, nothing left to report to the client
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error writes an error response
func Error(w http.ResponseWriter, status int, detail string) {
	JSON(w, status, entity.ErrorResponse{Error: http.StatusText(status), Detail: detail})
}

// Success writes a success response
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// StatusFor maps a domain error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrAuthorization):
		return http.StatusUnauthorized
	case errors.Is(err, entity.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// HandleError logs err and writes the matching error response. Client
// mistakes are logged at warn level, everything else at error level.
func HandleError(ctx context.Context, w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status < http.StatusInternalServerError {
		ctxzap.Warn(ctx, "request rejected", zap.Int("status", status), zap.Error(err))
	} else {
		ctxzap.Error(ctx, "request failed", zap.Int("status", status), zap.Error(err))
	}
	Error(w, status, err.Error())
}
