package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/futig/notes-answer/internal/pkg/response"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Recoverer turns a panic into a JSON 500 response.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			ctxzap.Error(r.Context(), "panic recovered",
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)
			response.Error(w, http.StatusInternalServerError, "unexpected server error")
		}()
		next.ServeHTTP(w, r)
	})
}
