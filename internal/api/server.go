package api

import (
	"fmt"
	"net/http"
	"time"

	answerapi "github.com/futig/notes-answer/internal/api/answer"
	"github.com/futig/notes-answer/internal/api/docs"
	"github.com/futig/notes-answer/internal/api/middleware"
	suggestapi "github.com/futig/notes-answer/internal/api/suggest"
	"github.com/futig/notes-answer/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router. requestBudget bounds
// each request context; zero leaves it to the client timeouts.
func SetupRouter(
	answerHandler *answerapi.Handler,
	suggestHandler *suggestapi.Handler,
	allowedOrigins []string,
	requestBudget time.Duration,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)         // Add request ID
	r.Use(middleware.Logger(logger))       // Log requests
	r.Use(middleware.Recoverer)            // Recover from panics
	r.Use(middleware.CORS(allowedOrigins)) // Handle CORS and preflight
	r.Use(middleware.Deadline(requestBudget))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, fmt.Sprintf("no route for %s", r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s is not allowed on %s", r.Method, r.URL.Path))
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"status": "healthy"})
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Register routes
	answerapi.RegisterRoutes(r, answerHandler)
	suggestapi.RegisterRoutes(r, suggestHandler)

	return r
}
