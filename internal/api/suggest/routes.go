package suggest

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers duplicate suggestion routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/suggest-similar", h.SuggestSimilar)
}
