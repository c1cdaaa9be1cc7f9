package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/futig/notes-answer/internal/entity"
)

// MaxBodyBytes limits request bodies.
const MaxBodyBytes = 1 << 20

// DecodeJSON decodes the request body into dst. Any failure is a
// validation error.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: request body is empty", entity.ErrValidation)
		case errors.As(err, &maxErr):
			return fmt.Errorf("%w: request body exceeds %d bytes", entity.ErrValidation, maxErr.Limit)
		default:
			return fmt.Errorf("%w: invalid JSON body: %v", entity.ErrValidation, err)
		}
	}
	if dec.More() {
		return fmt.Errorf("%w: request body must contain a single JSON object", entity.ErrValidation)
	}
	return nil
}

func ValidateAnswerQuestion(req *entity.AnswerQuestionRequest) error {
	if req.Question == nil {
		return fmt.Errorf("%w: question is required", entity.ErrValidation)
	}
	if strings.TrimSpace(*req.Question) == "" {
		return fmt.Errorf("%w: question must not be empty", entity.ErrValidation)
	}
	return validateTopK(req.TopK)
}

// ValidateSuggestSimilar checks field presence and types. Short texts are
// valid and handled by the use case.
func ValidateSuggestSimilar(req *entity.SuggestSimilarRequest) error {
	if req.Text == nil {
		return fmt.Errorf("%w: text is required", entity.ErrValidation)
	}
	if req.MinSimilarity != nil && (*req.MinSimilarity < -1 || *req.MinSimilarity > 1) {
		return fmt.Errorf("%w: min_similarity must be between -1 and 1", entity.ErrValidation)
	}
	return validateTopK(req.TopK)
}

func validateTopK(k *entity.Integer) error {
	if k != nil && *k < 1 {
		return fmt.Errorf("%w: top_k must be a positive integer", entity.ErrValidation)
	}
	return nil
}
