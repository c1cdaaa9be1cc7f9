package common

import (
	"errors"
	"fmt"

	"github.com/futig/notes-answer/internal/entity"
)

// ResolveTopK applies the default for zero, rejects negative values and
// clamps to max.
func ResolveTopK(k, def, max int) (int, error) {
	switch {
	case k == 0:
		return def, nil
	case k < 0:
		return 0, fmt.Errorf("%w: top_k must be a positive integer, got %d", entity.ErrValidation, k)
	case k > max:
		return max, nil
	default:
		return k, nil
	}
}

var domainErrors = []error{
	entity.ErrValidation,
	entity.ErrAuthorization,
	entity.ErrProvider,
	entity.ErrRetrieval,
	entity.ErrInternal,
}

// StageError keeps domain sentinels raised by collaborators and tags
// anything else with the stage's own sentinel.
func StageError(sentinel error, stage string, err error) error {
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return fmt.Errorf("%s: %w", stage, err)
		}
	}
	return fmt.Errorf("%w: %s: %w", sentinel, stage, err)
}
