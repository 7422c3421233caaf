package insighterrors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsIs(t *testing.T) {
	t.Run("load error matches sentinel through wrapping", func(t *testing.T) {
		err := fmt.Errorf("startup: %w", NewLoadError("feedback.csv", "missing column", nil))

		assert.ErrorIs(t, err, ErrLoad)
		assert.NotErrorIs(t, err, ErrGeneration)
		assert.Contains(t, err.Error(), "feedback.csv")
	})

	t.Run("embedding error unwraps model mismatch", func(t *testing.T) {
		err := NewEmbeddingError("m1", "index built with m2", ErrModelMismatch)

		assert.ErrorIs(t, err, ErrEmbedding)
		assert.ErrorIs(t, err, ErrModelMismatch)
	})

	t.Run("generation error keeps cause", func(t *testing.T) {
		err := NewGenerationError("llama", "request failed", io.ErrUnexpectedEOF)

		assert.ErrorIs(t, err, ErrGeneration)
		assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
		assert.Equal(t, "generation (llama): request failed: unexpected EOF", err.Error())
	})

	t.Run("validation error message fallbacks", func(t *testing.T) {
		assert.Equal(t, "bad", NewValidationError("f", "bad").Error())
		assert.Equal(t, "validation failed for field: f", NewValidationError("f", "").Error())
		assert.Equal(t, "validation error", (&ValidationError{}).Error())
		assert.ErrorIs(t, NewValidationError("f", "bad"), ErrValidation)
	})
}
