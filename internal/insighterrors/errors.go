// Package insighterrors provides sentinel and custom error types for the insights pipeline.
package insighterrors

import "errors"

// ErrModelMismatch is returned when vectors from two different embedding models would be compared.
var ErrModelMismatch = errors.New("embedding model mismatch")

// ErrLoad represents a feedback corpus load failure.
// Use errors.Is(err, ErrLoad) to detect it regardless of path or cause.
var ErrLoad = &LoadError{}

// LoadError is returned when the feedback source is missing, unreadable, or lacks the text column.
type LoadError struct {
	Path    string
	Message string
	Err     error
}

// NewLoadError creates a LoadError for path wrapping err.
func NewLoadError(path, message string, err error) *LoadError {
	return &LoadError{Path: path, Message: message, Err: err}
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	msg := "load feedback corpus"
	if e.Path != "" {
		msg += " " + e.Path
	}

	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error { return e.Err }

// Is implements the error interface for error comparison.
func (e *LoadError) Is(target error) bool {
	_, ok := target.(*LoadError)

	return ok
}

// ErrEmbedding represents an embedding failure.
var ErrEmbedding = &EmbeddingError{}

// EmbeddingError is returned when the embedding model is unavailable or encoding fails.
type EmbeddingError struct {
	Model   string
	Message string
	Err     error
}

// NewEmbeddingError creates an EmbeddingError for model wrapping err.
func NewEmbeddingError(model, message string, err error) *EmbeddingError {
	return &EmbeddingError{Model: model, Message: message, Err: err}
}

// Error implements the error interface.
func (e *EmbeddingError) Error() string {
	msg := "embedding"
	if e.Model != "" {
		msg += " (" + e.Model + ")"
	}

	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the underlying cause.
func (e *EmbeddingError) Unwrap() error { return e.Err }

// Is implements the error interface for error comparison.
func (e *EmbeddingError) Is(target error) bool {
	_, ok := target.(*EmbeddingError)

	return ok
}

// ErrGeneration represents a failed answer generation.
var ErrGeneration = &GenerationError{}

// GenerationError is returned when the hosted completion call fails, times out, or returns
// no usable choice. It must reach the caller; it is never replaced by an empty answer.
type GenerationError struct {
	Model   string
	Message string
	Err     error
}

// NewGenerationError creates a GenerationError for model wrapping err.
func NewGenerationError(model, message string, err error) *GenerationError {
	return &GenerationError{Model: model, Message: message, Err: err}
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	msg := "generation"
	if e.Model != "" {
		msg += " (" + e.Model + ")"
	}

	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the underlying cause.
func (e *GenerationError) Unwrap() error { return e.Err }

// Is implements the error interface for error comparison.
func (e *GenerationError) Is(target error) bool {
	_, ok := target.(*GenerationError)

	return ok
}

// ErrValidation represents a validation error.
// Use when caller input fails validation.
var ErrValidation = &ValidationError{}

// ValidationError is a sentinel error for validation failures.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new ValidationError with a custom message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Field != "" {
		return "validation failed for field: " + e.Field
	}

	return "validation error"
}

// Is implements the error interface for error comparison.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)

	return ok
}
