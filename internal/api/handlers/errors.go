// Package handlers implements the HTTP endpoints.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/quickcommerce/insights/internal/api/response"
	"github.com/quickcommerce/insights/internal/api/validation"
	"github.com/quickcommerce/insights/internal/insighterrors"
	"github.com/quickcommerce/insights/internal/service"
)

// respondDecodeError maps a request decoding failure to 413 or 400.
func respondDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, validation.ErrBodyTooLarge) {
		response.RespondTooLarge(w)

		return
	}

	validation.RespondValidationError(w, err)
}

// respondServiceError maps service errors to problem responses. Upstream model failures are 502;
// anything unrecognised is logged and returned as an opaque 500.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, insighterrors.ErrValidation):
		response.RespondBadRequest(w, err.Error())
	case errors.Is(err, insighterrors.ErrGeneration):
		slog.WarnContext(r.Context(), "answer generation failed", "error", err)
		response.RespondBadGateway(w, "answer generation failed, try again later")
	case errors.Is(err, insighterrors.ErrEmbedding):
		slog.ErrorContext(r.Context(), "embedding failed", "error", err)
		response.RespondBadGateway(w, "embedding provider failed, try again later")
	case errors.Is(err, service.ErrDelayModelUnavailable):
		response.RespondServiceUnavailable(w, err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		response.RespondInternalServerError(w, "An unexpected error occurred")
	}
}
