package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/quickcommerce/insights/internal/api/response"
	"github.com/quickcommerce/insights/internal/api/validation"
	"github.com/quickcommerce/insights/internal/models"
)

// RoasSummarizer produces ROAS KPIs for a date range.
type RoasSummarizer interface {
	Summary(ctx context.Context, start, end *time.Time) (models.RoasSummary, error)
}

// MarketingHandler serves marketing analytics.
type MarketingHandler struct {
	service RoasSummarizer
}

// NewMarketingHandler creates a MarketingHandler.
func NewMarketingHandler(service RoasSummarizer) *MarketingHandler {
	return &MarketingHandler{service: service}
}

// RoasQuery are the query parameters of GET /v1/marketing/roas.
type RoasQuery struct {
	Start *time.Time `form:"start"`
	End   *time.Time `form:"end"`
}

// Roas handles GET /v1/marketing/roas?start=YYYY-MM-DD&end=YYYY-MM-DD.
func (h *MarketingHandler) Roas(w http.ResponseWriter, r *http.Request) {
	var q RoasQuery
	if err := validation.DecodeQuery(r, &q); err != nil {
		validation.RespondValidationError(w, err)

		return
	}

	summary, err := h.service.Summary(r.Context(), q.Start, q.End)
	if err != nil {
		respondServiceError(w, r, err)

		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}
