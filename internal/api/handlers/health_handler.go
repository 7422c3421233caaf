package handlers

import (
	"net/http"

	"github.com/quickcommerce/insights/internal/api/response"
)

// HealthHandler handles liveness checks.
type HealthHandler struct {
	feedbackEntries int
}

// NewHealthHandler creates a health handler reporting the size of the loaded feedback index.
func NewHealthHandler(feedbackEntries int) *HealthHandler {
	return &HealthHandler{feedbackEntries: feedbackEntries}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status          string `json:"status"`
	FeedbackEntries int    `json:"feedbackEntries"`
}

// Check handles GET /health.
func (h *HealthHandler) Check(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, HealthResponse{Status: "ok", FeedbackEntries: h.feedbackEntries})
}
