package handlers

import (
	"context"
	"net/http"

	"github.com/quickcommerce/insights/internal/api/response"
	"github.com/quickcommerce/insights/internal/api/validation"
	"github.com/quickcommerce/insights/internal/models"
)

// Assistant answers questions from customer feedback.
type Assistant interface {
	Ask(ctx context.Context, question string, topK int) (models.Answer, error)
	Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedFeedback, error)
}

// AssistantHandler serves the feedback assistant.
type AssistantHandler struct {
	assistant Assistant
}

// NewAssistantHandler creates an AssistantHandler.
func NewAssistantHandler(assistant Assistant) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

// AskBody is the body of POST /v1/assistant/ask. topK 0 selects the default; values above the maximum are capped.
type AskBody struct {
	Question string `json:"question" validate:"required,not_blank,no_null_bytes,max=2000"`
	TopK     int    `json:"topK"     validate:"gte=0"`
}

// RetrieveBody is the body of POST /v1/assistant/retrieve.
type RetrieveBody struct {
	Query string `json:"query" validate:"required,not_blank,no_null_bytes,max=2000"`
	TopK  int    `json:"topK"  validate:"gte=0"`
}

// RetrieveResponse wraps retrieval results.
type RetrieveResponse struct {
	Query    string                     `json:"query"`
	Feedback []models.RetrievedFeedback `json:"feedback"`
}

// Ask handles POST /v1/assistant/ask.
func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var body AskBody
	if err := validation.DecodeJSON(r, &body); err != nil {
		respondDecodeError(w, err)

		return
	}

	answer, err := h.assistant.Ask(r.Context(), body.Question, body.TopK)
	if err != nil {
		respondServiceError(w, r, err)

		return
	}

	response.RespondJSON(w, http.StatusOK, answer)
}

// Retrieve handles POST /v1/assistant/retrieve.
func (h *AssistantHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	var body RetrieveBody
	if err := validation.DecodeJSON(r, &body); err != nil {
		respondDecodeError(w, err)

		return
	}

	feedback, err := h.assistant.Retrieve(r.Context(), body.Query, body.TopK)
	if err != nil {
		respondServiceError(w, r, err)

		return
	}

	response.RespondJSON(w, http.StatusOK, RetrieveResponse{Query: body.Query, Feedback: feedback})
}
