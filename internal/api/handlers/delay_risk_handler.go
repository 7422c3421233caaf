package handlers

import (
	"context"
	"net/http"

	"github.com/quickcommerce/insights/internal/api/response"
	"github.com/quickcommerce/insights/internal/api/validation"
	"github.com/quickcommerce/insights/internal/models"
)

// DelayRiskPredictor scores delivery delay risk.
type DelayRiskPredictor interface {
	Predict(ctx context.Context, req models.DelayRiskRequest) (models.DelayRiskPrediction, error)
}

// DelayRiskHandler serves delay risk predictions.
type DelayRiskHandler struct {
	service DelayRiskPredictor
}

// NewDelayRiskHandler creates a DelayRiskHandler.
func NewDelayRiskHandler(service DelayRiskPredictor) *DelayRiskHandler {
	return &DelayRiskHandler{service: service}
}

// DelayRiskBody is the body of POST /v1/delivery/delay-risk. Pointers distinguish a missing field from 0.
type DelayRiskBody struct {
	HourOfDay *int `json:"hourOfDay" validate:"required,gte=0,lte=23"`
	DayOfWeek *int `json:"dayOfWeek" validate:"required,gte=0,lte=6"`
}

// Predict handles POST /v1/delivery/delay-risk.
func (h *DelayRiskHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var body DelayRiskBody
	if err := validation.DecodeJSON(r, &body); err != nil {
		respondDecodeError(w, err)

		return
	}

	prediction, err := h.service.Predict(r.Context(), models.DelayRiskRequest{
		HourOfDay: *body.HourOfDay,
		DayOfWeek: *body.DayOfWeek,
	})
	if err != nil {
		respondServiceError(w, r, err)

		return
	}

	response.RespondJSON(w, http.StatusOK, prediction)
}
