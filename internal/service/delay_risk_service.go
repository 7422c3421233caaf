package service

import (
	"context"
	"errors"

	"github.com/quickcommerce/insights/internal/delaymodel"
	"github.com/quickcommerce/insights/internal/insighterrors"
	"github.com/quickcommerce/insights/internal/models"
	"github.com/quickcommerce/insights/internal/observability"
)

// ErrDelayModelUnavailable is returned when no delay model artifact was loaded.
var ErrDelayModelUnavailable = errors.New("delivery delay model is not loaded")

// DelayPredictor estimates the probability that an order is delivered late.
type DelayPredictor interface {
	PredictProba(hourOfDay, dayOfWeek int) float64
}

// DelayRiskService scores delivery delay risk for an order time.
type DelayRiskService struct {
	model   DelayPredictor
	metrics observability.AssistantMetrics
}

// NewDelayRiskService creates a DelayRiskService. model and metrics may be nil.
func NewDelayRiskService(model DelayPredictor, metrics observability.AssistantMetrics) *DelayRiskService {
	return &DelayRiskService{model: model, metrics: metrics}
}

// Predict validates req and returns the late-delivery probability and its risk level.
func (s *DelayRiskService) Predict(ctx context.Context, req models.DelayRiskRequest) (models.DelayRiskPrediction, error) {
	if req.HourOfDay < 0 || req.HourOfDay > 23 {
		return models.DelayRiskPrediction{}, insighterrors.NewValidationError("hourOfDay", "hourOfDay must be between 0 and 23")
	}

	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		return models.DelayRiskPrediction{}, insighterrors.NewValidationError("dayOfWeek",
			"dayOfWeek must be between 0 (Monday) and 6 (Sunday)")
	}

	if s.model == nil {
		return models.DelayRiskPrediction{}, ErrDelayModelUnavailable
	}

	p := s.model.PredictProba(req.HourOfDay, req.DayOfWeek)
	level := delaymodel.RiskLevelFor(p)

	if s.metrics != nil {
		s.metrics.RecordDelayPrediction(ctx, string(level))
	}

	return models.DelayRiskPrediction{
		HourOfDay:   req.HourOfDay,
		DayOfWeek:   req.DayOfWeek,
		Probability: p,
		Level:       level,
	}, nil
}
