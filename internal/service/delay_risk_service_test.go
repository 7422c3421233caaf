package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickcommerce/insights/internal/delaymodel"
	"github.com/quickcommerce/insights/internal/insighterrors"
	"github.com/quickcommerce/insights/internal/models"
)

func TestDelayRiskService_Predict(t *testing.T) {
	ctx := context.Background()
	model := &delaymodel.Model{
		Features:     []string{delaymodel.FeatureHourOfDay, delaymodel.FeatureDayOfWeek},
		Coefficients: []float64{0.2, 0},
		Intercept:    -3,
	}

	t.Run("scores and buckets", func(t *testing.T) {
		metrics := &fakeAssistantMetrics{}
		svc := NewDelayRiskService(model, metrics)

		evening, err := svc.Predict(ctx, models.DelayRiskRequest{HourOfDay: 22, DayOfWeek: 4})
		require.NoError(t, err)
		assert.Equal(t, models.RiskHigh, evening.Level)
		assert.InDelta(t, model.PredictProba(22, 4), evening.Probability, 1e-12)

		morning, err := svc.Predict(ctx, models.DelayRiskRequest{HourOfDay: 2, DayOfWeek: 0})
		require.NoError(t, err)
		assert.Equal(t, models.RiskLow, morning.Level)

		assert.Equal(t, []string{"high", "low"}, metrics.levels)
	})

	t.Run("rejects out of range inputs", func(t *testing.T) {
		svc := NewDelayRiskService(model, nil)

		for _, req := range []models.DelayRiskRequest{
			{HourOfDay: -1}, {HourOfDay: 24}, {DayOfWeek: -1}, {DayOfWeek: 7},
		} {
			_, err := svc.Predict(ctx, req)
			assert.ErrorIs(t, err, insighterrors.ErrValidation, "%+v", req)
		}
	})

	t.Run("missing model", func(t *testing.T) {
		svc := NewDelayRiskService(nil, nil)

		_, err := svc.Predict(ctx, models.DelayRiskRequest{HourOfDay: 10})
		assert.ErrorIs(t, err, ErrDelayModelUnavailable)
	})
}
