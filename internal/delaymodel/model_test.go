package delaymodel

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickcommerce/insights/internal/models"
)

func TestModel_PredictProba(t *testing.T) {
	m := &Model{
		Features:     []string{FeatureHourOfDay, FeatureDayOfWeek},
		Coefficients: []float64{0.1, 0.2},
		Intercept:    -2,
	}

	// z = -2 + 0.1*18 + 0.2*4 = 0.6
	assert.InDelta(t, 1/(1+math.Exp(-0.6)), m.PredictProba(18, 4), 1e-12)
	assert.InDelta(t, 0.5, (&Model{Coefficients: []float64{0, 0}}).PredictProba(3, 3), 1e-12)
}

func TestSigmoid_Extremes(t *testing.T) {
	assert.InDelta(t, 1.0, sigmoid(1000), 1e-12)
	assert.InDelta(t, 0.0, sigmoid(-1000), 1e-12)
	assert.False(t, math.IsNaN(sigmoid(-1000)))
}

func TestRiskLevelFor(t *testing.T) {
	tests := []struct {
		p    float64
		want models.RiskLevel
	}{
		{0, models.RiskLow},
		{0.399, models.RiskLow},
		{0.4, models.RiskMedium},
		{0.699, models.RiskMedium},
		{0.7, models.RiskHigh},
		{1, models.RiskHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskLevelFor(tt.p), "p=%v", tt.p)
	}
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()

	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(dir, "nested", "model.json")
		m := &Model{
			Features:     []string{FeatureHourOfDay, FeatureDayOfWeek},
			Coefficients: []float64{0.05, -0.1},
			Intercept:    0.3,
			AUC:          0.61,
		}

		require.NoError(t, Save(path, m))

		got, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, m.Coefficients, got.Coefficients)
		assert.InDelta(t, m.Intercept, got.Intercept, 1e-12)
		assert.InDelta(t, m.PredictProba(18, 4), got.PredictProba(18, 4), 1e-12)
	})

	t.Run("wrong feature order is rejected", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path,
			[]byte(`{"features":["day_of_week","hour_of_day"],"coefficients":[1,2],"intercept":0}`), 0o600))

		_, err := Load(path)
		assert.ErrorIs(t, err, ErrInvalidModel)
	})

	t.Run("wrong coefficient count is rejected", func(t *testing.T) {
		path := filepath.Join(dir, "bad2.json")
		require.NoError(t, os.WriteFile(path,
			[]byte(`{"features":["hour_of_day","day_of_week"],"coefficients":[1],"intercept":0}`), 0o600))

		_, err := Load(path)
		assert.ErrorIs(t, err, ErrInvalidModel)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.json"))
		assert.Error(t, err)
	})
}
