// Package delaymodel implements the delivery-delay classifier: a logistic regression over
// (hour_of_day, day_of_week), persisted as a small JSON artifact.
package delaymodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/quickcommerce/insights/internal/models"
)

// Feature names, in coefficient order.
const (
	FeatureHourOfDay = "hour_of_day"
	FeatureDayOfWeek = "day_of_week"
)

// Risk thresholds on the predicted probability.
const (
	mediumRiskThreshold = 0.4
	highRiskThreshold   = 0.7
)

// ErrInvalidModel is returned when an artifact does not describe a two-feature model in the expected order.
var ErrInvalidModel = errors.New("delay model: invalid artifact")

var expectedFeatures = []string{FeatureHourOfDay, FeatureDayOfWeek}

// Model is a fitted logistic regression: P(late) = sigmoid(Intercept + Coefficients · [hour, day]).
type Model struct {
	Features     []string  `json:"features"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	AUC          float64   `json:"auc,omitempty"`
	TrainedAt    time.Time `json:"trainedAt,omitzero"`
}

// Validate checks the artifact shape.
func (m *Model) Validate() error {
	if !slices.Equal(m.Features, expectedFeatures) {
		return fmt.Errorf("%w: features %v, want %v", ErrInvalidModel, m.Features, expectedFeatures)
	}

	if len(m.Coefficients) != len(expectedFeatures) {
		return fmt.Errorf("%w: %d coefficients, want %d", ErrInvalidModel, len(m.Coefficients), len(expectedFeatures))
	}

	for _, c := range append([]float64{m.Intercept}, m.Coefficients...) {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: non-finite parameter", ErrInvalidModel)
		}
	}

	return nil
}

// PredictProba returns the probability that an order at hourOfDay on dayOfWeek (0 = Monday) is late.
func (m *Model) PredictProba(hourOfDay, dayOfWeek int) float64 {
	z := m.Intercept + m.Coefficients[0]*float64(hourOfDay) + m.Coefficients[1]*float64(dayOfWeek)

	return sigmoid(z)
}

// Load reads and validates a model artifact.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read delay model: %w", err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode delay model: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Save writes the model artifact as indented JSON, creating parent directories as needed.
func Save(path string, m *Model) error {
	if err := m.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode delay model: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write delay model: %w", err)
	}

	return nil
}

// RiskLevelFor buckets a probability: below 0.4 is low, below 0.7 is medium, otherwise high.
func RiskLevelFor(p float64) models.RiskLevel {
	switch {
	case p < mediumRiskThreshold:
		return models.RiskLow
	case p < highRiskThreshold:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}

func sigmoid(z float64) float64 {
	// Split on sign to avoid overflow in exp for large |z|.
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}

	e := math.Exp(z)

	return e / (1 + e)
}
