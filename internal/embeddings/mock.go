package embeddings

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync/atomic"
)

// MockEncoder implements Encoder with deterministic vectors derived from a text hash.
// Equal texts get equal vectors; unrelated texts get unrelated vectors.
type MockEncoder struct {
	model      ModelID
	dimensions int
	calls      atomic.Int64
}

// Ensure MockEncoder implements Encoder.
var _ Encoder = (*MockEncoder)(nil)

// NewMockEncoder creates a mock encoder reporting model and producing vectors of the given dimensions.
func NewMockEncoder(model ModelID, dimensions int) *MockEncoder {
	return &MockEncoder{model: model, dimensions: dimensions}
}

// Model returns the configured model identity.
func (m *MockEncoder) Model() ModelID { return m.model }

// Calls returns how many times Encode has been called.
func (m *MockEncoder) Calls() int { return int(m.calls.Load()) }

// Encode returns a normalized hash-derived vector for each text.
func (m *MockEncoder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	m.calls.Add(1)

	if m.dimensions <= 0 {
		return nil, fmt.Errorf("mock encoder: invalid dimensions %d", m.dimensions)
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		hash := sha256.Sum256([]byte(text))

		vec := make([]float32, m.dimensions)
		for j := range vec {
			vec[j] = (float32(hash[j%len(hash)]) / 127.5) - 1.0
		}

		NormalizeL2(vec)
		out[i] = vec
	}

	return out, nil
}
