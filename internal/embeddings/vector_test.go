package embeddings

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeL2(t *testing.T) {
	t.Run("normalizes to unit length", func(t *testing.T) {
		vec := []float32{3, 4}
		NormalizeL2(vec)

		assert.InDelta(t, 0.6, vec[0], 1e-6)
		assert.InDelta(t, 0.8, vec[1], 1e-6)
	})

	t.Run("zero vector does not panic", func(t *testing.T) {
		v := []float32{0, 0, 0}
		NormalizeL2(v)

		assert.Equal(t, []float32{0, 0, 0}, v)
	})
}

func TestDot(t *testing.T) {
	assert.InDelta(t, 1.0, Dot([]float32{0.6, 0.8}, []float32{0.6, 0.8}), 1e-6)
	assert.InDelta(t, 0.0, Dot([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Zero(t, Dot([]float32{1}, []float32{1, 0}))
}

func TestMockEncoder(t *testing.T) {
	enc := NewMockEncoder("mock-8", 8)

	vecs, err := enc.Encode(context.Background(), []string{"late delivery", "late delivery", "great app"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	assert.Equal(t, vecs[0], vecs[1])
	assert.NotEqual(t, vecs[0], vecs[2])

	var norm float64
	for _, v := range vecs[0] {
		norm += float64(v) * float64(v)
	}

	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
	assert.Equal(t, ModelID("mock-8"), enc.Model())
	assert.Equal(t, 1, enc.Calls())
}
