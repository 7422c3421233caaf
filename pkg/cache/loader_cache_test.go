package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity(s string) string { return s }

func TestNew_InvalidSize(t *testing.T) {
	_, err := New[string, int](0, identity)
	require.Error(t, err)
}

func TestLoaderCache_MissThenHit(t *testing.T) {
	var loads atomic.Int32

	c, err := New[string, []float32](4, identity)
	require.NoError(t, err)

	load := func(_ context.Context, key string) ([]float32, error) {
		loads.Add(1)

		return []float32{float32(len(key))}, nil
	}

	v, hit, err := c.Get(context.Background(), "late delivery", load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []float32{13}, v)

	v, hit, err = c.Get(context.Background(), "late delivery", load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []float32{13}, v)
	assert.Equal(t, int32(1), loads.Load())
	assert.Equal(t, 1, c.Len())
}

func TestLoaderCache_ErrorsAreNotCached(t *testing.T) {
	c, err := New[string, int](4, identity)
	require.NoError(t, err)

	boom := errors.New("encoder unavailable")

	_, _, err = c.Get(context.Background(), "q", func(context.Context, string) (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)
	assert.Zero(t, c.Len())

	v, hit, err := c.Get(context.Background(), "q", func(context.Context, string) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 7, v)
}

func TestLoaderCache_ConcurrentMissesShareOneLoad(t *testing.T) {
	var loads atomic.Int32

	c, err := New[string, int](4, identity)
	require.NoError(t, err)

	release := make(chan struct{})
	load := func(context.Context, string) (int, error) {
		loads.Add(1)
		<-release

		return 42, nil
	}

	const callers = 8

	var wg sync.WaitGroup

	results := make([]int, callers)
	for i := range callers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			results[i], _, _ = c.Get(context.Background(), "same", load)
		}()
	}

	// Give the goroutines time to join the in-flight load before it completes.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())

	for _, r := range results {
		assert.Equal(t, 42, r)
	}
}

func TestLoaderCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New[int, string](2, strconv.Itoa)
	require.NoError(t, err)

	load := func(_ context.Context, k int) (string, error) { return strconv.Itoa(k * 10), nil }
	ctx := context.Background()

	for _, k := range []int{1, 2, 1, 3} {
		_, _, err := c.Get(ctx, k, load)
		require.NoError(t, err)
	}

	_, hit, err := c.Get(ctx, 1, load)
	require.NoError(t, err)
	assert.True(t, hit, "recently used key survives")

	_, hit, err = c.Get(ctx, 2, load)
	require.NoError(t, err)
	assert.False(t, hit, "least recently used key is evicted")
	assert.Equal(t, 2, c.Len())
}
