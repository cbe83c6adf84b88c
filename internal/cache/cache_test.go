package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMemoryCache(t *testing.T) *ResultCache {
	t.Helper()
	return New("", zap.NewNop())
}

func TestKeyIsNamespacedAndStable(t *testing.T) {
	a := Key(NamespaceExtraction, []byte("same content"))
	b := Key(NamespaceExtraction, []byte("same content"))
	c := Key(NamespaceEmbedding, []byte("same content"))
	d := Key(NamespaceExtraction, []byte("other content"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c, "namespaces must not collide on identical content")
	assert.NotEqual(t, a, d)
	assert.Equal(t, KeyText(NamespaceExtraction, "same content"), a)
}

func TestGetOrComputeCachesResult(t *testing.T) {
	c := newMemoryCache(t)

	var calls int32
	compute := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte("value"), nil
	}

	for i := 0; i < 3; i++ {
		got, err := c.GetOrCompute(context.Background(), "k", time.Minute, compute)
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), got)
	}
	assert.Equal(t, int32(1), calls)
}

func TestGetOrComputeSingleFlight(t *testing.T) {
	c := newMemoryCache(t)

	var calls int32
	release := make(chan struct{})
	compute := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []byte("value"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.GetOrCompute(context.Background(), "shared", time.Minute, compute)
			assert.NoError(t, err)
			assert.Equal(t, []byte("value"), got)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls, "concurrent callers must share one computation")
}

func TestGetOrComputeErrorNotCached(t *testing.T) {
	c := newMemoryCache(t)

	var calls int32
	boom := errors.New("boom")
	failing := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return nil, boom
	}

	_, err := c.GetOrCompute(context.Background(), "k", time.Minute, failing)
	assert.ErrorIs(t, err, boom)

	got, err := c.GetOrCompute(context.Background(), "k", time.Minute, func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte("recovered"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("recovered"), got)
	assert.Equal(t, int32(2), calls)
}

func TestExpiredEntryRecomputed(t *testing.T) {
	c := newMemoryCache(t)

	var calls int32
	compute := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte("v"), nil
	}

	_, err := c.GetOrCompute(context.Background(), "k", time.Millisecond, compute)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = c.GetOrCompute(context.Background(), "k", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls)
}
