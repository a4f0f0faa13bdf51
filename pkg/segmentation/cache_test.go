package segmentation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroquant-report-server/internal/domain"
)

type stubSegmenter struct {
	calls   int
	volumes domain.VolumeObservation
	err     error
}

func (s *stubSegmenter) Segment(ctx context.Context, tensor []byte) (domain.VolumeObservation, error) {
	s.calls++
	return s.volumes, s.err
}

func TestKey(t *testing.T) {
	a := Key([]byte("tensor-a"))
	b := Key([]byte("tensor-b"))

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, Key([]byte("tensor-a")))
	assert.Contains(t, a, "seg:")
}

func TestCachingService(t *testing.T) {
	cache, err := NewCache(CacheConfig{LRUSize: 8})
	require.NoError(t, err)
	defer cache.Close()

	stub := &stubSegmenter{volumes: domain.VolumeObservation{"Hippocampus": 6900}}
	service := NewCachingService(stub, cache)
	ctx := context.Background()
	tensor := []byte("conformed-volume")

	first, err := service.Segment(ctx, tensor)
	require.NoError(t, err)
	assert.Equal(t, int64(6900), first["Hippocampus"])
	assert.Equal(t, 1, stub.calls)

	// Identical tensor hits the cache; the backend is not called again.
	second, err := service.Segment(ctx, tensor)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, stub.calls)

	// A different tensor misses.
	_, err = service.Segment(ctx, []byte("other-volume"))
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
}

func TestCachingServiceDoesNotCacheFailures(t *testing.T) {
	cache, err := NewCache(CacheConfig{LRUSize: 8})
	require.NoError(t, err)
	defer cache.Close()

	stub := &stubSegmenter{err: errors.New("inference failed")}
	service := NewCachingService(stub, cache)
	ctx := context.Background()

	_, err = service.Segment(ctx, []byte("tensor"))
	require.Error(t, err)

	stub.err = nil
	stub.volumes = domain.VolumeObservation{"Amygdala": 3150}

	volumes, err := service.Segment(ctx, []byte("tensor"))
	require.NoError(t, err)
	assert.Equal(t, int64(3150), volumes["Amygdala"])
	assert.Equal(t, 2, stub.calls)
}

func TestCacheRejectsBadRedisURL(t *testing.T) {
	_, err := NewCache(CacheConfig{LRUSize: 8, RedisURL: "not-a-url"})
	assert.Error(t, err)
}
