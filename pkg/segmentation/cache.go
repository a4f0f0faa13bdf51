package segmentation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"

	"github.com/neuroquant-report-server/internal/domain"
)

// CacheConfig configures the segmentation result cache.
type CacheConfig struct {
	LRUSize int
	// RedisURL enables the shared tier; empty keeps the cache in-process
	// only.
	RedisURL    string
	DefaultTTL  time.Duration
	MaxRetries  int
	PoolSize    int
	PoolTimeout time.Duration
}

// Cache memoizes segmentation results keyed by the input tensor digest.
// Inference on the same conformed volume is deterministic, so a hit is
// always valid. A small in-process LRU fronts an optional shared Redis tier.
type Cache struct {
	local      *lru.Cache[string, domain.VolumeObservation]
	redis      *redis.Client
	defaultTTL time.Duration
}

// NewCache creates a segmentation cache. The Redis tier is optional and
// verified with a short ping at construction.
func NewCache(config CacheConfig) (*Cache, error) {
	size := config.LRUSize
	if size <= 0 {
		size = 128
	}

	local, err := lru.New[string, domain.VolumeObservation](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}

	cache := &Cache{
		local:      local,
		defaultTTL: config.DefaultTTL,
	}

	if config.RedisURL != "" {
		opts, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		opts.PoolSize = config.PoolSize
		opts.PoolTimeout = config.PoolTimeout
		opts.MaxRetries = config.MaxRetries

		client := redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		cache.redis = client
	}

	return cache, nil
}

// Key derives the cache key from the input tensor.
func Key(tensor []byte) string {
	digest := sha256.Sum256(tensor)
	return "seg:" + hex.EncodeToString(digest[:])
}

// Get returns the cached observation for a tensor key, checking the local
// tier before Redis. Redis errors degrade to a miss; the cache never fails
// an analysis.
func (c *Cache) Get(ctx context.Context, key string) (domain.VolumeObservation, bool) {
	if volumes, ok := c.local.Get(key); ok {
		return volumes, true
	}

	if c.redis == nil {
		return nil, false
	}

	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}

	var volumes domain.VolumeObservation
	if err := json.Unmarshal([]byte(val), &volumes); err != nil {
		c.redis.Del(ctx, key)
		return nil, false
	}

	c.local.Add(key, volumes)
	return volumes, true
}

// Set stores an observation in both tiers.
func (c *Cache) Set(ctx context.Context, key string, volumes domain.VolumeObservation) {
	c.local.Add(key, volumes)

	if c.redis == nil {
		return
	}
	payload, err := json.Marshal(volumes)
	if err != nil {
		return
	}
	c.redis.Set(ctx, key, payload, c.defaultTTL)
}

// Close releases the Redis connection if one is open.
func (c *Cache) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}

// CachingService wraps a SegmentationService with the cache.
type CachingService struct {
	inner domain.SegmentationService
	cache *Cache
}

// NewCachingService wraps an inference client with result memoization.
func NewCachingService(inner domain.SegmentationService, cache *Cache) *CachingService {
	return &CachingService{inner: inner, cache: cache}
}

// Segment returns the cached observation when the exact tensor has been
// segmented before, delegating to the inference client otherwise.
func (s *CachingService) Segment(ctx context.Context, tensor []byte) (domain.VolumeObservation, error) {
	key := Key(tensor)
	if volumes, ok := s.cache.Get(ctx, key); ok {
		return volumes, nil
	}

	volumes, err := s.inner.Segment(ctx, tensor)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, volumes)
	return volumes, nil
}
