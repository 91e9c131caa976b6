// Package cache provides a two-tier cache for generated recommendations.
// Tier 1 is an in-process LRU for hot profiles; tier 2 is an optional Redis
// backend shared between instances. The engine is deterministic, so a cached
// recommendation is always as good as a freshly generated one for the same
// profile.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fisioflow/recommendation-engine/internal/domain"
)

// cachedRecommendation is the Redis payload with expiry metadata.
type cachedRecommendation struct {
	Recommendation *domain.TreatmentRecommendation `json:"recommendation"`
	CachedAt       time.Time                       `json:"cached_at"`
	ExpiresAt      time.Time                       `json:"expires_at"`
}

// RecommendationCache caches recommendations keyed by a hash of the full
// patient profile. A nil *RecommendationCache is safe to use and acts as a
// no-op, so call sites do not need to branch on cache availability.
type RecommendationCache struct {
	memory     *lru.Cache[string, *domain.TreatmentRecommendation]
	redis      *redis.Client
	defaultTTL time.Duration
	log        *logrus.Logger
}

// New creates a recommendation cache. The Redis tier is attached only when
// the config carries a Redis URL; a failed Redis connection is an error so
// the caller can decide whether to run memory-only.
func New(config domain.CacheConfig, logger *logrus.Logger) (*RecommendationCache, error) {
	size := config.MemorySize
	if size <= 0 {
		size = 256
	}

	memory, err := lru.New[string, *domain.TreatmentRecommendation](size)
	if err != nil {
		return nil, fmt.Errorf("creating memory cache: %w", err)
	}

	cache := &RecommendationCache{
		memory:     memory,
		defaultTTL: config.DefaultTTL,
		log:        logger,
	}

	if config.RedisURL != "" {
		opts, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing Redis URL: %w", err)
		}
		opts.PoolSize = config.PoolSize
		opts.PoolTimeout = config.PoolTimeout
		opts.MaxRetries = config.MaxRetries

		client := redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connecting to Redis: %w", err)
		}

		cache.redis = client
		logger.WithField("pool_size", opts.PoolSize).Info("Redis cache tier attached")
	}

	return cache, nil
}

// Key derives the cache key from the complete profile. Any field change
// produces a new key, which keeps stale plans from leaking across intakes.
func Key(profile *domain.PatientProfile) (string, error) {
	data, err := json.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("marshaling profile for cache key: %w", err)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("recommendation:%x", hash[:12]), nil
}

// Get returns the cached recommendation for a profile, checking the memory
// tier first. Redis errors are logged and treated as misses; the cache never
// fails a request.
func (c *RecommendationCache) Get(ctx context.Context, profile *domain.PatientProfile) (*domain.TreatmentRecommendation, bool) {
	if c == nil {
		return nil, false
	}

	key, err := Key(profile)
	if err != nil {
		return nil, false
	}

	if rec, ok := c.memory.Get(key); ok {
		return rec.Clone(), true
	}

	if c.redis == nil {
		return nil, false
	}

	val, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.WithError(err).Warn("Redis cache read failed")
		return nil, false
	}

	var cached cachedRecommendation
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		c.redis.Del(ctx, key)
		return nil, false
	}
	if time.Now().After(cached.ExpiresAt) {
		c.redis.Del(ctx, key)
		return nil, false
	}

	// Promote to the memory tier.
	c.memory.Add(key, cached.Recommendation.Clone())

	return cached.Recommendation, true
}

// Set stores a recommendation in both tiers. Redis write failures are logged
// and ignored.
func (c *RecommendationCache) Set(ctx context.Context, profile *domain.PatientProfile, rec *domain.TreatmentRecommendation) {
	if c == nil {
		return
	}

	key, err := Key(profile)
	if err != nil {
		return
	}

	c.memory.Add(key, rec.Clone())

	if c.redis == nil {
		return
	}

	ttl := c.defaultTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	cached := cachedRecommendation{
		Recommendation: rec,
		CachedAt:       time.Now(),
		ExpiresAt:      time.Now().Add(ttl),
	}

	data, err := json.Marshal(cached)
	if err != nil {
		c.log.WithError(err).Warn("Marshaling recommendation for cache failed")
		return
	}

	if err := c.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		c.log.WithError(err).Warn("Redis cache write failed")
	}
}

// Invalidate drops the cached recommendation for a profile from both tiers.
func (c *RecommendationCache) Invalidate(ctx context.Context, profile *domain.PatientProfile) {
	if c == nil {
		return
	}

	key, err := Key(profile)
	if err != nil {
		return
	}

	c.memory.Remove(key)

	if c.redis != nil {
		if err := c.redis.Del(ctx, key).Err(); err != nil {
			c.log.WithError(err).Warn("Redis cache invalidation failed")
		}
	}
}

// Ping checks the Redis tier. Memory-only caches always report healthy.
func (c *RecommendationCache) Ping(ctx context.Context) error {
	if c == nil || c.redis == nil {
		return nil
	}
	return c.redis.Ping(ctx).Err()
}

// Close releases the Redis connection if one is attached.
func (c *RecommendationCache) Close() error {
	if c == nil || c.redis == nil {
		return nil
	}
	return c.redis.Close()
}
