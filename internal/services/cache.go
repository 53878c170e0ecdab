package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/AnshRaj112/aura-backend/internal/database"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// TrendingCacheKey holds the computed trending-hashtags payload
	TrendingCacheKey = "trending_hashtags"
	// TrendingCacheTTL bounds how stale the trending list may get
	TrendingCacheTTL = 10 * time.Minute
)

// CacheService provides Redis-backed caching for derived data that is
// expensive to recompute on every request.
type CacheService struct{}

// Get retrieves a value from cache. A miss is reported as found=false, not an error.
func (c *CacheService) Get(key string, dest interface{}) (bool, error) {
	ctx := context.Background()
	cacheKey := CacheKeyPrefix + key

	val, err := database.RedisClient.Get(ctx, cacheKey).Result()
	if err != nil {
		return false, nil // Cache miss
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}

	return true, nil
}

// Set stores a JSON-marshalled value in cache with a TTL.
func (c *CacheService) Set(key string, value interface{}, ttl time.Duration) error {
	ctx := context.Background()
	cacheKey := CacheKeyPrefix + key

	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return database.RedisClient.Set(ctx, cacheKey, jsonData, ttl).Err()
}

// Delete removes a value from cache. Used to invalidate derived data when the
// underlying collection changes (memory created or deleted).
func (c *CacheService) Delete(key string) error {
	ctx := context.Background()
	cacheKey := CacheKeyPrefix + key
	return database.RedisClient.Del(ctx, cacheKey).Err()
}

// Global cache service instance
var Cache = &CacheService{}
