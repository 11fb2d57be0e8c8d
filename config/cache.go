package config

import (
	"time"

	"github.com/patrickmn/go-cache"
)

const minCleanupInterval = time.Minute

// NewFeatureCache creates the cache for fetched feature sets. Expired
// entries are swept at twice the TTL. A non-positive TTL disables caching
// and returns nil.
func NewFeatureCache(ttl time.Duration) *cache.Cache {
	if ttl <= 0 {
		return nil
	}
	cleanup := 2 * ttl
	if cleanup < minCleanupInterval {
		cleanup = minCleanupInterval
	}
	return cache.New(ttl, cleanup)
}
