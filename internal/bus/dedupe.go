package bus

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DedupeCache is a TTL-based deduplication cache for inbound messages,
// backed by an expirable LRU so entries both age out after ttl and are
// bounded by maxSize regardless of arrival rate.
//
// IsDuplicate returns true if the key has been seen before.
type DedupeCache struct {
	lru *expirable.LRU[string, struct{}]
}

// NewDedupeCache creates a new dedup cache.
func NewDedupeCache(ttl time.Duration, maxSize int) *DedupeCache {
	return &DedupeCache{
		lru: expirable.NewLRU[string, struct{}](maxSize, nil, ttl),
	}
}

// IsDuplicate returns true if key was already seen within the TTL window.
// If not a duplicate, records the key for future checks.
func (d *DedupeCache) IsDuplicate(key string) bool {
	if _, ok := d.lru.Get(key); ok {
		return true
	}
	d.lru.Add(key, struct{}{})
	return false
}
