package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lruHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "juvenat_cache_hits_total",
		Help: "In-memory cache hits by cache name.",
	}, []string{"cache"})
	lruMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "juvenat_cache_misses_total",
		Help: "In-memory cache misses by cache name.",
	}, []string{"cache"})
)

// TTL is a size-bounded in-process LRU whose entries expire after a fixed
// time. Each instance counts its hits and misses under its name.
type TTL[V any] struct {
	name  string
	cache *expirable.LRU[string, V]
}

func NewTTL[V any](name string, maxSize int, ttl time.Duration) *TTL[V] {
	if maxSize <= 0 {
		maxSize = 128
	}
	return &TTL[V]{name: name, cache: expirable.NewLRU[string, V](maxSize, nil, ttl)}
}

func (c *TTL[V]) Get(key string) (V, bool) {
	v, ok := c.cache.Get(key)
	if ok {
		lruHitsTotal.WithLabelValues(c.name).Inc()
		return v, true
	}
	lruMissesTotal.WithLabelValues(c.name).Inc()
	return v, false
}

func (c *TTL[V]) Set(key string, v V) { c.cache.Add(key, v) }

func (c *TTL[V]) Delete(key string) { c.cache.Remove(key) }

// Purge drops every entry.
func (c *TTL[V]) Purge() { c.cache.Purge() }

func (c *TTL[V]) Len() int { return c.cache.Len() }
