package engine

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/crickpulse/prediction-api/internal/models"
)

// Prometheus metrics
var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crickpulse_prediction_cache_hits_total",
		Help: "Total number of prediction cache hits",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crickpulse_prediction_cache_misses_total",
		Help: "Total number of prediction cache misses",
	})

	cacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crickpulse_prediction_cache_evictions_total",
		Help: "Total number of prediction cache evictions",
	})

	cacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crickpulse_prediction_cache_size",
		Help: "Current number of entries in the prediction cache",
	})
)

type cacheEntry struct {
	result   models.PredictionResult
	storedAt time.Time
}

// PredictionCache is a bounded, TTL-based memo of computed predictions,
// shared by all concurrent requests. Eviction is insertion-order (FIFO):
// a hit does not refresh an entry's position.
type PredictionCache struct {
	mu       sync.Mutex
	entries  map[string]cacheEntry
	order    []string // insertion order, oldest first
	ttl      time.Duration
	capacity int
	hits     int64
	misses   int64
	now      func() time.Time
}

func NewPredictionCache(ttl time.Duration, capacity int) *PredictionCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if capacity <= 0 {
		capacity = 100
	}
	return &PredictionCache{
		entries:  make(map[string]cacheEntry, capacity),
		order:    make([]string, 0, capacity),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// Get returns the cached result for key, marked FromCache, or false when the
// key is absent or past its TTL. Expired entries are dropped on sight.
func (c *PredictionCache) Get(key string) (models.PredictionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		cacheMisses.Inc()
		return models.PredictionResult{}, false
	}

	if c.now().Sub(entry.storedAt) > c.ttl {
		c.removeLocked(key)
		c.misses++
		cacheMisses.Inc()
		return models.PredictionResult{}, false
	}

	c.hits++
	cacheHits.Inc()

	result := cloneResult(entry.result)
	result.FromCache = true
	return result, true
}

// Put stores a result, evicting the oldest-inserted entry when at capacity.
func (c *PredictionCache) Put(key string, result models.PredictionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		// Refresh content and timestamp; insertion position is kept.
		c.entries[key] = cacheEntry{result: cloneResult(result), storedAt: c.now()}
		return
	}

	if len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}

	c.entries[key] = cacheEntry{result: cloneResult(result), storedAt: c.now()}
	c.order = append(c.order, key)
	cacheSize.Set(float64(len(c.entries)))
}

// Clear drops every entry. Hit/miss counters survive so hitRate stays
// meaningful across cache resets.
func (c *PredictionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry, c.capacity)
	c.order = c.order[:0]
	cacheSize.Set(0)
}

// Stats reports current occupancy and hit rate.
func (c *PredictionCache) Stats() models.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := models.CacheStats{
		Size:   len(c.entries),
		Hits:   c.hits,
		Misses: c.misses,
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

func (c *PredictionCache) evictOldestLocked() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
	cacheEvictions.Inc()
	cacheSize.Set(float64(len(c.entries)))
}

func (c *PredictionCache) removeLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	cacheSize.Set(float64(len(c.entries)))
}

func cloneResult(r models.PredictionResult) models.PredictionResult {
	clone := r
	clone.KeyFactors = append([]string(nil), r.KeyFactors...)
	clone.RiskFactors = append([]string(nil), r.RiskFactors...)
	return clone
}
