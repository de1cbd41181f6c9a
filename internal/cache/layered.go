package cache

import (
	"errors"
	"time"

	"github.com/ppiankov/claimcheck/internal/metrics"
)

// Layer is a named cache tier
type Layer struct {
	Name  string // "memory", "disk", "redis"
	Cache Cache
}

// LayeredCache checks tiers fastest-first and promotes hits into faster tiers
type LayeredCache struct {
	layers []Layer
}

// NewLayeredCache creates a new layered cache from fastest to slowest tier
func NewLayeredCache(layers ...Layer) *LayeredCache {
	return &LayeredCache{layers: layers}
}

// Get retrieves a value, promoting it to every faster tier that missed
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	for i, layer := range c.layers {
		val, found := layer.Cache.Get(key)
		if !found {
			metrics.CacheTotal.WithLabelValues(layer.Name, "miss").Inc()
			continue
		}
		metrics.CacheTotal.WithLabelValues(layer.Name, "hit").Inc()

		for _, faster := range c.layers[:i] {
			_ = faster.Cache.Set(key, val, 0)
		}
		return val, true
	}
	return nil, false
}

// Set stores a value in every tier
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	var errs []error
	for _, layer := range c.layers {
		if err := layer.Cache.Set(key, value, ttl); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Delete removes a value from every tier
func (c *LayeredCache) Delete(key string) error {
	var errs []error
	for _, layer := range c.layers {
		if err := layer.Cache.Delete(key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Clear removes all values from every tier
func (c *LayeredCache) Clear() error {
	var errs []error
	for _, layer := range c.layers {
		if err := layer.Cache.Clear(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
