package cache

import (
	"time"

	"github.com/ppiankov/claimcheck/internal/model"
)

// New builds the configured cache: memory and disk tiers, plus Redis when
// addresses are configured. The returned func releases resources.
func New(cfg model.CacheConfig) (Cache, func(), error) {
	if !cfg.Enabled {
		return NopCache{}, func() {}, nil
	}

	layers := []Layer{
		{Name: "memory", Cache: NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)},
	}
	if cfg.Dir != "" {
		layers = append(layers, Layer{Name: "disk", Cache: NewDiskCache(cfg.Dir, cfg.DiskTTL)})
	}

	cleanup := func() {}
	if len(cfg.RedisAddr) > 0 {
		rc, err := NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.DiskTTL)
		if err != nil {
			return nil, nil, err
		}
		layers = append(layers, Layer{Name: "redis", Cache: rc})
		cleanup = rc.Close
	}

	return NewLayeredCache(layers...), cleanup, nil
}
