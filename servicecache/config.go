package servicecache

import (
	"time"

	"github.com/goliatone/go-data-service/internal/cacheinfra"
)

// Config exposes the cache configuration for consumers of this package.
type Config struct {
	Capacity             int
	NumShards            int
	TTL                  time.Duration
	EvictionPercentage   int
	EvictionInterval     time.Duration
	MissingRecordStorage bool
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return fromInternal(cacheinfra.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// NewCacheService constructs the default sturdyc-backed cache service.
func NewCacheService(cfg Config) (CacheService, error) {
	return cacheinfra.NewSturdycService(cfg.toInternal())
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:             c.Capacity,
		NumShards:            c.NumShards,
		TTL:                  c.TTL,
		EvictionPercentage:   c.EvictionPercentage,
		EvictionInterval:     c.EvictionInterval,
		MissingRecordStorage: c.MissingRecordStorage,
	}
}

func fromInternal(cfg cacheinfra.Config) Config {
	return Config{
		Capacity:             cfg.Capacity,
		NumShards:            cfg.NumShards,
		TTL:                  cfg.TTL,
		EvictionPercentage:   cfg.EvictionPercentage,
		EvictionInterval:     cfg.EvictionInterval,
		MissingRecordStorage: cfg.MissingRecordStorage,
	}
}
