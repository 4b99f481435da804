// Package cacheinfra adapts the sturdyc in-memory cache to the
// servicecache.CacheService contract.
package cacheinfra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/viccon/sturdyc"
)

// Config holds the sturdyc options the service cache needs.
type Config struct {
	// Capacity is the maximum number of cached entries. Must be > 0.
	Capacity int

	// NumShards controls concurrent access. Must be > 0.
	NumShards int

	// TTL is the default time-to-live for cached entries. Must be > 0.
	TTL time.Duration

	// EvictionPercentage is how much of the cache to evict when capacity
	// is reached, between 1 and 100.
	EvictionPercentage int

	// EvictionInterval overrides how often expired entries are collected.
	// Zero keeps the sturdyc default.
	EvictionInterval time.Duration

	// MissingRecordStorage remembers keys that resolved to nothing so
	// repeated misses skip the backend.
	MissingRecordStorage bool
}

// DefaultConfig returns a Config sized for a typical read-heavy service.
func DefaultConfig() Config {
	return Config{
		Capacity:             10000,
		NumShards:            64,
		TTL:                  5 * time.Minute,
		EvictionPercentage:   10,
		MissingRecordStorage: true,
	}
}

// Validate checks the configuration bounds.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("cacheinfra: Capacity must be greater than 0")
	}
	if c.NumShards <= 0 {
		return fmt.Errorf("cacheinfra: NumShards must be greater than 0")
	}
	if c.TTL <= 0 {
		return fmt.Errorf("cacheinfra: TTL must be greater than 0")
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return fmt.Errorf("cacheinfra: EvictionPercentage must be between 1 and 100")
	}
	return nil
}

func (c Config) options() []sturdyc.Option {
	var opts []sturdyc.Option
	if c.MissingRecordStorage {
		opts = append(opts, sturdyc.WithMissingRecordStorage())
	}
	if c.EvictionInterval > 0 {
		opts = append(opts, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}
	return opts
}

// Service wraps a sturdyc client behind the read-through cache contract.
type Service struct {
	client *sturdyc.Client[any]
}

// NewSturdycService validates the configuration and builds the cache.
func NewSturdycService(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.options()...,
	)
	return &Service{client: client}, nil
}

// GetOrFetch returns the cached value for key, fetching and storing it on
// a miss.
func (s *Service) GetOrFetch(ctx context.Context, key string, fetch func(ctx context.Context) (any, error)) (any, error) {
	return s.client.GetOrFetch(ctx, key, fetch)
}

// Delete removes a single cached entry.
func (s *Service) Delete(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// DeleteByPrefix removes every cached entry whose key starts with the
// given prefix. This backs namespace-wide invalidation.
func (s *Service) DeleteByPrefix(ctx context.Context, prefix string) error {
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			s.client.Delete(key)
		}
	}
	return nil
}
