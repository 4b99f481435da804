package cacheinfra

import (
	"context"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "zero capacity", mutate: func(c *Config) { c.Capacity = 0 }, wantErr: true},
		{name: "zero shards", mutate: func(c *Config) { c.NumShards = 0 }, wantErr: true},
		{name: "zero ttl", mutate: func(c *Config) { c.TTL = 0 }, wantErr: true},
		{name: "eviction percentage low", mutate: func(c *Config) { c.EvictionPercentage = 0 }, wantErr: true},
		{name: "eviction percentage high", mutate: func(c *Config) { c.EvictionPercentage = 101 }, wantErr: true},
		{name: "eviction interval optional", mutate: func(c *Config) { c.EvictionInterval = time.Minute }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewSturdycServiceRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 0
	if _, err := NewSturdycService(cfg); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestGetOrFetchCachesValues(t *testing.T) {
	svc, err := NewSturdycService(DefaultConfig())
	if err != nil {
		t.Fatalf("failed to build cache: %v", err)
	}
	ctx := context.Background()

	fetches := 0
	fetch := func(context.Context) (any, error) {
		fetches++
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		got, err := svc.GetOrFetch(ctx, "key", fetch)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "value" {
			t.Fatalf("got %v, want value", got)
		}
	}
	if fetches != 1 {
		t.Errorf("fetch ran %d times, want 1", fetches)
	}
}

func TestDelete(t *testing.T) {
	svc, err := NewSturdycService(DefaultConfig())
	if err != nil {
		t.Fatalf("failed to build cache: %v", err)
	}
	ctx := context.Background()

	fetches := 0
	fetch := func(context.Context) (any, error) {
		fetches++
		return fetches, nil
	}

	if _, err := svc.GetOrFetch(ctx, "key", fetch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(ctx, "key"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetOrFetch(ctx, "key", fetch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetches != 2 {
		t.Errorf("fetch ran %d times, want a refetch after delete", fetches)
	}
}

func TestDeleteByPrefix(t *testing.T) {
	svc, err := NewSturdycService(DefaultConfig())
	if err != nil {
		t.Fatalf("failed to build cache: %v", err)
	}
	ctx := context.Background()

	counts := map[string]int{}
	fetchFor := func(key string) func(context.Context) (any, error) {
		return func(context.Context) (any, error) {
			counts[key]++
			return key, nil
		}
	}

	for _, key := range []string{"posts::Find", "posts::Count", "users::Find"} {
		if _, err := svc.GetOrFetch(ctx, key, fetchFor(key)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if err := svc.DeleteByPrefix(ctx, "posts::"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, key := range []string{"posts::Find", "posts::Count", "users::Find"} {
		if _, err := svc.GetOrFetch(ctx, key, fetchFor(key)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if counts["posts::Find"] != 2 || counts["posts::Count"] != 2 {
		t.Errorf("prefixed entries not flushed: %v", counts)
	}
	if counts["users::Find"] != 1 {
		t.Errorf("unrelated entry flushed: %v", counts)
	}
}
