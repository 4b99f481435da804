package servicecache

import (
	"context"
	"errors"
)

// ErrInvalidResultType is returned when a cached value cannot be
// converted back to the caller's expected type.
var ErrInvalidResultType = errors.New("servicecache: cached value has unexpected type")

// KeySerializer builds a cache key from an operation name plus its
// arguments. It must produce stable keys across calls for equal inputs.
type KeySerializer interface {
	SerializeKey(op string, args ...any) string
}

// CacheService is the read-through cache contract the decorator depends
// on. The default implementation is sturdyc-backed; alternate backends
// only need these three operations.
type CacheService interface {
	GetOrFetch(ctx context.Context, key string, fetch func(ctx context.Context) (any, error)) (any, error)
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// GetOrFetch is the type-safe wrapper over CacheService.GetOrFetch.
func GetOrFetch[T any](ctx context.Context, service CacheService, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	result, err := service.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	if result == nil {
		var zero T
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		var zero T
		return zero, ErrInvalidResultType
	}
	return typed, nil
}
