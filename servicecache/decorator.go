package servicecache

import (
	"context"
	"strings"

	"github.com/goliatone/go-data-service/dataservice"
	"github.com/goliatone/go-data-service/store"
)

// CachedService decorates a data service with read-through caching. Read
// operations (Find, Count, List, Get) are cached under a per-service
// namespace; mutations pass straight through to the base service, whose
// invalidation broadcast comes back around through HandleInvalidation to
// flush the namespace.
type CachedService struct {
	base  *dataservice.Service
	cache CacheService
	keys  KeySerializer

	// prefix namespaces every key this decorator writes so a single
	// DeleteByPrefix clears exactly this service's entries.
	prefix string
}

// New wraps the base service with the given cache and key serializer.
func New(base *dataservice.Service, cache CacheService, keys KeySerializer) *CachedService {
	return &CachedService{
		base:   base,
		cache:  cache,
		keys:   keys,
		prefix: toSnake(base.Name()) + KeySeparator,
	}
}

// HandleInvalidation flushes the namespace when an invalidation pattern
// for this service arrives. Register it with the broker carrying the base
// service's broadcasts:
//
//	broker.Subscribe(cached.HandleInvalidation)
func (c *CachedService) HandleInvalidation(pattern string) {
	name := strings.TrimSuffix(pattern, ".*")
	if name != c.base.Name() {
		return
	}
	// Best effort: a failed flush only means stale reads until TTL.
	_ = c.cache.DeleteByPrefix(context.Background(), c.prefix)
}

func (c *CachedService) key(op string, args ...any) string {
	return c.prefix + c.keys.SerializeKey(op, args...)
}

// Find retrieves matching documents, cached.
func (c *CachedService) Find(ctx context.Context, p store.Params) ([]store.Document, error) {
	return GetOrFetch(ctx, c.cache, c.key("Find", p), func(ctx context.Context) ([]store.Document, error) {
		return c.base.Find(ctx, p)
	})
}

// Count returns the matching entity count, cached.
func (c *CachedService) Count(ctx context.Context, p store.Params) (int, error) {
	return GetOrFetch(ctx, c.cache, c.key("Count", p), func(ctx context.Context) (int, error) {
		return c.base.Count(ctx, p)
	})
}

// List returns a result page, cached as a unit (rows plus totals).
func (c *CachedService) List(ctx context.Context, p store.Params) (*dataservice.PageResult, error) {
	return GetOrFetch(ctx, c.cache, c.key("List", p), func(ctx context.Context) (*dataservice.PageResult, error) {
		return c.base.List(ctx, p)
	})
}

// Get retrieves a single entity by ID, cached.
func (c *CachedService) Get(ctx context.Context, id any, p store.Params) (store.Document, error) {
	return GetOrFetch(ctx, c.cache, c.key("Get", id, p), func(ctx context.Context) (store.Document, error) {
		return c.base.Get(ctx, id, p)
	})
}

// Create passes through to the base service.
func (c *CachedService) Create(ctx context.Context, entity store.Document) (store.Document, error) {
	return c.base.Create(ctx, entity)
}

// CreateMany passes through to the base service.
func (c *CachedService) CreateMany(ctx context.Context, entities []store.Document) ([]store.Document, error) {
	return c.base.CreateMany(ctx, entities)
}

// Update passes through to the base service.
func (c *CachedService) Update(ctx context.Context, id any, patch store.Document) (store.Document, error) {
	return c.base.Update(ctx, id, patch)
}

// UpdateMany passes through to the base service.
func (c *CachedService) UpdateMany(ctx context.Context, query, patch store.Document) (int, error) {
	return c.base.UpdateMany(ctx, query, patch)
}

// Remove passes through to the base service.
func (c *CachedService) Remove(ctx context.Context, id any) (store.Document, error) {
	return c.base.Remove(ctx, id)
}

// RemoveMany passes through to the base service.
func (c *CachedService) RemoveMany(ctx context.Context, query store.Document) (int, error) {
	return c.base.RemoveMany(ctx, query)
}

// Clear passes through to the base service.
func (c *CachedService) Clear(ctx context.Context) (int, error) {
	return c.base.Clear(ctx)
}
