// Package servicecache provides a read-through caching decorator for
// data services.
//
// # Overview
//
// CachedService wraps a dataservice.Service and caches its read
// operations (Find, Count, List, Get) under a per-service key namespace.
// Write operations pass through to the base service untouched; the
// invalidation broadcast the base service emits after every mutation is
// what flushes the namespace, via HandleInvalidation.
//
// # Wiring
//
//	cache, _ := servicecache.NewCacheService(servicecache.DefaultConfig())
//	cached := servicecache.New(svc, cache, servicecache.NewDefaultKeySerializer())
//	broker.Subscribe(cached.HandleInvalidation)
//
// With the broker shared between the base service's publisher and the
// decorator's subscription, any mutation (local or from another holder
// of the same broker) invalidates this decorator's entries.
//
// # Key structure
//
// Keys are "<service>::<op>::<serialized args>". The serializer writes
// every key-affecting Params field in a fixed order, with query maps
// rendered under sorted keys, so equal requests always share an entry.
package servicecache
