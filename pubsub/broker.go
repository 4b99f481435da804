// Package pubsub provides the broadcast capability the data service uses
// for cache-invalidation signaling: an in-process broker for single-node
// deployments and a Redis-backed publisher for fan-out across processes.
package pubsub

import (
	"context"
	"sync"
)

// Handler receives a published invalidation pattern.
type Handler func(pattern string)

// Broker is an in-process publisher that fans a pattern out to every
// subscriber synchronously. Subscribers must be fast and must not fail;
// the invalidation signal is fire-and-forget by contract.
type Broker struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewBroker creates an empty in-process broker.
func NewBroker() *Broker {
	return &Broker{}
}

// Subscribe registers a handler for every subsequently published pattern.
func (b *Broker) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish delivers the pattern to every subscriber.
func (b *Broker) Publish(ctx context.Context, pattern string) error {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(pattern)
	}
	return nil
}
