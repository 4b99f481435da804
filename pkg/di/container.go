// Package di wires the data-service components into ready-to-use
// defaults: a memory adapter, an in-process invalidation broker, and a
// sturdyc-backed read cache.
package di

import (
	"github.com/rs/zerolog"

	"github.com/goliatone/go-data-service/adapters/memory"
	"github.com/goliatone/go-data-service/dataservice"
	"github.com/goliatone/go-data-service/internal/cacheinfra"
	"github.com/goliatone/go-data-service/pubsub"
	"github.com/goliatone/go-data-service/servicecache"
	"github.com/goliatone/go-data-service/store"
)

// Container manages the shared singletons (broker, cache, serializer) and
// provides factories for services built on them.
type Container struct {
	broker        *pubsub.Broker
	cacheService  servicecache.CacheService
	keySerializer servicecache.KeySerializer
	logger        zerolog.Logger
	caller        dataservice.Caller
}

// ContainerOption customizes a Container at construction time.
type ContainerOption func(*Container)

// WithLogger sets the logger handed to every service the container
// builds.
func WithLogger(logger zerolog.Logger) ContainerOption {
	return func(c *Container) { c.logger = logger }
}

// WithCaller sets the remote-lookup transport handed to every service
// the container builds.
func WithCaller(caller dataservice.Caller) ContainerOption {
	return func(c *Container) { c.caller = caller }
}

// NewContainer creates a container with the given cache configuration.
func NewContainer(cfg cacheinfra.Config, opts ...ContainerOption) (*Container, error) {
	cacheService, err := cacheinfra.NewSturdycService(cfg)
	if err != nil {
		return nil, err
	}

	c := &Container{
		broker:        pubsub.NewBroker(),
		cacheService:  cacheService,
		keySerializer: servicecache.NewDefaultKeySerializer(),
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewContainerWithDefaults creates a container using the default cache
// configuration.
func NewContainerWithDefaults(opts ...ContainerOption) (*Container, error) {
	return NewContainer(cacheinfra.DefaultConfig(), opts...)
}

// Broker returns the shared in-process invalidation broker.
func (c *Container) Broker() *pubsub.Broker { return c.broker }

// CacheService returns the shared cache service instance.
func (c *Container) CacheService() servicecache.CacheService { return c.cacheService }

// KeySerializer returns the shared key serializer instance.
func (c *Container) KeySerializer() servicecache.KeySerializer { return c.keySerializer }

// NewService builds a data service over the given adapter, wired to the
// container's broker, logger, and caller.
func (c *Container) NewService(settings dataservice.Settings, adapter store.Adapter) (*dataservice.Service, error) {
	opts := []dataservice.Option{
		dataservice.WithPublisher(c.broker),
		dataservice.WithLogger(c.logger),
	}
	if c.caller != nil {
		opts = append(opts, dataservice.WithCaller(c.caller))
	}
	return dataservice.New(settings, adapter, opts...)
}

// NewMemoryService builds a data service over a fresh memory adapter.
func (c *Container) NewMemoryService(settings dataservice.Settings) (*dataservice.Service, error) {
	return c.NewService(settings, memory.New(settings.IDField))
}

// NewCachedService wraps a service built by this container with the
// shared read cache and subscribes its invalidation handler to the
// broker.
func (c *Container) NewCachedService(base *dataservice.Service) *servicecache.CachedService {
	cached := servicecache.New(base, c.cacheService, c.keySerializer)
	c.broker.Subscribe(cached.HandleInvalidation)
	return cached
}
