package dataservice

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-data-service/store"
)

// Caller is the remote-lookup transport used to resolve cross-service
// populate rules. Implementations dispatch the named action with the
// given parameters and return the callee's result.
type Caller interface {
	Call(ctx context.Context, action string, params map[string]any) (any, error)
}

// Publisher is the broadcast capability used for cache invalidation. The
// core only ever publishes a namespace pattern; delivery is best effort
// and can never fail an operation.
type Publisher interface {
	Publish(ctx context.Context, pattern string) error
}

// Service is a generic CRUD data-access layer over an injected storage
// adapter. It owns the post-processing every such layer needs: pagination
// arithmetic, ID encoding, field projection, relation population, and
// cache-invalidation signaling on mutation. The Service itself is
// stateless between requests; entity state lives behind the adapter.
type Service struct {
	settings  Settings
	adapter   store.Adapter
	codec     IDCodec
	caller    Caller
	publisher Publisher
	logger    zerolog.Logger
}

// Option customizes a Service at construction time.
type Option func(*Service)

// WithCodec replaces the default identity ID codec.
func WithCodec(codec IDCodec) Option {
	return func(s *Service) { s.codec = codec }
}

// WithCaller wires the remote-lookup transport used by remote populate
// rules.
func WithCaller(caller Caller) Option {
	return func(s *Service) { s.caller = caller }
}

// WithPublisher wires the broadcast capability used for cache
// invalidation. Without one, mutations simply skip the signal.
func WithPublisher(publisher Publisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

// WithLogger replaces the default no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New validates the settings and assembles a Service around the adapter.
func New(settings Settings, adapter store.Adapter, opts ...Option) (*Service, error) {
	if adapter == nil {
		return nil, fmt.Errorf("dataservice: adapter is required")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	s := &Service{
		settings: settings,
		adapter:  adapter,
		codec:    IdentityCodec(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name returns the service name.
func (s *Service) Name() string { return s.settings.Name }

// Settings returns a copy of the service settings.
func (s *Service) Settings() Settings { return s.settings }

// PageResult is the composed result of a list operation.
type PageResult struct {
	Rows       []store.Document `json:"rows"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
}

func (s *Service) limits() store.Limits {
	return store.Limits{
		PageSize:    s.settings.PageSize,
		MaxPageSize: s.settings.MaxPageSize,
		MaxLimit:    s.settings.MaxLimit,
	}
}

// Find returns the transformed documents matching the given parameters.
func (s *Service) Find(ctx context.Context, p store.Params) ([]store.Document, error) {
	p = p.Sanitized(s.limits(), false)
	docs, err := s.adapter.Find(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.transformMany(ctx, p, docs)
}

// Count returns the number of entities matching the given parameters.
// Pagination fields are stripped before the adapter call.
func (s *Service) Count(ctx context.Context, p store.Params) (int, error) {
	return s.adapter.Count(ctx, p.WithoutPagination())
}

// List composes Find and Count into a page of results. The two adapter
// calls are issued together and awaited jointly; each receives its own
// copy of the sanitized parameters, with Count's copy stripped of
// pagination. Failure of either call fails the whole operation.
func (s *Service) List(ctx context.Context, p store.Params) (*PageResult, error) {
	findParams := p.Sanitized(s.limits(), true)
	countParams := findParams.WithoutPagination()

	var (
		wg       sync.WaitGroup
		rows     []any
		total    int
		findErr  error
		countErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		rows, findErr = s.adapter.Find(ctx, findParams)
	}()
	go func() {
		defer wg.Done()
		total, countErr = s.adapter.Count(ctx, countParams)
	}()
	wg.Wait()

	if findErr != nil {
		return nil, findErr
	}
	if countErr != nil {
		return nil, countErr
	}

	docs, err := s.transformMany(ctx, findParams, rows)
	if err != nil {
		return nil, err
	}

	return &PageResult{
		Rows:       docs,
		Total:      total,
		Page:       findParams.Page,
		PageSize:   findParams.PageSize,
		TotalPages: totalPages(total, findParams.PageSize),
	}, nil
}

// totalPages computes ceil(total/pageSize) with integer arithmetic.
func totalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Create validates and persists a new entity, returning the transformed
// document and signaling cache invalidation.
func (s *Service) Create(ctx context.Context, entity store.Document) (store.Document, error) {
	if err := s.validateEntity(entity); err != nil {
		return nil, err
	}
	doc, err := s.adapter.Insert(ctx, entity)
	if err != nil {
		return nil, err
	}
	out, err := s.transformOne(ctx, store.Params{}, doc)
	if err != nil {
		return nil, err
	}
	s.entityChanged(ctx)
	return out, nil
}

// CreateMany validates and persists a batch of entities in input order.
func (s *Service) CreateMany(ctx context.Context, entities []store.Document) ([]store.Document, error) {
	if err := s.validateEntities(entities); err != nil {
		return nil, err
	}
	docs, err := s.adapter.InsertMany(ctx, entities)
	if err != nil {
		return nil, err
	}
	out, err := s.transformMany(ctx, store.Params{}, docs)
	if err != nil {
		return nil, err
	}
	s.entityChanged(ctx)
	return out, nil
}

// Get returns the transformed entity with the given external ID. The ID
// is decoded before it reaches the adapter. Missing entities yield
// ErrNotFound.
func (s *Service) Get(ctx context.Context, id any, p store.Params) (store.Document, error) {
	doc, err := s.adapter.FindByID(ctx, s.codec.Decode(id))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	return s.transformOne(ctx, p, doc)
}

// Model resolves one or many entities by ID without the not-found
// guarantee Get gives: missing entities are simply absent from the
// result. Pass a []any to resolve a batch. With p.ResultAsObject the
// result is a mapping from encoded ID key to document; otherwise the
// input shape is preserved. Model is service-to-service plumbing (it
// backs remote populate lookups) and is not part of the external action
// set.
func (s *Service) Model(ctx context.Context, id any, p store.Params) (any, error) {
	ids, many := asSequence(id)

	var (
		raw []any
		err error
	)
	if many {
		decoded := make([]any, len(ids))
		for i, v := range ids {
			decoded[i] = s.codec.Decode(v)
		}
		raw, err = s.adapter.FindByIDs(ctx, decoded)
	} else {
		var doc any
		doc, err = s.adapter.FindByID(ctx, s.codec.Decode(id))
		if doc != nil {
			raw = []any{doc}
		}
	}
	if err != nil {
		return nil, err
	}

	docs, err := s.transformMany(ctx, p, raw)
	if err != nil {
		return nil, err
	}

	if p.ResultAsObject {
		out := make(map[string]any, len(docs))
		for _, doc := range docs {
			out[IDKey(doc[s.settings.IDField])] = doc
		}
		return out, nil
	}
	if many {
		return docs, nil
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

// HandleModelCall adapts Model to the remote-lookup request contract:
// a raw parameter map carrying id (scalar or list), resultAsObject,
// populate, and projection fields. Register it under "<name>.model" in
// whatever transport backs the Caller on the other side.
func (s *Service) HandleModelCall(ctx context.Context, raw map[string]any) (any, error) {
	p, err := store.ParamsFromMap(raw)
	if err != nil {
		return nil, err
	}
	return s.Model(ctx, raw["id"], p)
}

// Update validates the patch, applies it, and returns the transformed
// document. Missing entities yield ErrNotFound.
func (s *Service) Update(ctx context.Context, id any, patch store.Document) (store.Document, error) {
	if err := s.validateEntity(patch); err != nil {
		return nil, err
	}
	doc, err := s.adapter.UpdateByID(ctx, s.codec.Decode(id), patch)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	out, err := s.transformOne(ctx, store.Params{}, doc)
	if err != nil {
		return nil, err
	}
	s.entityChanged(ctx)
	return out, nil
}

// UpdateMany validates the patch and applies it to every entity matching
// the filter, returning how many were touched.
func (s *Service) UpdateMany(ctx context.Context, query, patch store.Document) (int, error) {
	if err := s.validateEntity(patch); err != nil {
		return 0, err
	}
	n, err := s.adapter.UpdateMany(ctx, query, patch)
	if err != nil {
		return 0, err
	}
	s.entityChanged(ctx)
	return n, nil
}

// Remove deletes the entity with the given external ID and returns its
// transformed final state. Missing entities yield ErrNotFound.
func (s *Service) Remove(ctx context.Context, id any) (store.Document, error) {
	doc, err := s.adapter.RemoveByID(ctx, s.codec.Decode(id))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	out, err := s.transformOne(ctx, store.Params{}, doc)
	if err != nil {
		return nil, err
	}
	s.entityChanged(ctx)
	return out, nil
}

// RemoveMany deletes every entity matching the filter and returns how
// many were removed.
func (s *Service) RemoveMany(ctx context.Context, query store.Document) (int, error) {
	n, err := s.adapter.RemoveMany(ctx, query)
	if err != nil {
		return 0, err
	}
	s.entityChanged(ctx)
	return n, nil
}

// Clear deletes every entity and returns how many were removed.
func (s *Service) Clear(ctx context.Context) (int, error) {
	n, err := s.adapter.Clear(ctx)
	if err != nil {
		return 0, err
	}
	s.entityChanged(ctx)
	return n, nil
}

// entityChanged broadcasts the namespace-scoped invalidation signal after
// a successful mutation. Fire and forget: publish failures are logged and
// never surface to the caller.
func (s *Service) entityChanged(ctx context.Context) {
	if s.publisher == nil {
		return
	}
	pattern := s.settings.Name + ".*"
	if err := s.publisher.Publish(ctx, pattern); err != nil {
		s.logger.Debug().Err(err).Str("pattern", pattern).Msg("cache invalidation publish failed")
	}
}
