package dataservice

import (
	"context"
	"reflect"

	"github.com/goliatone/go-data-service/store"
)

// isObject reports whether a native value is a document-like object. Maps
// and (pointers to) structs qualify; scalars short-circuit the pipeline.
func isObject(v any) bool {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	return rv.Kind() == reflect.Map || rv.Kind() == reflect.Struct
}

// Transform runs the document pipeline over a single native document or
// an ordered sequence of them: deserialize via the adapter, encode the ID
// field, populate relations (unless suppressed), and project fields. The
// input shape is preserved: a single document in, a single document out.
// Absent or non-document input short-circuits and is returned unchanged.
// Ordering matches the input at every stage.
func (s *Service) Transform(ctx context.Context, p store.Params, docs any) (any, error) {
	if docs == nil {
		return docs, nil
	}

	var (
		batch  []any
		single bool
	)
	switch v := docs.(type) {
	case []any:
		batch = v
	case []store.Document:
		batch = make([]any, len(v))
		for i, d := range v {
			batch[i] = d
		}
	case store.Document:
		single = true
		batch = []any{v}
	default:
		if !isObject(v) {
			return docs, nil
		}
		single = true
		batch = []any{v}
	}

	objs := make([]store.Document, len(batch))
	for i, d := range batch {
		obj, err := s.adapter.EntityToObject(d)
		if err != nil {
			return nil, err
		}
		objs[i] = obj
	}

	for _, obj := range objs {
		if id, ok := obj[s.settings.IDField]; ok {
			obj[s.settings.IDField] = s.codec.Encode(id)
		}
	}

	if p.WantsPopulate() && len(s.settings.Populates) > 0 {
		if err := s.populate(ctx, objs, s.settings.Populates); err != nil {
			return nil, err
		}
	}

	if fields := s.effectiveFields(ctx, p); len(fields) > 0 {
		for i := range objs {
			objs[i] = Project(objs[i], fields)
		}
	}

	if single {
		return objs[0], nil
	}
	return objs, nil
}

// transformMany is the sequence-typed convenience over Transform.
func (s *Service) transformMany(ctx context.Context, p store.Params, docs []any) ([]store.Document, error) {
	if docs == nil {
		docs = []any{}
	}
	out, err := s.Transform(ctx, p, docs)
	if err != nil {
		return nil, err
	}
	return out.([]store.Document), nil
}

// transformOne is the single-document convenience over Transform.
func (s *Service) transformOne(ctx context.Context, p store.Params, doc any) (store.Document, error) {
	out, err := s.Transform(ctx, p, doc)
	if err != nil {
		return nil, err
	}
	if obj, ok := out.(store.Document); ok {
		return obj, nil
	}
	return nil, ErrNotFound
}
