// Package memory provides an in-process store.Adapter backed by a
// sharded concurrent map. It is the default backend for tests, examples,
// and services whose data fits in memory.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/spf13/cast"

	"github.com/goliatone/go-data-service/store"
)

// record pairs a stored document with its insertion sequence so unsorted
// finds return documents in a stable insertion order.
type record struct {
	doc store.Document
	seq uint64
}

// Adapter is an in-memory implementation of store.Adapter. Documents are
// keyed by the string form of their ID field; IDs are generated as UUIDs
// when the inserted entity carries none.
type Adapter struct {
	idField string
	docs    *xsync.MapOf[string, record]
	seq     atomic.Uint64
}

var _ store.Adapter = (*Adapter)(nil)

// New creates a memory adapter keyed on the given ID field.
func New(idField string) *Adapter {
	if idField == "" {
		idField = "_id"
	}
	return &Adapter{
		idField: idField,
		docs:    xsync.NewMapOf[string, record](),
	}
}

// Connect implements store.Adapter. The memory backend is always ready.
func (a *Adapter) Connect(ctx context.Context) error { return nil }

// Disconnect implements store.Adapter.
func (a *Adapter) Disconnect(ctx context.Context) error { return nil }

// Find returns documents matching the parameters, sorted and windowed.
func (a *Adapter) Find(ctx context.Context, params store.Params) ([]any, error) {
	records := a.match(params)
	sortRecords(records, params.Sort)

	if params.Offset > 0 {
		if params.Offset >= len(records) {
			records = nil
		} else {
			records = records[params.Offset:]
		}
	}
	if params.Limit > 0 && params.Limit < len(records) {
		records = records[:params.Limit]
	}

	out := make([]any, len(records))
	for i, r := range records {
		out[i] = clone(r.doc)
	}
	return out, nil
}

// FindByID returns the document with the given ID, or nil when absent.
func (a *Adapter) FindByID(ctx context.Context, id any) (any, error) {
	r, ok := a.docs.Load(idString(id))
	if !ok {
		return nil, nil
	}
	return clone(r.doc), nil
}

// FindByIDs returns documents aligned to the input ID order; absent
// entries are omitted.
func (a *Adapter) FindByIDs(ctx context.Context, ids []any) ([]any, error) {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		if r, ok := a.docs.Load(idString(id)); ok {
			out = append(out, clone(r.doc))
		}
	}
	return out, nil
}

// Count returns the number of documents matching the parameters. Limit
// and Offset are ignored by construction: counting never windows.
func (a *Adapter) Count(ctx context.Context, params store.Params) (int, error) {
	return len(a.match(params)), nil
}

// Insert stores a new entity, generating a UUID when it has no ID.
func (a *Adapter) Insert(ctx context.Context, entity store.Document) (any, error) {
	doc := clone(entity)
	if _, ok := doc[a.idField]; !ok {
		doc[a.idField] = uuid.NewString()
	}
	a.docs.Store(idString(doc[a.idField]), record{doc: doc, seq: a.seq.Add(1)})
	return clone(doc), nil
}

// InsertMany stores entities in input order.
func (a *Adapter) InsertMany(ctx context.Context, entities []store.Document) ([]any, error) {
	out := make([]any, 0, len(entities))
	for _, entity := range entities {
		doc, err := a.Insert(ctx, entity)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

// UpdateByID merges the patch's top-level keys into the stored document.
// The ID field itself is never patched. Returns nil when absent.
func (a *Adapter) UpdateByID(ctx context.Context, id any, patch store.Document) (any, error) {
	key := idString(id)
	r, ok := a.docs.Load(key)
	if !ok {
		return nil, nil
	}
	doc := clone(r.doc)
	for k, v := range patch {
		if k == a.idField {
			continue
		}
		doc[k] = v
	}
	a.docs.Store(key, record{doc: doc, seq: r.seq})
	return clone(doc), nil
}

// UpdateMany patches every document matching the equality filter.
func (a *Adapter) UpdateMany(ctx context.Context, query store.Document, patch store.Document) (int, error) {
	n := 0
	for _, r := range a.match(store.Params{Query: query}) {
		if _, err := a.UpdateByID(ctx, r.doc[a.idField], patch); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// RemoveByID deletes and returns the document, or nil when absent.
func (a *Adapter) RemoveByID(ctx context.Context, id any) (any, error) {
	r, ok := a.docs.LoadAndDelete(idString(id))
	if !ok {
		return nil, nil
	}
	return r.doc, nil
}

// RemoveMany deletes every document matching the equality filter.
func (a *Adapter) RemoveMany(ctx context.Context, query store.Document) (int, error) {
	n := 0
	for _, r := range a.match(store.Params{Query: query}) {
		if _, ok := a.docs.LoadAndDelete(idString(r.doc[a.idField])); ok {
			n++
		}
	}
	return n, nil
}

// Clear deletes all documents.
func (a *Adapter) Clear(ctx context.Context) (int, error) {
	n := a.docs.Size()
	a.docs.Clear()
	return n, nil
}

// EntityToObject returns a plain copy of the stored document. Memory
// natives are already plain maps, so this is a defensive copy only.
func (a *Adapter) EntityToObject(entity any) (store.Document, error) {
	doc, ok := entity.(store.Document)
	if !ok {
		return nil, fmt.Errorf("memory: native document is %T, want a map", entity)
	}
	return clone(doc), nil
}

// match snapshots every record passing the query filter and search terms,
// in insertion order.
func (a *Adapter) match(params store.Params) []record {
	var records []record
	a.docs.Range(func(_ string, r record) bool {
		if !matchQuery(r.doc, params.Query) {
			return true
		}
		if !matchSearch(r.doc, params.Search, params.SearchFields) {
			return true
		}
		records = append(records, r)
		return true
	})
	sort.Slice(records, func(i, j int) bool { return records[i].seq < records[j].seq })
	return records
}

// matchQuery applies the equality filter.
func matchQuery(doc store.Document, query store.Document) bool {
	for k, want := range query {
		got, ok := doc[k]
		if !ok {
			return false
		}
		if !queryValueEqual(got, want) {
			return false
		}
	}
	return true
}

// queryValueEqual compares a document value against a filter value.
// Scalars compare loosely through their string form so numeric filters
// survive JSON decoding. Slice and map values are not comparable with ==
// and compare structurally instead.
func queryValueEqual(got, want any) bool {
	if got == nil || want == nil {
		return got == want
	}
	if !reflect.TypeOf(got).Comparable() || !reflect.TypeOf(want).Comparable() {
		return reflect.DeepEqual(got, want)
	}
	return got == want || cast.ToString(got) == cast.ToString(want)
}

// matchSearch performs a case-insensitive substring match over the named
// fields, or over every string-valued field when none are named.
func matchSearch(doc store.Document, search string, fields []string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	if len(fields) > 0 {
		for _, f := range fields {
			if v, ok := doc[f]; ok {
				if strings.Contains(strings.ToLower(cast.ToString(v)), needle) {
					return true
				}
			}
		}
		return false
	}
	for _, v := range doc {
		if s, ok := v.(string); ok {
			if strings.Contains(strings.ToLower(s), needle) {
				return true
			}
		}
	}
	return false
}

// sortRecords orders records by the given fields; a "-" prefix sorts the
// field descending. Without sort fields the insertion order stands.
func sortRecords(records []record, fields []string) {
	if len(fields) == 0 {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		for _, field := range fields {
			desc := strings.HasPrefix(field, "-")
			name := strings.TrimPrefix(field, "-")
			c := compareValues(records[i].doc[name], records[j].doc[name])
			if c == 0 {
				continue
			}
			if desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// compareValues orders two document values, numerically when both sides
// coerce to numbers, lexically otherwise.
func compareValues(a, b any) int {
	af, aerr := cast.ToFloat64E(a)
	bf, berr := cast.ToFloat64E(b)
	if aerr == nil && berr == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(cast.ToString(a), cast.ToString(b))
}

// idString is the map key for an ID value.
func idString(id any) string {
	return cast.ToString(id)
}

// clone returns a top-level copy of a document so callers never alias the
// stored map.
func clone(doc store.Document) store.Document {
	out := make(store.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
