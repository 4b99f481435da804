package dataservice

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/goliatone/go-data-service/store"
)

// LocalResolver resolves a deduplicated foreign-ID list into a mapping
// from ID key (see IDKey) to resolved value.
type LocalResolver func(ctx context.Context, ids []any, rule PopulateRule) (map[string]any, error)

// RemoteLookup describes a batched lookup against another service. The
// callee receives {id: idList, resultAsObject: true, populate: Populate}
// merged with ExtraParams, and must return a mapping from encoded ID to
// resolved value.
type RemoteLookup struct {
	Action      string
	ExtraParams map[string]any

	// Populate propagates nested population to the callee. The engine
	// never recurses locally; the flag is simply forwarded.
	Populate bool
}

// PopulateRule resolves a document field whose value(s) are foreign IDs.
// Exactly one of Handler or Remote must be set; the shape is checked once
// at configuration time rather than per request.
type PopulateRule struct {
	Handler LocalResolver
	Remote  *RemoteLookup
}

func (r PopulateRule) validate() error {
	if r.Handler == nil && r.Remote == nil {
		return fmt.Errorf("needs a Handler or a Remote lookup")
	}
	if r.Handler != nil && r.Remote != nil {
		return fmt.Errorf("Handler and Remote are mutually exclusive")
	}
	if r.Remote != nil && r.Remote.Action == "" {
		return fmt.Errorf("Remote lookup needs an Action")
	}
	return nil
}

// IDKey normalizes an ID value into the string key used by resolver
// result mappings. Remote callees key their mappings by encoded ID, which
// under the default identity codec matches the raw foreign-key value.
func IDKey(id any) string {
	if s, ok := id.(string); ok {
		return s
	}
	return fmt.Sprint(id)
}

// populateJob is one rule's batch resolution: the field it populates and
// the deduplicated ID list collected across every document in the batch.
type populateJob struct {
	field string
	rule  PopulateRule
	ids   []any
}

// populate resolves every configured rule over the document batch. Rules
// execute concurrently and are awaited jointly; the first rule failure
// fails the whole population step.
func (s *Service) populate(ctx context.Context, docs []store.Document, rules map[string]PopulateRule) error {
	jobs := make([]populateJob, 0, len(rules))
	for field, rule := range rules {
		ids := collectIDs(docs, field)
		if len(ids) == 0 {
			// Rule skipped entirely: no resolver is invoked for a batch
			// with no values at the populated field.
			continue
		}
		jobs = append(jobs, populateJob{field: field, rule: rule, ids: ids})
	}
	if len(jobs) == 0 {
		return nil
	}

	results := make([]map[string]any, len(jobs))
	errs := make([]error, len(jobs))

	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.resolveRule(ctx, jobs[i])
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return &PopulationError{Field: jobs[i].field, Err: err}
		}
	}

	for i, job := range jobs {
		mergeResolved(docs, job.field, results[i])
	}
	return nil
}

// resolveRule runs one rule's resolver over its collected ID list.
func (s *Service) resolveRule(ctx context.Context, job populateJob) (map[string]any, error) {
	if job.rule.Handler != nil {
		return job.rule.Handler(ctx, job.ids, job.rule)
	}

	if s.caller == nil {
		return nil, ErrNoCaller
	}
	remote := job.rule.Remote
	params := map[string]any{
		"id":             job.ids,
		"resultAsObject": true,
		"populate":       remote.Populate,
	}
	for k, v := range remote.ExtraParams {
		params[k] = v
	}
	res, err := s.caller.Call(ctx, remote.Action, params)
	if err != nil {
		return nil, err
	}
	switch m := res.(type) {
	case map[string]any:
		return m, nil
	case map[string]store.Document:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("remote action %s returned %T, want a mapping from ID", remote.Action, res)
	}
}

// collectIDs gathers the field's value from every document, flattening
// one level of sequences, discarding nil values, and deduplicating while
// preserving first-seen order.
func collectIDs(docs []store.Document, field string) []any {
	seen := make(map[string]struct{})
	var ids []any
	add := func(v any) {
		if v == nil {
			return
		}
		key := IDKey(v)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		ids = append(ids, v)
	}

	for _, doc := range docs {
		v, ok := doc[field]
		if !ok || v == nil {
			continue
		}
		if items, ok := asSequence(v); ok {
			for _, item := range items {
				add(item)
			}
			continue
		}
		add(v)
	}
	return ids
}

// mergeResolved writes resolved values back into each source document.
// Sequence-valued fields become the ordered sequence of resolved values
// with unresolved IDs dropped; scalar fields become the single resolved
// value, or are removed when unresolved. The asymmetry between the two
// shapes is deliberate and matches the stale-reference policy.
func mergeResolved(docs []store.Document, field string, resolved map[string]any) {
	for _, doc := range docs {
		v, ok := doc[field]
		if !ok || v == nil {
			continue
		}
		if items, ok := asSequence(v); ok {
			values := make([]any, 0, len(items))
			for _, item := range items {
				if r, ok := resolved[IDKey(item)]; ok {
					values = append(values, r)
				}
			}
			doc[field] = values
			continue
		}
		if r, ok := resolved[IDKey(v)]; ok {
			doc[field] = r
		} else {
			delete(doc, field)
		}
	}
}

// asSequence reports whether v is an ordered sequence and returns its
// elements. Any slice type qualifies; documents coming off JSON decoding
// use []any, adapters may hand back typed slices.
func asSequence(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}
