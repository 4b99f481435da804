package dataservice

import (
	"context"
	"strings"

	"github.com/goliatone/go-data-service/store"
)

// Project builds a new document containing only the values reachable at
// the listed dot-paths. Missing paths are silently omitted. An empty field
// list returns the document unmodified.
func Project(doc store.Document, fields []string) store.Document {
	if len(fields) == 0 {
		return doc
	}
	out := store.Document{}
	for _, path := range fields {
		copyPath(doc, out, strings.Split(path, "."))
	}
	return out
}

// copyPath copies the value at the given path segments from src into dst,
// materializing intermediate objects as needed. Paths that traverse a
// non-object value are skipped.
func copyPath(src, dst store.Document, parts []string) {
	head := parts[0]
	v, ok := src[head]
	if !ok {
		return
	}
	if len(parts) == 1 {
		dst[head] = v
		return
	}
	child, ok := v.(map[string]any)
	if !ok {
		return
	}
	node, ok := dst[head].(map[string]any)
	if !ok {
		node = map[string]any{}
		dst[head] = node
	}
	copyPath(child, node, parts[1:])
}

// effectiveFields resolves the request's field directive against the
// settings default and runs the authorization hook. A nil result means
// the document passes through unprojected.
func (s *Service) effectiveFields(ctx context.Context, p store.Params) []string {
	if p.SuppressFields {
		return nil
	}
	fields := p.Fields
	if fields == nil {
		fields = s.settings.Fields
	}
	if fields != nil && s.settings.AuthorizeFields != nil {
		fields = s.settings.AuthorizeFields(ctx, fields)
	}
	return fields
}
