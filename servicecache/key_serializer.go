package servicecache

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-data-service/store"
)

// KeySeparator delimits cache key segments.
const KeySeparator = "::"

// defaultKeySerializer produces deterministic keys for the argument
// shapes the data service actually passes around: Params, IDs, and the
// occasional scalar. Query maps serialize with sorted keys so two equal
// filters always land on the same cache entry.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// SerializeKey builds a cache key from the operation name and arguments.
func (s *defaultKeySerializer) SerializeKey(op string, args ...any) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, op)
	for _, arg := range args {
		parts = append(parts, s.serializeValue(arg))
	}
	return strings.Join(parts, KeySeparator)
}

func (s *defaultKeySerializer) serializeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case store.Params:
		return s.serializeParams(val)
	case string:
		return val
	case []string:
		return strings.Join(val, ",")
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = s.serializeValue(item)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case map[string]any:
		return s.serializeMap(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// serializeParams writes every key-affecting Params field in a fixed
// order. ResultAsObject and projection fields participate because they
// change the response shape.
func (s *defaultKeySerializer) serializeParams(p store.Params) string {
	var b strings.Builder
	fmt.Fprintf(&b, "l=%d,o=%d,pg=%d,ps=%d", p.Limit, p.Offset, p.Page, p.PageSize)
	fmt.Fprintf(&b, ",sort=%s", strings.Join(p.Sort, ","))
	fmt.Fprintf(&b, ",q=%s", s.serializeMap(p.Query))
	fmt.Fprintf(&b, ",s=%s,sf=%s", p.Search, strings.Join(p.SearchFields, ","))
	fmt.Fprintf(&b, ",f=%s,nf=%t", strings.Join(p.Fields, ","), p.SuppressFields)
	fmt.Fprintf(&b, ",pop=%t,obj=%t", p.WantsPopulate(), p.ResultAsObject)
	return b.String()
}

// serializeMap renders a map with sorted keys for determinism, falling
// back to JSON for nested values.
func (s *defaultKeySerializer) serializeMap(m map[string]any) string {
	if len(m) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+s.jsonValue(m[k]))
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

func (s *defaultKeySerializer) jsonValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
