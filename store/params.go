package store

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
)

// Params is the canonical query-parameter set derived per request. A zero
// Params means "no constraints": adapters treat zero Limit/Offset as
// unbounded, and a nil Populate flag means population is enabled.
type Params struct {
	Limit        int
	Offset       int
	Page         int
	PageSize     int
	Sort         []string
	Search       string
	SearchFields []string

	// Query is an opaque filter object passed through to the adapter.
	Query map[string]any

	// Fields is the requested projection as ordered dot-paths. A nil slice
	// falls back to the service's default projection; SuppressFields
	// (fields=false on the wire) disables projection entirely.
	Fields         []string
	SuppressFields bool

	// Populate suppresses relation population when explicitly false.
	Populate *bool

	// ResultAsObject requests a mapping from ID to document instead of an
	// ordered sequence (model operation only).
	ResultAsObject bool
}

// Limits carries the service-level pagination bounds applied during
// sanitization. MaxPageSize and MaxLimit are ignored when zero.
type Limits struct {
	PageSize    int
	MaxPageSize int
	MaxLimit    int
}

// rawParams is the weakly typed shape ParamsFromMap decodes into before
// the irregular fields (sort, fields, populate) are normalized by hand.
type rawParams struct {
	Limit          int            `mapstructure:"limit"`
	Offset         int            `mapstructure:"offset"`
	Page           int            `mapstructure:"page"`
	PageSize       int            `mapstructure:"pageSize"`
	Search         string         `mapstructure:"search"`
	SearchFields   []string       `mapstructure:"searchFields"`
	Query          map[string]any `mapstructure:"query"`
	ResultAsObject bool           `mapstructure:"resultAsObject"`
}

// ParamsFromMap normalizes a raw request-parameter map into Params.
// Numeric fields arriving as strings are coerced, delimited sort and
// field strings are split into ordered lists, and fields=false is mapped
// to SuppressFields. Unknown keys are ignored.
func ParamsFromMap(raw map[string]any) (Params, error) {
	var rp rawParams
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput:     true,
		IgnoreUntaggedFields: true,
		Result:               &rp,
	})
	if err != nil {
		return Params{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Params{}, fmt.Errorf("store: invalid parameters: %w", err)
	}

	p := Params{
		Limit:          rp.Limit,
		Offset:         rp.Offset,
		Page:           rp.Page,
		PageSize:       rp.PageSize,
		Search:         rp.Search,
		SearchFields:   rp.SearchFields,
		Query:          rp.Query,
		ResultAsObject: rp.ResultAsObject,
	}

	if v, ok := raw["sort"]; ok {
		p.Sort = toFieldList(v)
	}
	if v, ok := raw["fields"]; ok {
		if b, err := cast.ToBoolE(v); err == nil && !b {
			p.SuppressFields = true
		} else {
			p.Fields = toFieldList(v)
		}
	}
	if v, ok := raw["populate"]; ok {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return Params{}, fmt.Errorf("store: invalid populate flag %v", v)
		}
		p.Populate = &b
	}

	return p, nil
}

// toFieldList accepts a delimited string or a sequence and returns the
// ordered field-name list. Delimiters are spaces and commas.
func toFieldList(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case string:
		fields := strings.FieldsFunc(val, func(r rune) bool {
			return r == ' ' || r == ','
		})
		return fields
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, cast.ToString(item))
		}
		return out
	default:
		return nil
	}
}

// WantsPopulate reports whether population is enabled for this request.
// Population defaults to on unless explicitly suppressed.
func (p Params) WantsPopulate() bool {
	return p.Populate == nil || *p.Populate
}

// Copy returns an independent copy of the parameters. Slices and the
// query map are duplicated so concurrent consumers never share state.
func (p Params) Copy() Params {
	out := p
	if p.Sort != nil {
		out.Sort = append([]string(nil), p.Sort...)
	}
	if p.SearchFields != nil {
		out.SearchFields = append([]string(nil), p.SearchFields...)
	}
	if p.Fields != nil {
		out.Fields = append([]string(nil), p.Fields...)
	}
	if p.Query != nil {
		out.Query = make(map[string]any, len(p.Query))
		for k, v := range p.Query {
			out.Query[k] = v
		}
	}
	if p.Populate != nil {
		b := *p.Populate
		out.Populate = &b
	}
	return out
}

// WithoutPagination returns a copy with every pagination field cleared.
// Count calls receive this copy so pagination can never skew totals.
func (p Params) WithoutPagination() Params {
	out := p.Copy()
	out.Limit = 0
	out.Offset = 0
	out.Page = 0
	out.PageSize = 0
	return out
}

// Sanitized applies the service-level defaults and clamping rules and
// returns an independent copy. When list is true the page-based defaults
// kick in: PageSize defaults from limits, Page defaults to 1, PageSize is
// clamped to MaxPageSize, and Limit/Offset are derived from the page
// window. In every mode Limit is clamped to MaxLimit when one is set.
func (p Params) Sanitized(limits Limits, list bool) Params {
	out := p.Copy()

	if list {
		if out.PageSize <= 0 {
			out.PageSize = limits.PageSize
		}
		if limits.MaxPageSize > 0 && out.PageSize > limits.MaxPageSize {
			out.PageSize = limits.MaxPageSize
		}
		if out.Page <= 0 {
			out.Page = 1
		}
		out.Limit = out.PageSize
		out.Offset = (out.Page - 1) * out.PageSize
	}

	if limits.MaxLimit > 0 && out.Limit > limits.MaxLimit {
		out.Limit = limits.MaxLimit
	}

	return out
}
