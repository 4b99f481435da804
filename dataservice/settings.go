package dataservice

import (
	"context"
	"fmt"
)

// Defaults applied by DefaultSettings.
const (
	DefaultIDField     = "_id"
	DefaultPageSize    = 10
	DefaultMaxPageSize = 100
)

// Settings is the process-wide configuration of a data service. It is
// validated at construction time and immutable afterwards.
type Settings struct {
	// Name is the service name. It scopes the cache-invalidation pattern
	// ("<Name>.*") and must be unique per service.
	Name string

	// IDField is the document field holding the entity ID.
	// Default: "_id"
	IDField string

	// Fields is the default projection applied when a request carries no
	// field directive. Nil means no projection.
	Fields []string

	// Populates maps document fields to the rule resolving their foreign
	// IDs into related entities.
	Populates map[string]PopulateRule

	// EntityValidator runs against every entity before persistence.
	// Nil disables validation.
	EntityValidator ValidatorFunc

	// AuthorizeFields narrows a requested field list against an allowed
	// set before projection. Nil means every requested field is allowed.
	// Reserved extension point for field-level authorization.
	AuthorizeFields func(ctx context.Context, fields []string) []string

	// AfterConnect runs once after a successful adapter connect. Failures
	// are logged but never fail the connect sequence.
	AfterConnect func(ctx context.Context) error

	// PageSize is the default page size for list operations.
	// Default: 10
	PageSize int

	// MaxPageSize caps the requested page size. Zero disables the cap.
	// Default: 100
	MaxPageSize int

	// MaxLimit caps the requested limit. Zero disables the cap (default).
	MaxLimit int
}

// DefaultSettings returns Settings for the given service name populated
// with the standard defaults.
func DefaultSettings(name string) Settings {
	return Settings{
		Name:        name,
		IDField:     DefaultIDField,
		PageSize:    DefaultPageSize,
		MaxPageSize: DefaultMaxPageSize,
	}
}

// Validate checks the settings and normalizes optional fields that have
// documented defaults. Populate rules are checked here, at configuration
// time, so requests never have to branch on the rule shape.
func (s *Settings) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("dataservice: settings: Name is required")
	}
	if s.IDField == "" {
		s.IDField = DefaultIDField
	}
	if s.PageSize <= 0 {
		s.PageSize = DefaultPageSize
	}
	if s.MaxPageSize < 0 {
		return fmt.Errorf("dataservice: settings: MaxPageSize must not be negative")
	}
	if s.MaxLimit < 0 {
		return fmt.Errorf("dataservice: settings: MaxLimit must not be negative")
	}
	for field, rule := range s.Populates {
		if err := rule.validate(); err != nil {
			return fmt.Errorf("dataservice: settings: populate rule %q: %w", field, err)
		}
	}
	return nil
}
