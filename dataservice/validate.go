package dataservice

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-multierror"

	"github.com/goliatone/go-data-service/store"
)

// ValidatorFunc checks an entity before persistence. Validators observe,
// they never transform: on success the original entity is persisted as-is.
type ValidatorFunc func(entity store.Document) error

// NewSchemaValidator compiles a declarative ozzo-validation key schema
// into a ValidatorFunc. Extra keys not named by the schema are allowed.
//
//	validator := dataservice.NewSchemaValidator(
//		validation.Key("title", validation.Required, validation.Length(1, 120)),
//		validation.Key("votes", validation.Min(0)),
//	)
func NewSchemaValidator(keys ...*validation.KeyRules) ValidatorFunc {
	rule := validation.Map(keys...).AllowExtraKeys()
	return func(entity store.Document) error {
		if err := validation.Validate(map[string]any(entity), rule); err != nil {
			return &ValidationError{Err: err}
		}
		return nil
	}
}

// validateEntity runs the configured validator against a single entity.
// Without a configured validator this is a no-op.
func (s *Service) validateEntity(entity store.Document) error {
	if s.settings.EntityValidator == nil {
		return nil
	}
	err := s.settings.EntityValidator(entity)
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		err = &ValidationError{Err: err}
	}
	return err
}

// validateEntities validates each entity independently. Failures are
// aggregated across the batch with go-multierror; the batch is rejected
// as a whole when any entity fails.
func (s *Service) validateEntities(entities []store.Document) error {
	if s.settings.EntityValidator == nil {
		return nil
	}
	var result *multierror.Error
	for _, entity := range entities {
		if err := s.validateEntity(entity); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
