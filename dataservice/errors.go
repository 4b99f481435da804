package dataservice

import "errors"

var (
	// ErrNotFound is returned when an entity doesn't exist.
	ErrNotFound = errors.New("dataservice: entity not found")

	// ErrNoCaller is returned when a remote populate rule fires but no
	// remote caller was configured.
	ErrNoCaller = errors.New("dataservice: no remote caller configured")
)

// ValidationError wraps a validator failure. The operation was aborted
// before any adapter call was made.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "dataservice: entity validation failed: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// PopulationError wraps a populate rule's resolver or remote-call failure.
// It fails the enclosing transform; partially populated documents are
// never returned.
type PopulationError struct {
	Field string
	Err   error
}

func (e *PopulationError) Error() string {
	return "dataservice: populating field " + e.Field + ": " + e.Err.Error()
}

func (e *PopulationError) Unwrap() error { return e.Err }
