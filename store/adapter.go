package store

import "context"

// Document is the schema-less record shape the pipeline operates on.
type Document = map[string]any

// Adapter is the contract every storage backend must implement. All
// operations may fail with a backend-specific error; those errors are
// propagated to callers unchanged.
//
// Find and Count receive the same sanitized Params, except that the
// pagination orchestrator strips Limit/Offset (and the page fields they
// were derived from) before calling Count. Implementations must therefore
// never let pagination influence Count results.
type Adapter interface {
	// Connect establishes the backend connection. It is retried by the
	// lifecycle manager, so implementations should fail fast rather than
	// block indefinitely.
	Connect(ctx context.Context) error

	// Disconnect releases the backend connection.
	Disconnect(ctx context.Context) error

	// Find returns the ordered sequence of native documents matching the
	// given parameters.
	Find(ctx context.Context, params Params) ([]any, error)

	// FindByID returns the native document with the given ID, or nil when
	// no such document exists.
	FindByID(ctx context.Context, id any) (any, error)

	// FindByIDs returns native documents aligned to the input ID order.
	// Absent entries are omitted from the result.
	FindByIDs(ctx context.Context, ids []any) ([]any, error)

	// Count returns the number of documents matching the parameters,
	// ignoring Limit and Offset.
	Count(ctx context.Context, params Params) (int, error)

	// Insert stores a new entity and returns the resulting native document.
	Insert(ctx context.Context, entity Document) (any, error)

	// InsertMany stores multiple entities, returning the resulting native
	// documents in input order.
	InsertMany(ctx context.Context, entities []Document) ([]any, error)

	// UpdateByID applies a patch to the document with the given ID and
	// returns the updated native document, or nil when no such document
	// exists.
	UpdateByID(ctx context.Context, id any, patch Document) (any, error)

	// UpdateMany applies a patch to every document matching the filter and
	// returns the number of documents touched.
	UpdateMany(ctx context.Context, query Document, patch Document) (int, error)

	// RemoveByID deletes the document with the given ID and returns the
	// removed native document, or nil when no such document exists.
	RemoveByID(ctx context.Context, id any) (any, error)

	// RemoveMany deletes every document matching the filter and returns
	// the number of documents removed.
	RemoveMany(ctx context.Context, query Document) (int, error)

	// Clear deletes all documents and returns how many were removed.
	Clear(ctx context.Context) (int, error)

	// EntityToObject converts a native document into a plain Document.
	// This is the backend-specific deserialization hook; for map-based
	// backends it is little more than a copy.
	EntityToObject(entity any) (Document, error)
}
