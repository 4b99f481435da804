// Package dataservice implements a generic CRUD data-access layer that
// sits between a request dispatcher and a pluggable storage backend.
//
// # Overview
//
// A Service exposes uniform find/count/list/create/get/update/remove
// operations over any store.Adapter and performs the post-processing such
// a layer needs: pagination arithmetic, ID encoding/decoding, field
// projection, relation population, and cache-invalidation signaling on
// mutation.
//
// # Composition
//
// Everything the pipeline depends on is injected at construction time:
//
//	svc, err := dataservice.New(settings, adapter,
//		dataservice.WithPublisher(broker),
//		dataservice.WithCaller(transport),
//		dataservice.WithLogger(logger),
//	)
//
// The Service is stateless between requests; the adapter owns entity
// state and storage-level concurrency control.
//
// # Document pipeline
//
// Every read result flows through a fixed pipeline: adapter-native
// deserialization (EntityToObject), ID encoding via the IDCodec, relation
// population, then field projection. The input shape and ordering are
// preserved at every stage.
//
// # Relation population
//
// Populate rules are declared per field in Settings.Populates as a tagged
// variant: either a LocalResolver function or a RemoteLookup dispatched
// through the injected Caller. All rules for a batch resolve
// concurrently, and a single rule failure fails the whole transform; the
// pipeline never hands back partially populated documents.
//
// # Concurrency
//
// List issues Find and Count together against independent parameter
// copies and awaits both before composing page metadata. No locks are
// taken at this layer. There is no per-request cancellation beyond what
// the adapter honors through the context, and the connect retry loop runs
// until the process is torn down.
//
// # Errors
//
// Validator failures surface as *ValidationError before any adapter call.
// Populate failures surface as *PopulationError. Adapter errors propagate
// unchanged. Mutations are not transactional: if the adapter call
// succeeds and a later pipeline stage fails, the mutation has already
// taken effect.
package dataservice
