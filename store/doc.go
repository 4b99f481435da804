// Package store defines the contracts shared between the data-service
// pipeline and its storage backends.
//
// # Overview
//
// The package is intentionally thin: it holds the Adapter interface every
// backend must satisfy, the canonical Params type the pipeline hands to
// adapters, and the pure normalization step that turns raw request
// parameters into Params. Everything with behavior (transformation,
// population, pagination orchestration) lives in the dataservice package.
//
// # Documents
//
// Entities flow through the pipeline as schema-less Document maps. The
// pipeline never assumes a native ID type; adapters own the record shape
// and expose a deserialization hook (EntityToObject) for whatever native
// representation they keep internally.
//
// # Parameter normalization
//
// ParamsFromMap decodes a loosely typed parameter map (string numerics,
// delimited sort strings, fields=false) into Params. Params.Sanitized then
// applies the list-operation defaults and clamping rules. Both steps are
// deterministic and side-effect free so they can run on every request.
package store
