// Package api defines the wire types for the docsim similarity endpoint.
//
// The package has no external dependencies and performs no I/O. It holds
// the request and response bodies, the structured error type returned to
// clients, and request validation.
//
// Core types:
//   - [SimilarityRequest]: candidate documents plus a query string
//   - [SimilarityResponse]: the best matching documents, best first
//   - [APIError]: structured error with type, param, and message
package api
