// Package transport defines the handler interfaces and middleware chain for
// the docsim HTTP transport layer.
//
// The transport layer bridges external clients and the similarity service.
// It deserializes incoming requests into the protocol types defined in
// pkg/api, dispatches them to a Searcher, and serializes the result or the
// error back to the client as JSON.
//
// # Handler Interfaces
//
//   - Searcher handles the similarity operation.
//   - HealthChecker reports whether the service's collaborators are
//     reachable and backs the /healthz endpoint.
//
// # Middleware
//
// The middleware chain wraps a Searcher with cross-cutting concerns.
// Built-in middleware provides panic recovery, request ID assignment
// (X-Request-ID), and structured logging via log/slog.
//
// # Errors
//
// HTTPStatusFromError is the single place where API error types become
// HTTP status codes. Errors that are not *api.APIError are reported to
// clients as server errors.
package transport
