// Package similarity implements the core orchestration for docsim. The
// Service implements transport.Searcher: for every request it acquires a
// collection, replaces its contents with the request's documents, and
// returns the documents closest to the query.
//
// With a shared collection provider, concurrent requests operate on the
// same collection without locking and may observe each other's documents.
// Use the isolated provider when requests must not interfere.
package similarity
