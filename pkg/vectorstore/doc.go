// Package vectorstore provides named collections of embedded documents and
// the pluggable index backends that persist them.
//
// A Collection pairs an embedding.Embedder with a Backend. The backend only
// stores vectors and answers nearest-neighbor queries; text is turned into
// vectors by the embedder before it reaches the backend. Backend
// implementations live in the memory, sqlite, postgres, and qdrant
// subpackages.
//
// A Provider hands collections to request handlers. The shared provider
// returns one process-wide collection; the isolated provider creates an
// ephemeral collection per request and drops it on release.
package vectorstore
