package vectorstore

import "context"

// Point is a single stored entry: the document text, its embedding, and the
// order in which it was added.
type Point struct {
	ID      string
	Content string
	Vector  []float32

	// Ordinal breaks ties between equal scores. Lower ordinals rank first.
	Ordinal int64
}

// SearchMatch is a single nearest-neighbor result.
type SearchMatch struct {
	ID      string
	Content string
	Score   float32
	Ordinal int64
}

// CollectionInfo describes an existing collection.
type CollectionInfo struct {
	Name       string
	Dimensions int
	Count      int
}

// Backend is the pluggable interface for vector indexes. All methods
// address a collection by name. Implementations must be safe for
// concurrent use.
type Backend interface {
	// Name returns a short identifier for the backend type, used as a
	// metrics label.
	Name() string

	// CreateCollection creates a collection. A dimensions value of 0 leaves
	// the dimensionality unconstrained where the backend allows it.
	CreateCollection(ctx context.Context, name string, dimensions int) error

	// GetCollection returns the collection's metadata, or ErrNotFound.
	GetCollection(ctx context.Context, name string) (*CollectionInfo, error)

	// DeleteCollection removes a collection and all of its points.
	// Deleting a missing collection is not an error.
	DeleteCollection(ctx context.Context, name string) error

	// DeleteAll removes every point from a collection but keeps the
	// collection itself.
	DeleteAll(ctx context.Context, collection string) error

	// Upsert stores points, replacing existing points with the same ID.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns up to k points ordered by descending cosine
	// similarity to vector, with ties ordered by ascending Ordinal.
	Search(ctx context.Context, collection string, vector []float32, k int) ([]SearchMatch, error)

	// Count returns the number of points in a collection.
	Count(ctx context.Context, collection string) (int, error)

	// HealthCheck verifies the backend is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases resources.
	Close() error
}
