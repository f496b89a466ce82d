package vectorstore

import "errors"

// Sentinel errors for vector store operations.
var (
	// ErrNotFound is returned when a collection does not exist.
	ErrNotFound = errors.New("collection not found")

	// ErrDimensionMismatch is returned when a vector does not match the
	// dimensionality of its collection.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
