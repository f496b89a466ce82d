// Package memory provides an in-memory implementation of vectorstore.Backend
// for testing and lightweight deployments. Collections are lost when the
// process restarts. Search is brute-force cosine similarity.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/rhuss/docsim/pkg/vectorstore"
)

// collection holds the points of one named collection.
type collection struct {
	dims   int
	points map[string]vectorstore.Point
}

// Store is an in-memory vector Backend.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// Ensure Store implements vectorstore.Backend at compile time.
var _ vectorstore.Backend = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{collections: make(map[string]*collection)}
}

// Name returns "memory".
func (s *Store) Name() string { return "memory" }

// CreateCollection creates a collection. Creating an existing collection
// fails.
func (s *Store) CreateCollection(_ context.Context, name string, dimensions int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collections[name]; exists {
		return fmt.Errorf("collection %q already exists", name)
	}
	s.collections[name] = &collection{
		dims:   dimensions,
		points: make(map[string]vectorstore.Point),
	}
	return nil
}

// GetCollection returns collection metadata or vectorstore.ErrNotFound.
func (s *Store) GetCollection(_ context.Context, name string) (*vectorstore.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, vectorstore.ErrNotFound
	}
	return &vectorstore.CollectionInfo{Name: name, Dimensions: c.dims, Count: len(c.points)}, nil
}

// DeleteCollection removes a collection if it exists.
func (s *Store) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections, name)
	return nil
}

// DeleteAll removes every point from a collection.
func (s *Store) DeleteAll(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return vectorstore.ErrNotFound
	}
	c.points = make(map[string]vectorstore.Point)
	return nil
}

// Upsert stores points, replacing existing ones by ID. A collection created
// without dimensions adopts the length of the first vector it receives.
func (s *Store) Upsert(_ context.Context, name string, points []vectorstore.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return vectorstore.ErrNotFound
	}

	for _, p := range points {
		if c.dims == 0 {
			c.dims = len(p.Vector)
		}
		if len(p.Vector) != c.dims {
			return fmt.Errorf("point %q has %d dimensions, collection has %d: %w",
				p.ID, len(p.Vector), c.dims, vectorstore.ErrDimensionMismatch)
		}
	}

	for _, p := range points {
		p.Vector = append([]float32(nil), p.Vector...)
		c.points[p.ID] = p
	}
	return nil
}

// Search scores every point against vector and returns the best k.
func (s *Store) Search(_ context.Context, name string, vector []float32, k int) ([]vectorstore.SearchMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, vectorstore.ErrNotFound
	}

	matches := make([]vectorstore.SearchMatch, 0, len(c.points))
	for _, p := range c.points {
		matches = append(matches, vectorstore.SearchMatch{
			ID:      p.ID,
			Content: p.Content,
			Score:   vectorstore.CosineSimilarity(vector, p.Vector),
			Ordinal: p.Ordinal,
		})
	}
	return vectorstore.TopK(matches, k), nil
}

// Count returns the number of points in a collection.
func (s *Store) Count(_ context.Context, name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return 0, vectorstore.ErrNotFound
	}
	return len(c.points), nil
}

// HealthCheck always succeeds.
func (s *Store) HealthCheck(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }
