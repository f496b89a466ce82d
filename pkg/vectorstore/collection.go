package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/rhuss/docsim/pkg/debug"
	"github.com/rhuss/docsim/pkg/embedding"
)

// Collection is a named set of documents backed by a Backend. Documents are
// embedded with the collection's Embedder on Add and queries are embedded
// on Query.
type Collection struct {
	name     string
	backend  Backend
	embedder embedding.Embedder

	// seq hands out insertion ordinals.
	seq atomic.Int64
}

func newCollection(name string, backend Backend, embedder embedding.Embedder) *Collection {
	return &Collection{name: name, backend: backend, embedder: embedder}
}

// Open returns the named collection, creating it if it cannot be fetched.
// Any error from the lookup, not only ErrNotFound, falls through to
// creation.
func Open(ctx context.Context, backend Backend, embedder embedding.Embedder, name string) (*Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name is required")
	}

	dims := embedder.Dimensions()

	info, err := backend.GetCollection(ctx, name)
	if err != nil {
		slog.Debug("collection lookup failed, creating", "collection", name, "error", err.Error())
		if err := backend.CreateCollection(ctx, name, dims); err != nil {
			return nil, fmt.Errorf("creating collection %q: %w", name, err)
		}
		slog.Info("collection created", "collection", name, "backend", backend.Name(), "dimensions", dims)
		return newCollection(name, backend, embedder), nil
	}

	if dims > 0 && info.Dimensions > 0 && info.Dimensions != dims {
		return nil, fmt.Errorf("collection %q has %d dimensions, embedder produces %d: %w",
			name, info.Dimensions, dims, ErrDimensionMismatch)
	}

	slog.Info("collection opened", "collection", name, "backend", backend.Name(), "count", info.Count)
	return newCollection(name, backend, embedder), nil
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Clear removes every document from the collection. Clearing an empty
// collection succeeds.
func (c *Collection) Clear(ctx context.Context) error {
	if err := c.backend.DeleteAll(ctx, c.name); err != nil {
		return fmt.Errorf("clearing collection %q: %w", c.name, err)
	}
	return nil
}

// Add embeds docs in a single batch and stores them under ids. docs and ids
// must have equal length and ids must be unique.
func (c *Collection) Add(ctx context.Context, docs, ids []string) error {
	if len(docs) != len(ids) {
		return fmt.Errorf("add: %d documents but %d ids", len(docs), len(ids))
	}
	if len(docs) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("add: duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}

	vectors, err := c.embedder.Embed(ctx, docs)
	if err != nil {
		return fmt.Errorf("embedding documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(docs))
	}

	points := make([]Point, len(docs))
	for i := range docs {
		points[i] = Point{
			ID:      ids[i],
			Content: docs[i],
			Vector:  vectors[i],
			Ordinal: c.seq.Add(1),
		}
	}

	if err := c.backend.Upsert(ctx, c.name, points); err != nil {
		return fmt.Errorf("storing documents in %q: %w", c.name, err)
	}

	debug.Log("store", "documents added", "collection", c.name, "count", len(points), "first", debug.Truncate(docs[0], 80))
	return nil
}

// Query embeds text and returns up to k nearest documents, best first.
func (c *Collection) Query(ctx context.Context, text string, k int) ([]SearchMatch, error) {
	if k <= 0 {
		return nil, nil
	}

	vectors, err := c.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for 1 query", len(vectors))
	}

	matches, err := c.backend.Search(ctx, c.name, vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("searching collection %q: %w", c.name, err)
	}

	debug.Log("store", "query", "collection", c.name, "query", debug.Truncate(text, 80), "k", k, "matches", len(matches))
	return matches, nil
}

// Count returns the number of documents in the collection.
func (c *Collection) Count(ctx context.Context) (int, error) {
	n, err := c.backend.Count(ctx, c.name)
	if err != nil {
		return 0, fmt.Errorf("counting collection %q: %w", c.name, err)
	}
	return n, nil
}

// Drop deletes the collection from the backend.
func (c *Collection) Drop(ctx context.Context) error {
	if err := c.backend.DeleteCollection(ctx, c.name); err != nil {
		return fmt.Errorf("dropping collection %q: %w", c.name, err)
	}
	return nil
}
