package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rhuss/docsim/pkg/embedding"
)

// Isolation modes.
const (
	// IsolationShared hands every request the same collection. Concurrent
	// requests race on it and the last writer wins.
	IsolationShared = "shared"

	// IsolationIsolated gives every request its own ephemeral collection.
	IsolationIsolated = "isolated"
)

// Provider hands out collections to request handlers.
type Provider interface {
	// Acquire returns the collection a request should use.
	Acquire(ctx context.Context) (*Collection, error)

	// Release is called once the request is done with the collection.
	Release(ctx context.Context, c *Collection) error

	// HealthCheck verifies the underlying backend is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases the underlying backend.
	Close() error
}

// Shared returns one process-wide collection to every caller.
type Shared struct {
	backend Backend
	coll    *Collection
}

var _ Provider = (*Shared)(nil)

// NewShared opens (or creates) the named collection and returns a provider
// serving it.
func NewShared(ctx context.Context, backend Backend, embedder embedding.Embedder, name string) (*Shared, error) {
	coll, err := Open(ctx, backend, embedder, name)
	if err != nil {
		return nil, err
	}
	return &Shared{backend: backend, coll: coll}, nil
}

func (s *Shared) Acquire(context.Context) (*Collection, error) { return s.coll, nil }

func (s *Shared) Release(context.Context, *Collection) error { return nil }

func (s *Shared) HealthCheck(ctx context.Context) error { return s.backend.HealthCheck(ctx) }

func (s *Shared) Close() error { return s.backend.Close() }

// Isolated creates a fresh collection named "<prefix>-<uuid>" on every
// Acquire and deletes it on Release.
type Isolated struct {
	backend  Backend
	embedder embedding.Embedder
	prefix   string
}

var _ Provider = (*Isolated)(nil)

// NewIsolated returns a provider creating per-request collections.
func NewIsolated(backend Backend, embedder embedding.Embedder, prefix string) (*Isolated, error) {
	if prefix == "" {
		return nil, fmt.Errorf("collection prefix is required")
	}
	return &Isolated{backend: backend, embedder: embedder, prefix: prefix}, nil
}

func (p *Isolated) Acquire(ctx context.Context) (*Collection, error) {
	name := p.prefix + "-" + uuid.NewString()
	if err := p.backend.CreateCollection(ctx, name, p.embedder.Dimensions()); err != nil {
		return nil, fmt.Errorf("creating collection %q: %w", name, err)
	}
	return newCollection(name, p.backend, p.embedder), nil
}

func (p *Isolated) Release(ctx context.Context, c *Collection) error {
	return c.Drop(ctx)
}

func (p *Isolated) HealthCheck(ctx context.Context) error { return p.backend.HealthCheck(ctx) }

func (p *Isolated) Close() error { return p.backend.Close() }
