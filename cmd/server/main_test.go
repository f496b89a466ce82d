package main

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rhuss/docsim/pkg/api"
	"github.com/rhuss/docsim/pkg/config"
	"github.com/rhuss/docsim/pkg/embedding/embeddingtest"
	"github.com/rhuss/docsim/pkg/similarity"
	"github.com/rhuss/docsim/pkg/vectorstore"
	"github.com/rhuss/docsim/pkg/vectorstore/memory"
	"github.com/rhuss/docsim/pkg/vectorstore/sqlite"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.Embedding.BaseURL = "http://localhost:8000"
	cfg.Store.SQLite.Path = filepath.Join(t.TempDir(), "db", "docsim.db")
	return &cfg
}

func TestNewBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Store.Type = config.StoreMemory
		b, err := newBackend(ctx, cfg)
		if err != nil {
			t.Fatalf("newBackend: %v", err)
		}
		defer b.Close()
		if _, ok := b.(*memory.Store); !ok {
			t.Errorf("backend = %T, want *memory.Store", b)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := testConfig(t)
		b, err := newBackend(ctx, cfg)
		if err != nil {
			t.Fatalf("newBackend: %v", err)
		}
		defer b.Close()
		if _, ok := b.(*sqlite.Store); !ok {
			t.Errorf("backend = %T, want *sqlite.Store", b)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Store.Type = "redis"
		if _, err := newBackend(ctx, cfg); err == nil {
			t.Error("expected error for unknown store type")
		}
	})
}

func TestNewEmbedder(t *testing.T) {
	cfg := testConfig(t)

	emb, err := newEmbedder(cfg)
	if err != nil {
		t.Fatalf("newEmbedder: %v", err)
	}
	if emb.Model() != cfg.Embedding.Model {
		t.Errorf("Model() = %q, want %q", emb.Model(), cfg.Embedding.Model)
	}
	if emb.Dimensions() != cfg.Embedding.Dimensions {
		t.Errorf("Dimensions() = %d, want %d", emb.Dimensions(), cfg.Embedding.Dimensions)
	}

	cfg.Embedding.CacheSize = 0
	if _, err := newEmbedder(cfg); err != nil {
		t.Errorf("newEmbedder without cache: %v", err)
	}
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()
	emb := embeddingtest.NewKeyword()

	cfg := testConfig(t)
	p, err := newProvider(ctx, cfg, memory.New(), emb)
	if err != nil {
		t.Fatalf("newProvider(shared): %v", err)
	}
	if _, ok := p.(*vectorstore.Shared); !ok {
		t.Errorf("provider = %T, want *vectorstore.Shared", p)
	}

	cfg.Store.Isolation = vectorstore.IsolationIsolated
	p, err = newProvider(ctx, cfg, memory.New(), emb)
	if err != nil {
		t.Fatalf("newProvider(isolated): %v", err)
	}
	if _, ok := p.(*vectorstore.Isolated); !ok {
		t.Errorf("provider = %T, want *vectorstore.Isolated", p)
	}
}

// TestDefaultConfigWithMockBackend wires the server exactly as run() does,
// from default settings, against the mock embeddings backend.
func TestDefaultConfigWithMockBackend(t *testing.T) {
	mock := httptest.NewServer(embeddingtest.NewServer(embeddingtest.NewKeyword()))
	defer mock.Close()

	cfg := testConfig(t)
	cfg.Embedding.BaseURL = mock.URL
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	ctx := context.Background()
	emb, err := newEmbedder(cfg)
	if err != nil {
		t.Fatalf("newEmbedder: %v", err)
	}
	backend, err := newBackend(ctx, cfg)
	if err != nil {
		t.Fatalf("newBackend: %v", err)
	}
	provider, err := newProvider(ctx, cfg, vectorstore.Instrument(backend), emb)
	if err != nil {
		backend.Close()
		t.Fatalf("newProvider: %v", err)
	}
	defer provider.Close()

	svc, err := similarity.New(provider, similarity.Config{TopK: cfg.Store.TopK})
	if err != nil {
		t.Fatalf("similarity.New: %v", err)
	}

	resp, err := svc.Search(ctx, &api.SimilarityRequest{
		Docs: []string{
			"The cat sat on the mat.",
			"Dogs are loyal pets.",
			"Quantum computers use qubits.",
		},
		Query: "Tell me about pets.",
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Matches) != 3 || resp.Matches[0] != "Dogs are loyal pets." {
		t.Errorf("matches = %v, want the dog sentence first", resp.Matches)
	}
}
