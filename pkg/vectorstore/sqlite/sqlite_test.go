package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rhuss/docsim/pkg/vectorstore"
	"github.com/rhuss/docsim/pkg/vectorstore/vectorstoretest"
)

func newTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := New(context.Background(), path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBackend(t *testing.T) {
	vectorstoretest.RunBackendTests(t, func(t *testing.T) vectorstore.Backend {
		return newTestStore(t, filepath.Join(t.TempDir(), "docsim.db"))
	})
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "docsim.db")
	ctx := context.Background()

	s, err := New(ctx, path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.CreateCollection(ctx, "documents", 2); err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}
	if err := s.Upsert(ctx, "documents", []vectorstore.Point{
		{ID: "0", Content: "kept", Vector: []float32{1, 0}, Ordinal: 1},
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	s.Close()

	// Reopening reruns migrations, which must be a no-op.
	s2 := newTestStore(t, path)
	info, err := s2.GetCollection(ctx, "documents")
	if err != nil {
		t.Fatalf("GetCollection after reopen: %v", err)
	}
	if info.Count != 1 || info.Dimensions != 2 {
		t.Errorf("info = %+v, want 1 point of 2 dimensions", info)
	}
}

func TestUpsertDimensionMismatch(t *testing.T) {
	s := newTestStore(t, filepath.Join(t.TempDir(), "docsim.db"))
	ctx := context.Background()
	s.CreateCollection(ctx, "docs", 3)

	err := s.Upsert(ctx, "docs", []vectorstore.Point{{ID: "0", Vector: []float32{1, 2}}})
	if !errors.Is(err, vectorstore.ErrDimensionMismatch) {
		t.Errorf("error = %v, want ErrDimensionMismatch", err)
	}

	n, _ := s.Count(ctx, "docs")
	if n != 0 {
		t.Errorf("Count = %d, want 0 after rejected upsert", n)
	}
}

func TestUnsizedCollectionAdoptsFirstVector(t *testing.T) {
	s := newTestStore(t, filepath.Join(t.TempDir(), "docsim.db"))
	ctx := context.Background()
	s.CreateCollection(ctx, "docs", 0)

	if err := s.Upsert(ctx, "docs", []vectorstore.Point{{ID: "0", Vector: []float32{1, 2, 3, 4}}}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	info, _ := s.GetCollection(ctx, "docs")
	if info.Dimensions != 4 {
		t.Errorf("Dimensions = %d, want 4", info.Dimensions)
	}
}

func TestMissingCollection(t *testing.T) {
	s := newTestStore(t, filepath.Join(t.TempDir(), "docsim.db"))
	ctx := context.Background()

	if err := s.DeleteAll(ctx, "nope"); !errors.Is(err, vectorstore.ErrNotFound) {
		t.Errorf("DeleteAll error = %v, want ErrNotFound", err)
	}
	if _, err := s.Search(ctx, "nope", []float32{1}, 1); !errors.Is(err, vectorstore.ErrNotFound) {
		t.Errorf("Search error = %v, want ErrNotFound", err)
	}
}

func TestNewRequiresPath(t *testing.T) {
	if _, err := New(context.Background(), ""); err == nil {
		t.Error("expected error for empty path")
	}
}
