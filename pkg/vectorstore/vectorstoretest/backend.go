// Package vectorstoretest provides a conformance suite shared by the
// vectorstore.Backend implementations.
package vectorstoretest

import (
	"context"
	"errors"
	"testing"

	"github.com/rhuss/docsim/pkg/vectorstore"
)

// Dimensions is the vector size used by the suite.
const Dimensions = 3

// RunBackendTests exercises a Backend. newBackend must return an empty,
// ready backend; it is called once per subtest.
func RunBackendTests(t *testing.T, newBackend func(t *testing.T) vectorstore.Backend) {
	t.Helper()

	t.Run("GetMissingCollection", func(t *testing.T) {
		b := newBackend(t)
		_, err := b.GetCollection(context.Background(), "missing")
		if !errors.Is(err, vectorstore.ErrNotFound) {
			t.Errorf("GetCollection(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("CreateAndGet", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		mustCreate(t, b, "docs")

		info, err := b.GetCollection(ctx, "docs")
		if err != nil {
			t.Fatalf("GetCollection: %v", err)
		}
		if info.Name != "docs" {
			t.Errorf("Name = %q, want %q", info.Name, "docs")
		}
		if info.Dimensions != Dimensions {
			t.Errorf("Dimensions = %d, want %d", info.Dimensions, Dimensions)
		}
		if info.Count != 0 {
			t.Errorf("Count = %d, want 0", info.Count)
		}
	})

	t.Run("UpsertAndCount", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		mustCreate(t, b, "docs")
		mustUpsert(t, b, "docs", samplePoints())

		n, err := b.Count(ctx, "docs")
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		if n != 3 {
			t.Errorf("Count = %d, want 3", n)
		}
	})

	t.Run("UpsertReplacesByID", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		mustCreate(t, b, "docs")
		mustUpsert(t, b, "docs", samplePoints())
		mustUpsert(t, b, "docs", []vectorstore.Point{
			{ID: "2", Content: "replaced", Vector: []float32{1, 0, 0}, Ordinal: 4},
		})

		n, _ := b.Count(ctx, "docs")
		if n != 3 {
			t.Errorf("Count after replace = %d, want 3", n)
		}

		matches, err := b.Search(ctx, "docs", []float32{0, 0, 1}, 3)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		for _, m := range matches {
			if m.ID == "2" && m.Content != "replaced" {
				t.Errorf("content of id 2 = %q, want %q", m.Content, "replaced")
			}
		}
	})

	t.Run("SearchRanksByCosineThenOrdinal", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		mustCreate(t, b, "docs")
		mustUpsert(t, b, "docs", samplePoints())

		matches, err := b.Search(ctx, "docs", []float32{1, 0, 0}, 3)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		got := ids(matches)
		want := []string{"0", "1", "2"}
		if !equal(got, want) {
			t.Errorf("Search order = %v, want %v", got, want)
		}
		if matches[0].Content != "alpha" {
			t.Errorf("top content = %q, want %q", matches[0].Content, "alpha")
		}
		if matches[0].Score < matches[2].Score {
			t.Errorf("scores not descending: %v", matches)
		}
	})

	t.Run("SearchTruncatesToK", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		mustCreate(t, b, "docs")
		mustUpsert(t, b, "docs", samplePoints())

		matches, err := b.Search(ctx, "docs", []float32{0, 1, 0}, 1)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(matches) != 1 || matches[0].ID != "2" {
			t.Errorf("Search k=1 = %v, want [2]", ids(matches))
		}
	})

	t.Run("SearchEmptyCollection", func(t *testing.T) {
		b := newBackend(t)
		mustCreate(t, b, "docs")

		matches, err := b.Search(context.Background(), "docs", []float32{1, 0, 0}, 3)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(matches) != 0 {
			t.Errorf("Search on empty collection = %v, want none", ids(matches))
		}
	})

	t.Run("DeleteAllKeepsCollection", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		mustCreate(t, b, "docs")
		mustUpsert(t, b, "docs", samplePoints())

		for i := 0; i < 2; i++ {
			if err := b.DeleteAll(ctx, "docs"); err != nil {
				t.Fatalf("DeleteAll #%d: %v", i+1, err)
			}
		}

		n, err := b.Count(ctx, "docs")
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		if n != 0 {
			t.Errorf("Count after DeleteAll = %d, want 0", n)
		}
		if _, err := b.GetCollection(ctx, "docs"); err != nil {
			t.Errorf("GetCollection after DeleteAll: %v", err)
		}
	})

	t.Run("DeleteCollection", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		mustCreate(t, b, "docs")
		mustUpsert(t, b, "docs", samplePoints())

		if err := b.DeleteCollection(ctx, "docs"); err != nil {
			t.Fatalf("DeleteCollection: %v", err)
		}
		if _, err := b.GetCollection(ctx, "docs"); !errors.Is(err, vectorstore.ErrNotFound) {
			t.Errorf("GetCollection after delete error = %v, want ErrNotFound", err)
		}
		if err := b.DeleteCollection(ctx, "docs"); err != nil {
			t.Errorf("deleting missing collection: %v", err)
		}
	})

	t.Run("CollectionsAreIndependent", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		mustCreate(t, b, "a")
		mustCreate(t, b, "b")
		mustUpsert(t, b, "a", samplePoints())

		n, err := b.Count(ctx, "b")
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		if n != 0 {
			t.Errorf("Count(b) = %d, want 0", n)
		}

		matches, err := b.Search(ctx, "b", []float32{1, 0, 0}, 3)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(matches) != 0 {
			t.Errorf("Search(b) leaked points from a: %v", ids(matches))
		}
	})

	t.Run("HealthCheck", func(t *testing.T) {
		b := newBackend(t)
		if err := b.HealthCheck(context.Background()); err != nil {
			t.Errorf("HealthCheck: %v", err)
		}
	})
}

// samplePoints returns three points: "0" and "1" share a direction so they
// tie on score and must come back in ordinal order.
func samplePoints() []vectorstore.Point {
	return []vectorstore.Point{
		{ID: "0", Content: "alpha", Vector: []float32{1, 0, 0}, Ordinal: 1},
		{ID: "1", Content: "alpha again", Vector: []float32{1, 0, 0}, Ordinal: 2},
		{ID: "2", Content: "beta", Vector: []float32{0, 1, 0}, Ordinal: 3},
	}
}

func mustCreate(t *testing.T, b vectorstore.Backend, name string) {
	t.Helper()
	if err := b.CreateCollection(context.Background(), name, Dimensions); err != nil {
		t.Fatalf("CreateCollection(%q): %v", name, err)
	}
}

func mustUpsert(t *testing.T, b vectorstore.Backend, name string, points []vectorstore.Point) {
	t.Helper()
	if err := b.Upsert(context.Background(), name, points); err != nil {
		t.Fatalf("Upsert(%q): %v", name, err)
	}
}

func ids(matches []vectorstore.SearchMatch) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
