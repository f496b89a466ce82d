package integration

import (
	"context"
	"net/http"
	"reflect"
	"sort"
	"testing"

	"github.com/rhuss/docsim/pkg/api"
	"github.com/rhuss/docsim/pkg/embedding/embeddingtest"
	"github.com/rhuss/docsim/pkg/vectorstore"
	"github.com/rhuss/docsim/pkg/vectorstore/sqlite"
)

var petDocs = []string{
	"The cat sat on the mat.",
	"Dogs are loyal pets.",
	"Quantum computers use qubits.",
}

func findSimilar(t *testing.T, docs []string, query string) []string {
	t.Helper()
	resp := postJSON(t, testEnv.BaseURL()+"/similarity", api.SimilarityRequest{Docs: docs, Query: query})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp))
	}
	var out api.SimilarityResponse
	decodeJSON(t, resp, &out)
	return out.Matches
}

func TestSimilarityPets(t *testing.T) {
	matches := findSimilar(t, petDocs, "Tell me about pets.")

	if len(matches) != 3 {
		t.Fatalf("matches = %v, want 3 entries", matches)
	}
	if matches[0] != "Dogs are loyal pets." {
		t.Errorf("top match = %q, want the dog sentence", matches[0])
	}

	got := append([]string(nil), matches...)
	want := append([]string(nil), petDocs...)
	sort.Strings(got)
	sort.Strings(want)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("matches = %v, want a permutation of the docs", matches)
	}
}

func TestSimilarityFewerDocsThanTopK(t *testing.T) {
	matches := findSimilar(t, []string{"apple", "banana"}, "fruit")
	if len(matches) != 2 {
		t.Errorf("matches = %v, want 2 entries", matches)
	}
}

func TestSimilaritySingleDoc(t *testing.T) {
	matches := findSimilar(t, []string{"only one"}, "anything")
	if len(matches) != 1 || matches[0] != "only one" {
		t.Errorf("matches = %v, want [only one]", matches)
	}
}

func TestSimilarityTruncatesToTopK(t *testing.T) {
	docs := []string{"one", "two", "three", "four", "five"}
	matches := findSimilar(t, docs, "three")
	if len(matches) != 3 {
		t.Fatalf("matches = %v, want 3 entries", matches)
	}
	if matches[0] != "three" {
		t.Errorf("top match = %q, want exact match", matches[0])
	}
}

func TestSimilarityIsIdempotent(t *testing.T) {
	first := findSimilar(t, petDocs, "Tell me about pets.")
	second := findSimilar(t, petDocs, "Tell me about pets.")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated request: %v then %v", first, second)
	}
}

func TestSimilarityExactMatchFirst(t *testing.T) {
	for _, doc := range petDocs {
		matches := findSimilar(t, petDocs, doc)
		if matches[0] != doc {
			t.Errorf("query %q: top match = %q", doc, matches[0])
		}
	}
}

func TestCollectionHoldsLatestRequest(t *testing.T) {
	findSimilar(t, petDocs, "pets")
	findSimilar(t, []string{"apple", "banana"}, "fruit")

	ctx := context.Background()
	coll, err := testEnv.Provider.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	n, err := coll.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("collection holds %d entries, want 2", n)
	}
}

func TestCollectionPersistsOnDisk(t *testing.T) {
	findSimilar(t, petDocs, "pets")

	// A second handle on the same file sees the last request's documents.
	ctx := context.Background()
	store, err := sqlite.New(ctx, testEnv.DBPath)
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	defer store.Close()

	coll, err := vectorstore.Open(ctx, store, embeddingtest.NewKeyword(), collectionName)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	n, err := coll.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != len(petDocs) {
		t.Errorf("persisted collection holds %d entries, want %d", n, len(petDocs))
	}
}
