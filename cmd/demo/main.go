package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rhuss/docsim/pkg/api"
	"github.com/rhuss/docsim/pkg/embedding/embeddingtest"
	"github.com/rhuss/docsim/pkg/similarity"
	"github.com/rhuss/docsim/pkg/vectorstore"
	"github.com/rhuss/docsim/pkg/vectorstore/memory"
)

func main() {
	fmt.Println("=== docsim similarity demo ===")
	fmt.Println()

	ctx := context.Background()

	// 1. Wire an in-memory collection with the keyword embedder
	provider, err := vectorstore.NewShared(ctx, memory.New(), embeddingtest.NewKeyword(), "documents")
	if err != nil {
		fmt.Printf("Opening collection FAILED: %v\n", err)
		return
	}
	defer provider.Close()

	svc, err := similarity.New(provider, similarity.Config{})
	if err != nil {
		fmt.Printf("Creating service FAILED: %v\n", err)
		return
	}
	fmt.Println("[1] Service ready (memory store, keyword embedder)")

	// 2. Build and serialize a request
	req := &api.SimilarityRequest{
		Docs: []string{
			"The cat sat on the mat.",
			"Dogs are loyal pets.",
			"Quantum computers use qubits.",
		},
		Query: "Tell me about pets.",
	}
	data, _ := json.MarshalIndent(req, "", "  ")
	fmt.Printf("\n[2] Request JSON:\n%s\n", data)

	// 3. Search
	resp, err := svc.Search(ctx, req)
	if err != nil {
		fmt.Printf("Search FAILED: %v\n", err)
		return
	}
	data, _ = json.MarshalIndent(resp, "", "  ")
	fmt.Printf("\n[3] Response JSON:\n%s\n", data)

	// 4. Fewer docs than top-k
	resp, err = svc.Search(ctx, &api.SimilarityRequest{Docs: []string{"apple", "banana"}, Query: "fruit"})
	if err == nil {
		fmt.Printf("\n[4] Two docs, query \"fruit\": %q\n", resp.Matches)
	}

	// 5. The collection holds only the latest request's documents
	if coll, err := provider.Acquire(ctx); err == nil {
		n, _ := coll.Count(ctx)
		fmt.Printf("\n[5] Collection %q now holds %d documents\n", coll.Name(), n)
	}

	// 6. Validation error examples
	fmt.Println("\n[6] Validation error examples:")
	bad := []*api.SimilarityRequest{
		{Docs: nil, Query: "x"},
		{Docs: []string{"a"}, Query: ""},
	}
	for _, r := range bad {
		if _, err := svc.Search(ctx, r); err != nil {
			fmt.Printf("    %v\n", err)
		}
	}

	fmt.Println("\n=== demo complete ===")
}
