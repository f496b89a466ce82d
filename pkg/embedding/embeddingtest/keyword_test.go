package embeddingtest

import (
	"context"
	"fmt"
	"reflect"
	"testing"
)

func TestTokens(t *testing.T) {
	got := Tokens("Dogs are loyal pets.")
	want := []string{"pet", "loyal", "pet"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens = %v, want %v", got, want)
	}
}

func TestKeywordDeterministic(t *testing.T) {
	k := NewKeyword()
	ctx := context.Background()

	a, err := k.Embed(ctx, []string{"The cat sat on the mat."})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	b, err := k.Embed(ctx, []string{"The cat sat on the mat."})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical text produced different vectors")
	}
	if k.Calls() != 2 {
		t.Errorf("Calls() = %d, want 2", k.Calls())
	}
}

func TestKeywordHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewKeyword().Embed(ctx, []string{"x"}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestGateBlocksUntilOpen(t *testing.T) {
	g := NewGate(NewKeyword(), "slow")
	done := make(chan struct{})

	go func() {
		g.Embed(context.Background(), []string{"slow"})
		close(done)
	}()

	<-g.Entered()
	select {
	case <-done:
		t.Fatal("gated call returned before Open")
	default:
	}

	// Non-matching calls pass through.
	if _, err := g.Embed(context.Background(), []string{"fast"}); err != nil {
		t.Fatalf("pass-through Embed: %v", err)
	}

	g.Open()
	<-done
}

func TestKeywordVocabularyIsBounded(t *testing.T) {
	k := NewKeyword()
	ctx := context.Background()

	texts := make([]string, 0, 2*KeywordDimensions)
	for i := range 2 * KeywordDimensions {
		texts = append(texts, fmt.Sprintf("token%d", i))
	}
	first, err := k.Embed(ctx, texts)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if got := k.VocabSize(); got != KeywordDimensions {
		t.Errorf("VocabSize() = %d, want %d", got, KeywordDimensions)
	}

	// Tokens past the cap still embed deterministically.
	second, err := k.Embed(ctx, texts[KeywordDimensions:])
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if !reflect.DeepEqual(first[KeywordDimensions:], second) {
		t.Error("tokens past the vocabulary cap produced different vectors")
	}
	if k.VocabSize() != KeywordDimensions {
		t.Errorf("VocabSize() grew to %d", k.VocabSize())
	}
	for i, v := range first {
		if len(v) != KeywordDimensions {
			t.Fatalf("vector %d has %d dimensions, want %d", i, len(v), KeywordDimensions)
		}
	}
}
