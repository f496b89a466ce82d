// Package embeddingtest provides deterministic embedders for tests.
package embeddingtest

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"unicode"

	"github.com/rhuss/docsim/pkg/embedding"
)

// KeywordDimensions is the vector size produced by Keyword. It matches the
// server's default embedding.dimensions so cmd/mock-backend works unconfigured.
const KeywordDimensions = 768

// stopwords carry no topical signal and are dropped before embedding.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "on": true, "is": true, "are": true,
	"me": true, "about": true, "tell": true, "of": true, "to": true,
	"and": true, "use": true, "what": true,
}

// concepts folds related words onto one token so that, for example,
// "dogs" and "pets" land on the same dimension.
var concepts = map[string]string{
	"dog": "pet", "dogs": "pet", "puppy": "pet", "pet": "pet", "pets": "pet",
	"apple": "fruit", "apples": "fruit", "banana": "fruit", "bananas": "fruit", "fruit": "fruit", "fruits": "fruit",
	"qubit": "quantum", "qubits": "quantum", "quantum": "quantum",
}

// Keyword is a bag-of-concepts embedder. Each distinct token is assigned
// its own dimension on first sight, so identical texts always produce
// identical vectors and texts with no shared concept are orthogonal.
type Keyword struct {
	mu    sync.Mutex
	vocab map[string]int
	calls int
}

var _ embedding.Embedder = (*Keyword)(nil)

// NewKeyword creates an empty Keyword embedder.
func NewKeyword() *Keyword {
	return &Keyword{vocab: make(map[string]int)}
}

// Embed returns one count vector per text.
func (k *Keyword) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.calls++

	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, KeywordDimensions)
		for _, tok := range Tokens(text) {
			v[k.index(tok)]++
		}
		out[i] = v
	}
	return out, nil
}

// index returns the dimension for tok. The first KeywordDimensions distinct
// tokens get a dimension of their own; once the vocabulary is full, further
// tokens are hashed onto a dimension without being recorded.
// Callers must hold k.mu.
func (k *Keyword) index(tok string) int {
	if idx, ok := k.vocab[tok]; ok {
		return idx
	}
	if len(k.vocab) < KeywordDimensions {
		idx := len(k.vocab)
		k.vocab[tok] = idx
		return idx
	}
	h := fnv.New32a()
	h.Write([]byte(tok))
	return int(h.Sum32() % KeywordDimensions)
}

// VocabSize returns the number of tokens with a dedicated dimension.
func (k *Keyword) VocabSize() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.vocab)
}

// Calls returns how many times Embed has been invoked.
func (k *Keyword) Calls() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.calls
}

func (k *Keyword) Dimensions() int { return KeywordDimensions }
func (k *Keyword) Model() string   { return "keyword-test" }

// Tokens lowercases text, splits it on non-alphanumerics, drops stopwords,
// and folds known words onto their concept.
func Tokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	toks := fields[:0]
	for _, f := range fields {
		if stopwords[f] {
			continue
		}
		if c, ok := concepts[f]; ok {
			f = c
		}
		toks = append(toks, f)
	}
	return toks
}

// ErrEmbedding is returned by Failing.
var ErrEmbedding = errors.New("embedding model unavailable")

// Failing is an Embedder that always fails.
type Failing struct {
	Err error
}

func (f Failing) Embed(context.Context, []string) ([][]float32, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return nil, ErrEmbedding
}

func (f Failing) Dimensions() int { return KeywordDimensions }
func (f Failing) Model() string   { return "failing-test" }
