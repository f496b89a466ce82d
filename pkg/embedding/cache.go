package embedding

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rhuss/docsim/pkg/debug"
	"github.com/rhuss/docsim/pkg/observability"
)

// Cached memoizes embeddings of an underlying Embedder in a bounded LRU,
// keyed by model and text. Only texts missing from the cache are sent to
// the underlying Embedder, in a single batch.
type Cached struct {
	next  Embedder
	cache *lru.Cache[string, []float32]
}

// Compile-time check that Cached implements Embedder.
var _ Embedder = (*Cached)(nil)

// NewCached wraps next with an LRU holding up to size vectors.
func NewCached(next Embedder, size int) (*Cached, error) {
	if size <= 0 {
		return nil, fmt.Errorf("embedding cache size must be > 0, got %d", size)
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("creating embedding cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

// Embed returns cached vectors where available and embeds the rest.
func (c *Cached) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	var missTexts []string
	missIdx := make(map[string][]int)

	for i, text := range texts {
		if v, ok := c.cache.Get(c.key(text)); ok {
			vectors[i] = v
			continue
		}
		if _, seen := missIdx[text]; !seen {
			missTexts = append(missTexts, text)
		}
		missIdx[text] = append(missIdx[text], i)
	}

	observability.EmbeddingCacheTotal.WithLabelValues("hit").Add(float64(len(texts) - countPositions(missIdx)))
	if len(missTexts) == 0 {
		return vectors, nil
	}
	observability.EmbeddingCacheTotal.WithLabelValues("miss").Add(float64(countPositions(missIdx)))

	fresh, err := c.next.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(fresh), len(missTexts))
	}

	for j, text := range missTexts {
		c.cache.Add(c.key(text), fresh[j])
		for _, i := range missIdx[text] {
			vectors[i] = fresh[j]
		}
	}
	debug.Log("embedding", "cache filled", "misses", len(missTexts), "entries", c.Len())
	return vectors, nil
}

// Len returns the number of cached vectors.
func (c *Cached) Len() int { return c.cache.Len() }

func (c *Cached) Dimensions() int { return c.next.Dimensions() }
func (c *Cached) Model() string   { return c.next.Model() }

func (c *Cached) key(text string) string {
	return c.next.Model() + "\x00" + text
}

func countPositions(m map[string][]int) int {
	n := 0
	for _, idx := range m {
		n += len(idx)
	}
	return n
}
