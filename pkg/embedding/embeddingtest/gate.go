package embeddingtest

import (
	"context"
	"sync"

	"github.com/rhuss/docsim/pkg/embedding"
)

// Gate wraps an Embedder and blocks any call whose batch contains Match
// until Open is called. It signals Entered the first time such a call
// arrives, which lets a test interleave two requests deterministically.
type Gate struct {
	Next  embedding.Embedder
	Match string

	entered chan struct{}
	release chan struct{}
	once    sync.Once
	open    sync.Once
}

var _ embedding.Embedder = (*Gate)(nil)

// NewGate creates a closed gate in front of next.
func NewGate(next embedding.Embedder, match string) *Gate {
	return &Gate{
		Next:    next,
		Match:   match,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

// Entered is closed once a call containing Match is blocked at the gate.
func (g *Gate) Entered() <-chan struct{} { return g.entered }

// Open releases all blocked and future calls.
func (g *Gate) Open() { g.open.Do(func() { close(g.release) }) }

func (g *Gate) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	for _, t := range texts {
		if t != g.Match {
			continue
		}
		g.once.Do(func() { close(g.entered) })
		select {
		case <-g.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		break
	}
	return g.Next.Embed(ctx, texts)
}

func (g *Gate) Dimensions() int { return g.Next.Dimensions() }
func (g *Gate) Model() string   { return g.Next.Model() }
