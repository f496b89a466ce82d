package embedding

import (
	"context"
	"time"

	"github.com/rhuss/docsim/pkg/observability"
)

// Embedder converts text into embedding vectors.
type Embedder interface {
	// Embed converts a batch of texts into vectors. The result is parallel
	// to texts. Identical input yields identical output for a fixed model.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the dimensionality of the produced vectors, or 0
	// if it is not yet known.
	Dimensions() int

	// Model returns the model identifier.
	Model() string
}

// Instrument wraps an Embedder so every call is recorded in the
// docsim_embedding_* metrics.
func Instrument(e Embedder) Embedder {
	return &instrumented{next: e}
}

type instrumented struct {
	next Embedder
}

func (i *instrumented) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	vectors, err := i.next.Embed(ctx, texts)
	model := i.next.Model()
	observability.EmbeddingRequestsTotal.WithLabelValues(model, observability.StatusLabel(err)).Inc()
	observability.EmbeddingLatency.WithLabelValues(model).Observe(time.Since(start).Seconds())
	return vectors, err
}

func (i *instrumented) Dimensions() int { return i.next.Dimensions() }
func (i *instrumented) Model() string   { return i.next.Model() }
