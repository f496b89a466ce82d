package embedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rhuss/docsim/pkg/debug"
)

// OpenAIConfig holds settings for an OpenAI-compatible embeddings endpoint.
type OpenAIConfig struct {
	// BaseURL is the server root, e.g. "http://tei:8080". A trailing "/v1"
	// or "/v1/embeddings" is accepted.
	BaseURL string
	Model   string
	APIKey  string

	// Dimensions seeds Dimensions() before the first call. Zero means the
	// value is learned from the first response.
	Dimensions int

	HTTPClient *http.Client
}

// OpenAIClient embeds text through an OpenAI-compatible /v1/embeddings API.
type OpenAIClient struct {
	client *openai.Client
	model  string

	mu   sync.RWMutex
	dims int
}

// Compile-time check that OpenAIClient implements Embedder.
var _ Embedder = (*OpenAIClient)(nil)

// NewOpenAIClient creates a client for the configured endpoint.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("embedding: base URL is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("embedding: model is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = normalizeBaseURL(cfg.BaseURL)
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		dims:   cfg.Dimensions,
	}, nil
}

// normalizeBaseURL returns the URL prefix that go-openai appends
// "/embeddings" to.
func normalizeBaseURL(raw string) string {
	u := strings.TrimRight(raw, "/")
	u = strings.TrimSuffix(u, "/embeddings")
	if !strings.HasSuffix(u, "/v1") {
		u += "/v1"
	}
	return u
}

// Embed sends texts to the embeddings endpoint and returns the vectors in
// input order.
func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	debug.Log("embedding", "embedding request", "model", c.model, "texts", len(texts))

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no data")
	}

	// Order results by index.
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("embedding response index %d out of range [0, %d)", d.Index, len(texts))
		}
		vectors[d.Index] = d.Embedding
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("embedding response missing vector for input %d", i)
		}
	}

	c.mu.Lock()
	if c.dims == 0 {
		c.dims = len(vectors[0])
	}
	c.mu.Unlock()

	return vectors, nil
}

// Dimensions returns the dimensionality of the embedding vectors.
func (c *OpenAIClient) Dimensions() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dims
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string { return c.model }
