package similarity

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/rhuss/docsim/pkg/api"
	"github.com/rhuss/docsim/pkg/debug"
	"github.com/rhuss/docsim/pkg/transport"
	"github.com/rhuss/docsim/pkg/vectorstore"
)

// Service answers similarity requests against collections handed out by a
// vectorstore.Provider.
type Service struct {
	provider vectorstore.Provider
	cfg      Config
}

// Ensure Service implements transport.Searcher and transport.HealthChecker
// at compile time.
var (
	_ transport.Searcher      = (*Service)(nil)
	_ transport.HealthChecker = (*Service)(nil)
)

// New creates a Service. The provider must not be nil.
func New(p vectorstore.Provider, cfg Config) (*Service, error) {
	if p == nil {
		return nil, fmt.Errorf("similarity: provider must not be nil")
	}
	return &Service{provider: p, cfg: cfg}, nil
}

// Search validates the request, replaces the collection contents with
// req.Docs under ids "0".."n-1", and returns the texts of the closest
// documents, best first. Validation failures are returned as
// *api.APIError; collaborator failures are returned as plain errors.
func (s *Service) Search(ctx context.Context, req *api.SimilarityRequest) (*api.SimilarityResponse, error) {
	if apiErr := api.ValidateSimilarityRequest(req); apiErr != nil {
		return nil, apiErr
	}

	coll, err := s.provider.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring collection: %w", err)
	}
	defer s.release(ctx, coll)

	if err := coll.Clear(ctx); err != nil {
		return nil, err
	}

	if err := coll.Add(ctx, req.Docs, positionalIDs(len(req.Docs))); err != nil {
		return nil, err
	}

	results, err := coll.Query(ctx, req.Query, s.cfg.topK())
	if err != nil {
		return nil, err
	}

	matches := make([]string, len(results))
	for i, r := range results {
		matches[i] = r.Content
		debug.Log("service", "match", "rank", i, "id", r.ID, "score", r.Score, "content", debug.Truncate(r.Content, debugTextLen))
	}

	return &api.SimilarityResponse{Matches: matches}, nil
}

// HealthCheck reports whether the vector store is reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.provider.HealthCheck(ctx)
}

// release returns the collection to the provider. It runs even when the
// request context is already cancelled, and a failure is logged rather
// than surfaced since the response has already been computed.
func (s *Service) release(ctx context.Context, coll *vectorstore.Collection) {
	if err := s.provider.Release(context.WithoutCancel(ctx), coll); err != nil {
		slog.Warn("releasing collection failed", "collection", coll.Name(), "error", err.Error())
	}
}

// debugTextLen caps document text in debug logs.
const debugTextLen = 80

// positionalIDs returns "0".."n-1".
func positionalIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = strconv.Itoa(i)
	}
	return ids
}
