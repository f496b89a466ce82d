package transport

import (
	"context"

	"github.com/rhuss/docsim/pkg/api"
)

// Searcher handles the similarity operation. Implementations return an
// *api.APIError for client mistakes and any other error for failures of
// their collaborators.
type Searcher interface {
	Search(ctx context.Context, req *api.SimilarityRequest) (*api.SimilarityResponse, error)
}

// SearcherFunc is an adapter that allows using an ordinary function as a
// Searcher.
type SearcherFunc func(ctx context.Context, req *api.SimilarityRequest) (*api.SimilarityResponse, error)

// Search calls f(ctx, req).
func (f SearcherFunc) Search(ctx context.Context, req *api.SimilarityRequest) (*api.SimilarityResponse, error) {
	return f(ctx, req)
}

// HealthChecker verifies that a component and its dependencies are
// reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
