package transport

import (
	"context"

	"github.com/google/uuid"

	"github.com/rhuss/docsim/pkg/api"
)

// RequestID returns middleware that assigns a unique request ID to each
// request. If the incoming request context already carries a request ID
// (set by the HTTP adapter from the X-Request-ID header), that value is
// used. Otherwise, a new UUID is generated.
func RequestID() Middleware {
	return func(next Searcher) Searcher {
		return SearcherFunc(func(ctx context.Context, req *api.SimilarityRequest) (*api.SimilarityResponse, error) {
			if RequestIDFromContext(ctx) == "" {
				ctx = ContextWithRequestID(ctx, NewRequestID())
			}
			return next.Search(ctx, req)
		})
	}
}

// NewRequestID returns a fresh request ID.
func NewRequestID() string {
	return uuid.NewString()
}
