package transport

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rhuss/docsim/pkg/api"
)

// Recovery returns middleware that catches panics in the handler and
// converts them to server error responses. The server continues to
// accept new requests after a panic is recovered.
func Recovery() Middleware {
	return func(next Searcher) Searcher {
		return SearcherFunc(func(ctx context.Context, req *api.SimilarityRequest) (resp *api.SimilarityResponse, retErr error) {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("panic in handler", "request_id", RequestIDFromContext(ctx), "panic", fmt.Sprint(r))
					resp = nil
					retErr = api.NewServerError(fmt.Sprintf("internal server error: %v", r))
				}
			}()
			return next.Search(ctx, req)
		})
	}
}
