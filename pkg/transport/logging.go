package transport

import (
	"context"
	"log/slog"
	"time"

	"github.com/rhuss/docsim/pkg/api"
)

// Logging returns middleware that emits one structured log entry per
// request with the request ID, document count, match count, and duration.
// Client errors are logged at warn level and collaborator failures at
// error level.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Searcher) Searcher {
		return SearcherFunc(func(ctx context.Context, req *api.SimilarityRequest) (*api.SimilarityResponse, error) {
			start := time.Now()

			resp, err := next.Search(ctx, req)

			attrs := []slog.Attr{
				slog.String("request_id", RequestIDFromContext(ctx)),
				slog.Int("docs", len(req.Docs)),
				slog.Duration("duration", time.Since(start)),
			}

			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				level := slog.LevelError
				if apiErr, ok := err.(*api.APIError); ok && apiErr.Type == api.ErrorTypeInvalidRequest {
					level = slog.LevelWarn
				}
				logger.LogAttrs(ctx, level, "request failed", attrs...)
				return resp, err
			}

			attrs = append(attrs, slog.Int("matches", len(resp.Matches)))
			logger.LogAttrs(ctx, slog.LevelInfo, "request completed", attrs...)
			return resp, nil
		})
	}
}
