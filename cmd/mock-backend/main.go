// Command mock-backend runs a deterministic OpenAI-compatible embeddings
// server. Vectors come from a bag-of-concepts keyword embedder, so docsim
// can be run and demoed without a model server. Its vectors have 768
// dimensions, matching docsim's default embedding.dimensions.
//
// Configuration:
//
//	MOCK_PORT - Listen port (default: 9090)
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rhuss/docsim/pkg/embedding/embeddingtest"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}

	srv := &http.Server{Addr: ":" + port, Handler: embeddingtest.NewServer(embeddingtest.NewKeyword())}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock embeddings backend starting", "port", port, "dimensions", embeddingtest.KeywordDimensions,
			"hint", fmt.Sprintf("DOCSIM_EMBEDDING_URL=http://localhost:%s DOCSIM_EMBEDDING_DIMENSIONS=%d", port, embeddingtest.KeywordDimensions))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock backend failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}
