// Command server runs the docsim document similarity service.
//
// Configuration is loaded from a YAML file and DOCSIM_* environment
// variables; see package config. Commonly used variables:
//
//	DOCSIM_EMBEDDING_URL - OpenAI-compatible embeddings endpoint (required)
//	DOCSIM_STORE         - Vector store: sqlite, memory, postgres or qdrant (default: sqlite)
//	DOCSIM_ISOLATION     - shared or isolated (default: shared)
//	DOCSIM_PORT          - Listen port (default: 8080)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/rhuss/docsim/pkg/config"
	"github.com/rhuss/docsim/pkg/debug"
	"github.com/rhuss/docsim/pkg/embedding"
	"github.com/rhuss/docsim/pkg/similarity"
	transporthttp "github.com/rhuss/docsim/pkg/transport/http"
	"github.com/rhuss/docsim/pkg/vectorstore"
	"github.com/rhuss/docsim/pkg/vectorstore/memory"
	"github.com/rhuss/docsim/pkg/vectorstore/postgres"
	"github.com/rhuss/docsim/pkg/vectorstore/qdrant"
	"github.com/rhuss/docsim/pkg/vectorstore/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	debug.Init(cfg.Logging.Debug, cfg.Logging.Level, cfg.Logging.Format)
	if cats := debug.Categories(); len(cats) > 0 {
		slog.Info("debug logging enabled", "categories", cats)
	}

	ctx := context.Background()

	emb, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("creating vector store: %w", err)
	}

	provider, err := newProvider(ctx, cfg, vectorstore.Instrument(backend), emb)
	if err != nil {
		backend.Close()
		return fmt.Errorf("opening collection: %w", err)
	}
	defer provider.Close()

	svc, err := similarity.New(provider, similarity.Config{TopK: cfg.Store.TopK})
	if err != nil {
		return fmt.Errorf("creating similarity service: %w", err)
	}

	opts := []transporthttp.ServerOption{
		transporthttp.WithAddr(":" + strconv.Itoa(cfg.Server.Port)),
		transporthttp.WithMaxBodySize(cfg.Server.MaxBodySize),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithLogger(slog.Default()),
		transporthttp.WithCORS(transporthttp.CORSConfig{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowedMethods: cfg.CORS.AllowedMethods,
			AllowedHeaders: cfg.CORS.AllowedHeaders,
		}),
		transporthttp.WithHealthChecker(svc),
	}
	if cfg.Observability.Metrics.Enabled {
		opts = append(opts, transporthttp.WithMetrics(cfg.Observability.Metrics.Path))
	}

	slog.Info("docsim starting",
		"port", cfg.Server.Port,
		"store", cfg.Store.Type,
		"collection", cfg.Store.Collection,
		"isolation", cfg.Store.Isolation,
		"embedding_model", cfg.Embedding.Model,
	)

	return transporthttp.NewServer(svc, opts...).ListenAndServe()
}

// newEmbedder builds the embedding client, wrapped in the LRU cache when
// enabled and in metrics instrumentation.
func newEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	client, err := embedding.NewOpenAIClient(embedding.OpenAIConfig{
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		APIKey:     cfg.Embedding.APIKey,
		Dimensions: cfg.Embedding.Dimensions,
	})
	if err != nil {
		return nil, err
	}

	var emb embedding.Embedder = client
	if cfg.Embedding.CacheSize > 0 {
		cached, err := embedding.NewCached(client, cfg.Embedding.CacheSize)
		if err != nil {
			return nil, err
		}
		emb = cached
		slog.Info("embedding cache enabled", "size", cfg.Embedding.CacheSize)
	}
	return embedding.Instrument(emb), nil
}

// newBackend opens the configured vector store.
func newBackend(ctx context.Context, cfg *config.Config) (vectorstore.Backend, error) {
	switch cfg.Store.Type {
	case config.StoreMemory:
		slog.Info("vector store", "type", "memory")
		return memory.New(), nil
	case config.StoreSQLite:
		slog.Info("vector store", "type", "sqlite", "path", cfg.Store.SQLite.Path)
		return sqlite.New(ctx, cfg.Store.SQLite.Path)
	case config.StorePostgres:
		slog.Info("vector store", "type", "postgres", "max_conns", cfg.Store.Postgres.MaxConns)
		return postgres.New(ctx, postgres.Config{
			DSN:            cfg.Store.Postgres.DSN,
			MaxConns:       cfg.Store.Postgres.MaxConns,
			MigrateOnStart: cfg.Store.Postgres.MigrateOnStart,
		})
	case config.StoreQdrant:
		slog.Info("vector store", "type", "qdrant", "host", cfg.Store.Qdrant.Host, "port", cfg.Store.Qdrant.Port)
		return qdrant.New(qdrant.Config{
			Host: cfg.Store.Qdrant.Host,
			Port: cfg.Store.Qdrant.Port,
		})
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Store.Type)
	}
}

// newProvider selects the collection isolation mode.
func newProvider(ctx context.Context, cfg *config.Config, backend vectorstore.Backend, emb embedding.Embedder) (vectorstore.Provider, error) {
	if cfg.Store.Isolation == vectorstore.IsolationIsolated {
		return vectorstore.NewIsolated(backend, emb, cfg.Store.Collection)
	}
	return vectorstore.NewShared(ctx, backend, emb, cfg.Store.Collection)
}
