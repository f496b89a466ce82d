package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rhuss/docsim/pkg/vectorstore"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}
	if c.Server.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_size must be > 0, got %d", c.Server.MaxBodySize))
	}

	if c.Embedding.BaseURL == "" {
		errs = append(errs, fmt.Errorf("embedding.base_url is required"))
	}
	if c.Embedding.Model == "" {
		errs = append(errs, fmt.Errorf("embedding.model is required"))
	}
	if c.Embedding.Dimensions < 0 {
		errs = append(errs, fmt.Errorf("embedding.dimensions must be >= 0, got %d", c.Embedding.Dimensions))
	}
	if c.Embedding.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("embedding.cache_size must be >= 0, got %d", c.Embedding.CacheSize))
	}

	if strings.TrimSpace(c.Store.Collection) == "" {
		errs = append(errs, fmt.Errorf("store.collection is required"))
	}
	if c.Store.TopK <= 0 {
		errs = append(errs, fmt.Errorf("store.top_k must be > 0, got %d", c.Store.TopK))
	}

	switch c.Store.Isolation {
	case vectorstore.IsolationShared, vectorstore.IsolationIsolated:
		// valid
	default:
		errs = append(errs, fmt.Errorf("store.isolation must be %q or %q, got %q",
			vectorstore.IsolationShared, vectorstore.IsolationIsolated, c.Store.Isolation))
	}

	switch c.Store.Type {
	case StoreMemory:
		// valid
	case StoreSQLite:
		if c.Store.SQLite.Path == "" {
			errs = append(errs, fmt.Errorf("store.sqlite.path is required when store.type is %q", StoreSQLite))
		}
	case StorePostgres:
		if c.Store.Postgres.DSN == "" && c.Store.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("store.postgres.dsn or store.postgres.dsn_file is required when store.type is %q", StorePostgres))
		}
	case StoreQdrant:
		if c.Store.Qdrant.Host == "" {
			errs = append(errs, fmt.Errorf("store.qdrant.host is required when store.type is %q", StoreQdrant))
		}
		if c.Store.Qdrant.Port <= 0 {
			errs = append(errs, fmt.Errorf("store.qdrant.port must be > 0, got %d", c.Store.Qdrant.Port))
		}
		// Qdrant fixes the vector size at collection creation.
		if c.Embedding.Dimensions <= 0 {
			errs = append(errs, fmt.Errorf("embedding.dimensions must be set when store.type is %q", StoreQdrant))
		}
	default:
		errs = append(errs, fmt.Errorf("store.type must be one of sqlite, memory, postgres, qdrant; got %q", c.Store.Type))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
		// valid
	default:
		errs = append(errs, fmt.Errorf("logging.format must be \"json\" or \"text\", got %q", c.Logging.Format))
	}

	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("observability.metrics.path must start with \"/\", got %q", c.Observability.Metrics.Path))
	}

	return errors.Join(errs...)
}
