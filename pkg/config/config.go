// Package config provides unified configuration for the docsim server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (DOCSIM_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Store backend types.
const (
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreQdrant   = "qdrant"
)

// Config holds all configuration for the docsim server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	CORS          CORSConfig          `yaml:"cors"`
	Embedding     EmbeddingConfig     `yaml:"embedding"`
	Store         StoreConfig         `yaml:"store"`
	Observability ObservabilityConfig `yaml:"observability"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8080
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 30s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 120s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 30s
	MaxBodySize     int64         `yaml:"max_body_size"`    // default: 10 MiB
}

// CORSConfig lists what cross-origin callers may do.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"` // default: ["*"]
	AllowedMethods []string `yaml:"allowed_methods"` // default: ["POST", "OPTIONS"]
	AllowedHeaders []string `yaml:"allowed_headers"` // default: ["*"]
}

// EmbeddingConfig holds settings for the OpenAI-compatible embedding endpoint.
type EmbeddingConfig struct {
	BaseURL    string `yaml:"base_url"`     // required
	Model      string `yaml:"model"`        // default: "BAAI/bge-base-en-v1.5"
	APIKey     string `yaml:"api_key"`      // optional
	APIKeyFile string `yaml:"api_key_file"` // _file variant for api_key
	Dimensions int    `yaml:"dimensions"`   // default: 768
	CacheSize  int    `yaml:"cache_size"`   // default: 4096, 0 disables
}

// StoreConfig holds vector store settings.
type StoreConfig struct {
	Type       string         `yaml:"type"`       // sqlite, memory, postgres or qdrant; default: "sqlite"
	Collection string         `yaml:"collection"` // default: "documents"
	Isolation  string         `yaml:"isolation"`  // "shared" or "isolated", default: "shared"
	TopK       int            `yaml:"top_k"`      // default: 3
	SQLite     SQLiteConfig   `yaml:"sqlite"`
	Postgres   PostgresConfig `yaml:"postgres"`
	Qdrant     QdrantConfig   `yaml:"qdrant"`
}

// SQLiteConfig holds settings for the embedded SQLite store.
type SQLiteConfig struct {
	Path string `yaml:"path"` // default: "./vector_db/docsim.db"
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 10
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: true
}

// QdrantConfig holds Qdrant gRPC connection settings.
type QdrantConfig struct {
	Host string `yaml:"host"` // default: "localhost"
	Port int    `yaml:"port"` // default: 6334
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // default: "info"
	Format string `yaml:"format"` // "json" or "text", default: "json"
	Debug  string `yaml:"debug"`  // comma-separated debug categories
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodySize:     10 << 20,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		},
		Embedding: EmbeddingConfig{
			Model:      "BAAI/bge-base-en-v1.5",
			Dimensions: 768,
			CacheSize:  4096,
		},
		Store: StoreConfig{
			Type:       StoreSQLite,
			Collection: "documents",
			Isolation:  "shared",
			TopK:       3,
			SQLite: SQLiteConfig{
				Path: "./vector_db/docsim.db",
			},
			Postgres: PostgresConfig{
				MaxConns:       10,
				MigrateOnStart: true,
			},
			Qdrant: QdrantConfig{
				Host: "localhost",
				Port: 6334,
			},
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
