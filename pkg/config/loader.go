package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, DOCSIM_CONFIG env, ./config.yaml, /etc/docsim/config.yaml)
//  3. DOCSIM_* environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. DOCSIM_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/docsim/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("DOCSIM_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/docsim/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// envOverride binds one environment variable to a config field.
type envOverride struct {
	name  string
	apply func(cfg *Config, v string) error
}

var envOverrides = []envOverride{
	{"DOCSIM_PORT", func(c *Config, v string) error { return setInt(&c.Server.Port, v) }},
	{"DOCSIM_READ_TIMEOUT", func(c *Config, v string) error { return setDuration(&c.Server.ReadTimeout, v) }},
	{"DOCSIM_WRITE_TIMEOUT", func(c *Config, v string) error { return setDuration(&c.Server.WriteTimeout, v) }},
	{"DOCSIM_CORS_ALLOWED_ORIGINS", func(c *Config, v string) error { c.CORS.AllowedOrigins = splitList(v); return nil }},
	{"DOCSIM_EMBEDDING_URL", func(c *Config, v string) error { c.Embedding.BaseURL = v; return nil }},
	{"DOCSIM_EMBEDDING_MODEL", func(c *Config, v string) error { c.Embedding.Model = v; return nil }},
	{"DOCSIM_EMBEDDING_API_KEY", func(c *Config, v string) error { c.Embedding.APIKey = v; return nil }},
	{"DOCSIM_EMBEDDING_DIMENSIONS", func(c *Config, v string) error { return setInt(&c.Embedding.Dimensions, v) }},
	{"DOCSIM_EMBEDDING_CACHE_SIZE", func(c *Config, v string) error { return setInt(&c.Embedding.CacheSize, v) }},
	{"DOCSIM_STORE", func(c *Config, v string) error { c.Store.Type = v; return nil }},
	{"DOCSIM_COLLECTION", func(c *Config, v string) error { c.Store.Collection = v; return nil }},
	{"DOCSIM_ISOLATION", func(c *Config, v string) error { c.Store.Isolation = v; return nil }},
	{"DOCSIM_TOP_K", func(c *Config, v string) error { return setInt(&c.Store.TopK, v) }},
	{"DOCSIM_SQLITE_PATH", func(c *Config, v string) error { c.Store.SQLite.Path = v; return nil }},
	{"DOCSIM_POSTGRES_DSN", func(c *Config, v string) error { c.Store.Postgres.DSN = v; return nil }},
	{"DOCSIM_QDRANT_HOST", func(c *Config, v string) error { c.Store.Qdrant.Host = v; return nil }},
	{"DOCSIM_QDRANT_PORT", func(c *Config, v string) error { return setInt(&c.Store.Qdrant.Port, v) }},
	{"DOCSIM_METRICS_ENABLED", func(c *Config, v string) error { return setBool(&c.Observability.Metrics.Enabled, v) }},
	{"DOCSIM_LOG_FORMAT", func(c *Config, v string) error { c.Logging.Format = v; return nil }},
}

// applyEnvOverrides maps DOCSIM_* environment variables to config fields.
// Unset or empty variables leave the field untouched; malformed values are
// reported with the variable name.
func applyEnvOverrides(cfg *Config) error {
	for _, o := range envOverrides {
		v := os.Getenv(o.name)
		if v == "" {
			continue
		}
		if err := o.apply(cfg, v); err != nil {
			return fmt.Errorf("%s: %w", o.name, err)
		}
	}
	return nil
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

// splitList parses a comma-separated list, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// For each field ending in _file, if the value field is empty and the file field is set,
// the file is read, whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// embedding.api_key_file -> embedding.api_key
	if cfg.Embedding.APIKeyFile != "" && cfg.Embedding.APIKey == "" {
		val, err := readSecretFile(cfg.Embedding.APIKeyFile)
		if err != nil {
			return fmt.Errorf("embedding.api_key_file: %w", err)
		}
		cfg.Embedding.APIKey = val
	}

	// store.postgres.dsn_file -> store.postgres.dsn
	if cfg.Store.Postgres.DSNFile != "" && cfg.Store.Postgres.DSN == "" {
		val, err := readSecretFile(cfg.Store.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("store.postgres.dsn_file: %w", err)
		}
		cfg.Store.Postgres.DSN = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
