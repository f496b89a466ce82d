// Package debug provides category-based debug logging for docsim.
//
// Two orthogonal controls:
//   - Categories (WHAT to debug): controlled via DOCSIM_DEBUG env or config
//   - Levels (HOW MUCH detail): controlled via DOCSIM_LOG_LEVEL env or config
//
// Usage:
//
//	debug.Log("store", "search", "collection", name, "k", k)
//	if debug.Enabled("embedding") { /* expensive formatting */ }
//
// Categories: service, embedding, store, all.
// Levels: ERROR, WARN, INFO, DEBUG.
package debug

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// categories holds the set of enabled debug categories.
// Access is read-only after Init(), so no synchronization needed.
var categories map[string]bool

func init() {
	categories = parseCategories(os.Getenv("DOCSIM_DEBUG"))
}

// Init configures the debug system and installs the default slog logger.
// Called at startup with values from config. Environment overrides config.
// Format is "json" or "text" (default).
func Init(configCategories, configLevel, format string) {
	initWithWriter(os.Stderr, configCategories, configLevel, format)
}

func initWithWriter(w io.Writer, configCategories, configLevel, format string) {
	cats := os.Getenv("DOCSIM_DEBUG")
	if cats == "" {
		cats = configCategories
	}
	categories = parseCategories(cats)

	level := os.Getenv("DOCSIM_LOG_LEVEL")
	if level == "" {
		level = configLevel
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// Enabled reports whether debug output is active for the given category.
func Enabled(category string) bool {
	return categories["all"] || categories[category]
}

// Log emits a debug message for the given category.
// If the category is not enabled, this is a no-op.
func Log(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Debug(msg, append([]any{"debug", category}, args...)...)
}

// ParseLevel converts a level string to a slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO", "":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Categories returns the list of enabled categories.
func Categories() []string {
	var result []string
	for k := range categories {
		result = append(result, k)
	}
	return result
}

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func parseCategories(s string) map[string]bool {
	m := make(map[string]bool)
	if s == "" {
		return m
	}
	for _, cat := range strings.Split(s, ",") {
		cat = strings.TrimSpace(strings.ToLower(cat))
		if cat != "" {
			m[cat] = true
		}
	}
	return m
}
