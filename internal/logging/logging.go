// Package logging builds the structured slog loggers used by cinematch and
// holds the helpers for its recurring log lines.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config configures a logger.
type Config struct {
	// Output is the writer for log output (default: os.Stderr)
	Output io.Writer

	// Level is the minimum log level (default: LevelWarn)
	Level slog.Level

	// Format is "text" or "json" (default: text)
	Format string

	// Debug enables debug level logging (overrides Level)
	Debug bool
}

// DefaultConfig returns the default logging configuration. Console runs stay
// quiet unless something goes wrong.
func DefaultConfig() *Config {
	return &Config{
		Output: os.Stderr,
		Level:  slog.LevelWarn,
		Format: "text",
	}
}

// New creates a structured logger. The time key is written as "ts":
//
//	ts=2026-01-15T10:30:00Z level=INFO msg="catalog loaded" path=imdb.csv records=2311
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	level := cfg.Level
	if cfg.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				a.Key = "ts"
			}
			return a
		},
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts debug, info, warn or error to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// CatalogInfo summarizes a catalog load.
type CatalogInfo struct {
	Path       string
	Format     string
	Rows       int
	Records    int
	Features   int
	Malformed  int
	Missing    int
	Duplicates int
}

// LogCatalogLoaded logs a completed catalog load. Skipped rows raise the
// line to warn level.
func LogCatalogLoaded(logger *slog.Logger, info CatalogInfo) {
	level := slog.LevelInfo
	if info.Malformed+info.Missing+info.Duplicates > 0 {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, "catalog loaded",
		"path", info.Path,
		"format", info.Format,
		"rows", info.Rows,
		"records", info.Records,
		"features", info.Features,
		"malformed", info.Malformed,
		"missing", info.Missing,
		"duplicates", info.Duplicates,
	)
}

// LogRowSkipped logs one source row that was not loaded.
func LogRowSkipped(logger *slog.Logger, line int, reason string) {
	logger.Debug("row skipped", "line", line, "reason", reason)
}

// LogNormalized logs catalog normalization.
func LogNormalized(logger *slog.Logger, continuous int, scaled map[string]float64) {
	logger.Debug("catalog normalized", "continuous_fields", continuous, "custom_scales", len(scaled))
}

// LogConfigLoaded logs which configuration file was used.
func LogConfigLoaded(logger *slog.Logger, path string) {
	logger.Debug("configuration loaded", "config_path", path)
}
