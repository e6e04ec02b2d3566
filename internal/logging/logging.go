// Package logging builds the structured logger used by fatscan.
package logging

import (
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config describes the desired logging configuration.
type Config struct {
	Level          string `yaml:"level"`
	Format         string `yaml:"format"`
	FilePath       string `yaml:"file_path,omitempty"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb,omitempty"`
	FileMaxFiles   int    `yaml:"file_max_files,omitempty"`
	FileMaxAgeDays int    `yaml:"file_max_age_days,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:          "warn",
		Format:         "text",
		FileMaxSizeMB:  10,
		FileMaxFiles:   3,
		FileMaxAgeDays: 30,
	}
}

// New creates a logger writing to console, or to a rotated file when
// cfg.FilePath is set. The returned closer is nil without a file.
func New(cfg Config, console io.Writer) (*slog.Logger, io.Closer) {
	writer, closer := buildWriter(cfg, console)

	return slog.New(buildHandler(writer, parseLevel(cfg.Level), cfg.Format)), closer
}

// parseLevel converts a string to slog.Level, defaulting to Warn.
func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// buildWriter returns console, or a lumberjack logger for a configured file.
// File output replaces console output so that logs never mix with reports.
func buildWriter(cfg Config, console io.Writer) (io.Writer, io.Closer) {
	if cfg.FilePath == "" {
		return console, nil
	}

	defaults := DefaultConfig()

	lj := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    positiveOr(cfg.FileMaxSizeMB, defaults.FileMaxSizeMB),
		MaxBackups: positiveOr(cfg.FileMaxFiles, defaults.FileMaxFiles),
		MaxAge:     positiveOr(cfg.FileMaxAgeDays, defaults.FileMaxAgeDays),
	}

	return lj, lj
}

func positiveOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}

	return v
}

// buildHandler creates a slog.Handler with the given writer, level, and format.
func buildHandler(w io.Writer, level slog.Leveler, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}

	return slog.NewTextHandler(w, opts)
}

// Validate checks level and format names.
func (c Config) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.Level)
	}

	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", c.Format)
	}

	return nil
}
