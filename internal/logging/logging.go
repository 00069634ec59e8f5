// Package logging configures the process-wide slog logger, optionally writing
// to a rotating log file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/openkraft/schemactl/internal/domain"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logging configuration.
type Config struct {
	Level      string // debug, info, warn, error
	FilePath   string // empty = stderr only
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultConfig returns the defaults used when the project config leaves a
// value unset.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		MaxSizeMB:  100,
		MaxBackups: 3,
		MaxAgeDays: 28,
		Compress:   true,
	}
}

// FromProject builds a Config from the logging section of the project config.
// Relative file paths are resolved against projectPath.
func FromProject(projectPath string, lc domain.LoggingConfig) Config {
	cfg := DefaultConfig()
	if lc.Level != "" {
		cfg.Level = lc.Level
	}
	if lc.File != "" {
		cfg.FilePath = lc.File
		if !filepath.IsAbs(cfg.FilePath) {
			cfg.FilePath = filepath.Join(projectPath, cfg.FilePath)
		}
	}
	if lc.MaxSizeMB > 0 {
		cfg.MaxSizeMB = lc.MaxSizeMB
	}
	if lc.MaxBackups > 0 {
		cfg.MaxBackups = lc.MaxBackups
	}
	if lc.MaxAgeDays > 0 {
		cfg.MaxAgeDays = lc.MaxAgeDays
	}
	if lc.Compress != nil {
		cfg.Compress = *lc.Compress
	}
	return cfg
}

// Setup installs the default slog logger. The returned cleanup closes the
// log file, if any.
func Setup(cfg Config) (func() error, error) {
	return SetupWriter(cfg, os.Stderr)
}

// SetupWriter is Setup with an explicit fallback writer used when no log file
// is configured.
func SetupWriter(cfg Config, fallback io.Writer) (func() error, error) {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var writer io.Writer
	cleanup := func() error { return nil }

	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
			return nil, err
		}
		lj := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}
		writer = lj
		cleanup = lj.Close
	} else {
		writer = fallback
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(writer, opts)))
	return cleanup, nil
}

// ParseLevel maps a level name to a slog level; unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
