// Package logging builds the structured logger used across Hangar.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zulandar/hangar/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel maps a config level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logging: invalid level %q", level)
	}
}

// New returns a logger writing to a rotated file under cfg.Dir, or to stderr
// when no directory is configured. The returned closer releases the file.
func New(cfg config.LogConfig) (*slog.Logger, io.Closer, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Dir == "" {
		h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
		return slog.New(h), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("logging: create %s: %w", cfg.Dir, err)
	}
	w := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, "hangar.log"),
		MaxSize:    64, // MB
		MaxBackups: 5,
		MaxAge:     14,
		Compress:   true,
	}
	if lvl == slog.LevelDebug {
		w.MaxSize = 256
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(h), w, nil
}

// Discard returns a logger that drops everything, for tests and defaults.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
