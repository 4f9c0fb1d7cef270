// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Routes logs to stderr for commands or to a debug file while the TUI owns the terminal.

package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DebugLogName is the log file written inside the config directory by the TUI
const DebugLogName = "debug.log"

// Init configures the default slog logger writing to w.
// level: debug, info, warn, error (default: info)
// format: text, json (default: text)
func Init(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

// InitFile points the default logger at configDir/debug.log so terminal
// output is left to the UI. The returned close func must be called on exit.
// If configDir is empty, logs are discarded.
func InitFile(configDir, level, format string) (func() error, error) {
	if configDir == "" {
		Init(io.Discard, level, format)
		return func() error { return nil }, nil
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		Init(io.Discard, level, format)
		return func() error { return nil }, err
	}

	f, err := os.OpenFile(filepath.Join(configDir, DebugLogName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		Init(io.Discard, level, format)
		return func() error { return nil }, err
	}

	Init(f, level, format)
	return f.Close, nil
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
