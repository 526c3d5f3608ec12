// Package log provides JSON-lines structured logging for rpick.
//
// The picker owns the terminal while it runs, so logs go to a file rather
// than stderr. Each line looks like:
//
//	{"ts":"2026-01-15T10:30:00Z","level":"INFO","msg":"rpick started","version":"0.3.0","source":"widgets"}
//
// Levels:
//   - debug: every request issued and settled (enabled via --debug or RPICK_DEBUG=1)
//   - info: startup, picks, dashboard changes
//   - warn: swallowed fetch failures
//   - error: storage failures
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/runger/rpick/internal/listctl"
)

// Config configures the structured logger.
type Config struct {
	// Output is the writer for log output (default: os.Stderr).
	Output io.Writer

	// Level is the minimum log level (default: LevelInfo).
	Level slog.Level

	// Debug enables debug level logging (overrides Level).
	Debug bool
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: os.Stderr,
		Level:  slog.LevelInfo,
	}
}

// New creates a JSON-lines logger with the timestamp keyed as "ts".
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
	return slog.New(slog.NewJSONHandler(output, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return New(&Config{Output: io.Discard})
}

// ParseLevel maps a config level name to a slog level. Unknown names are an
// error; the empty string is info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// OpenFile opens (creating if needed) the log file at path for appending.
// The caller closes the returned file.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// StartupInfo holds information logged once per run.
type StartupInfo struct {
	Version    string
	Source     string
	Endpoint   string
	Project    string
	ConfigPath string
	PID        int
}

// LogStartup logs run startup information.
func LogStartup(logger *slog.Logger, info StartupInfo) {
	logger.Info("rpick started",
		"version", info.Version,
		"source", info.Source,
		"endpoint", info.Endpoint,
		"project", info.Project,
		"config_path", info.ConfigPath,
		"pid", info.PID,
	)
}

// LogFetchIssued logs a list request handed to a fetcher.
func LogFetchIssued(logger *slog.Logger, source string, req listctl.FetchRequest) {
	logger.Debug("fetch issued",
		"source", source,
		"seq", req.Seq,
		"page", req.Page,
		"size", req.PageSize,
		"term", req.Term,
		"concat", req.Concat,
	)
}

// LogFetchSettled logs a response applied to the list.
func LogFetchSettled(logger *slog.Logger, source string, req listctl.FetchRequest, items, total int) {
	logger.Debug("fetch settled",
		"source", source,
		"seq", req.Seq,
		"page", req.Page,
		"items", items,
		"total", total,
	)
}

// LogFetchDiscarded logs a response that arrived after a newer request was issued.
func LogFetchDiscarded(logger *slog.Logger, source string, req listctl.FetchRequest, latest uint64) {
	logger.Debug("stale fetch discarded",
		"source", source,
		"seq", req.Seq,
		"latest_seq", latest,
	)
}

// LogFetchFailed logs a fetch failure the picker swallowed.
func LogFetchFailed(logger *slog.Logger, source string, req listctl.FetchRequest, err error) {
	logger.Warn("fetch failed",
		"source", source,
		"seq", req.Seq,
		"page", req.Page,
		"term", req.Term,
		"error", err,
	)
}

// LogPick logs the item the user picked.
func LogPick(logger *slog.Logger, source string, item listctl.Item, term string) {
	logger.Info("item picked",
		"source", source,
		"item_id", item.ID,
		"item_name", item.Name,
		"term", term,
	)
}

// LogStorageError logs a failure of the local history store.
func LogStorageError(logger *slog.Logger, operation string, err error) {
	logger.Error("storage error", "operation", operation, "error", err)
}
