// Package log provides the logging infrastructure shared by every carebot
// component.
//
// Loggers are injected, never global: each component receives one through its
// constructor and narrows it with logger.With("component", ...). The package
// exposes factories for the common cases plus a Nop logger for tests.
//
// Usage:
//
//	logger := log.New(log.Config{Level: slog.LevelDebug})
//
//	client, err := bedrock.NewClient(bedrock.ClientConfig{
//	    Logger: logger.With("component", "bedrock"),
//	    ...
//	})
//
//	// In tests, discard output or capture it:
//	testLogger := log.NewNop()
//	// or
//	var buf bytes.Buffer
//	testLogger := log.NewWithWriter(&buf, log.Config{})
package log

import (
	"io"
	"log/slog"
	"os"
)

// Logger is a type alias for *slog.Logger. The standard type is used directly
// so components keep full access to With(), WithGroup() and the rest of the
// slog surface without an adapter interface in between.
type Logger = *slog.Logger

// Config defines logger configuration options.
type Config struct {
	// Level sets the minimum log level. Default: slog.LevelInfo
	Level slog.Level

	// JSON enables JSON format output. Default: false (text format)
	JSON bool

	// AddSource adds source file information to log entries. Default: false
	AddSource bool
}

// New creates a logger writing to os.Stderr with the given configuration.
func New(cfg Config) Logger {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter creates a logger that writes to the specified writer.
// Useful for tests or custom output destinations.
func NewWithWriter(w io.Writer, cfg Config) Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// NewNop creates a logger that discards all output. Test-only: production
// code should always run with a real handler so failures stay diagnosable.
func NewNop() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
