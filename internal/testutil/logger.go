package testutil

import "log/slog"

// DiscardLogger returns a slog.Logger that discards all output.
//
// Use this in tests to reduce noise. log.Logger is a type alias for
// *slog.Logger, so this and log.NewNop() are interchangeable; prefer
// log.NewNop() in packages that already import internal/log.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
