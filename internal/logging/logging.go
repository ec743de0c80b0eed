// Package logging builds the application logger.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New returns a logger for env writing to w. A nil w selects stdout.
//
// dev writes text at debug level, staging writes JSON at debug level and prod
// writes JSON at info level. Unknown environments are treated as dev.
func New(env string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}

	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "staging":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
