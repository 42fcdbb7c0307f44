package logging

import (
	"io"
	"log/slog"
	"os"
)

// NewConsoleHandler returns the stdout handler: JSON in production, text
// otherwise.
func NewConsoleHandler(w io.Writer, appEnv string) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if appEnv == "production" {
		return slog.NewJSONHandler(w, opts)
	}
	opts.Level = slog.LevelDebug
	return slog.NewTextHandler(w, opts)
}

// Setup initializes the global slog logger. Extra handlers receive the same
// records, e.g. a DBHandler once the database is up.
func Setup(appEnv string, extra ...slog.Handler) {
	handlers := append([]slog.Handler{NewConsoleHandler(os.Stdout, appEnv)}, extra...)
	if len(handlers) == 1 {
		slog.SetDefault(slog.New(handlers[0]))
		return
	}
	slog.SetDefault(slog.New(NewMultiHandler(handlers...)))
}
