package logging

import (
	"log/slog"
	"os"

	tlog "go.temporal.io/sdk/log"
)

// New returns the process-wide JSON logger.
func New() *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(h)
}

// Temporal adapts a slog logger for the Temporal client and worker.
func Temporal(l *slog.Logger) tlog.Logger {
	return tlog.NewStructuredLogger(l)
}
