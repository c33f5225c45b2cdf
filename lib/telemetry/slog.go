package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog sets the default slog logger, logs go to stderr so that they never
// mix with the report printed on stdout.
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
