package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Init installs a JSON slog handler as the process-wide default and
// returns it. level is one of "debug", "info", "warn", "error";
// anything else falls back to info.
func Init(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	}))
	slog.SetDefault(log)
	return log
}
