package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds a JSON logger writing to w at the named level.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// Init installs a stdout JSON logger as the process default and returns it.
func Init(level string) *slog.Logger {
	logger := New(os.Stdout, level)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps debug/info/warn/error to slog levels; anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
