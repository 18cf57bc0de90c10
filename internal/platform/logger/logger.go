package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New returns a structured stdout logger. LOG_LEVEL selects the threshold
// (debug, info, warn, error); info is the default.
func New() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
