package logger

import (
	"io"
	"log/slog"
	"strings"
)

// New picks the handler for the runtime environment: JSON lines in
// production, the colour handler everywhere else.
func New(w io.Writer, env string, level string) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	if strings.EqualFold(env, "production") {
		return slog.NewJSONHandler(w, opts)
	}

	return NewPrettyHandler(w, opts)
}

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
