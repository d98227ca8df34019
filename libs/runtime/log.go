package runtime

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mike7019/Masajes-sub000/libs/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the JSON logger every service uses. LOG_LEVEL selects the level and
// LOG_FILE, when set, adds a rotated file next to stdout.
func NewLogger(service string) *slog.Logger {
	var w io.Writer = os.Stdout
	if path := strings.TrimSpace(config.String("LOG_FILE", "")); path != "" {
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   path,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     14,
			Compress:   true,
		})
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(config.String("LOG_LEVEL", "info")),
	})
	return slog.New(h).With("service", service)
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
