package config

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns the API logger on stdout. Every record carries
// service=face_verification.
func NewLogger(env string) *slog.Logger {
	return NewLoggerWithWriter(os.Stdout, env)
}

// NewLoggerWithWriter builds the service logger on top of w. The CLI passes
// os.Stderr so that stdout stays reserved for results.
func NewLoggerWithWriter(w io.Writer, env string) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		AddSource: env == "development",
	}

	if env == "production" {
		opts.Level = slog.LevelInfo
		handler = slog.NewJSONHandler(w, opts)
	} else {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(slog.String("service", "face_verification"))
}
