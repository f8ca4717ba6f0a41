package main

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// newRunLogger writes text logs tagged with a fresh run identifier.
func newRunLogger(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("run_id", uuid.NewString()))
}

func parseLevel(text string, fallback slog.Level) (slog.Level, error) {
	if text == "" {
		return fallback, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(text)); err != nil {
		return fallback, err
	}
	return level, nil
}
