// Package logx initialises the process-wide structured logger.
package logx

import (
	"log/slog"
	"os"
)

// Init sets the default slog logger to a JSON handler tagged with the
// service name. Call once at the top of main.
func Init(service string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	logger := slog.New(handler).With(slog.String("service", service))
	slog.SetDefault(logger)
	return logger
}
