// Package logging wraps zerolog for application logging.
package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// contextKey is the type for context keys.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"
	// ViewerIDKey is the context key for the authenticated viewer id.
	ViewerIDKey contextKey = "viewer_id"
)

// Config holds logging configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	Output io.Writer
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "text" {
		// Pretty console output for development.
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	log.Logger = zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// WithContext returns a logger annotated with request-scoped values.
func WithContext(ctx context.Context) *zerolog.Logger {
	logger := log.With()

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		logger = logger.Str("request_id", requestID)
	}
	if viewerID, ok := ctx.Value(ViewerIDKey).(int64); ok {
		logger = logger.Int64("viewer_id", viewerID)
	}

	contextLogger := logger.Logger()
	return &contextLogger
}

// Debug logs a debug message using the global logger.
func Debug(msg string) {
	log.Debug().Msg(msg)
}

// Info logs an info message using the global logger.
func Info(msg string) {
	log.Info().Msg(msg)
}

// Warn logs a warning message using the global logger.
func Warn(msg string) {
	log.Warn().Msg(msg)
}

// Error logs an error message using the global logger.
func Error(err error, msg string) {
	log.Error().Err(err).Msg(msg)
}

// Fatal logs a fatal message and exits using the global logger.
func Fatal(err error, msg string) {
	log.Fatal().Err(err).Msg(msg)
}
