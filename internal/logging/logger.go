package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey struct{}

var requestIDKey contextKey

// Logger wraps slog with request-scoped correlation ids.
type Logger struct {
	logger *slog.Logger
}

// Option customises the logger.
type Option func(*options)

type options struct {
	writer io.Writer
}

// WithWriter redirects log output, mainly for tests.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

// New creates a JSON logger at the provided level.
func New(level string, opts ...Option) *Logger {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}

	writer := cfg.writer
	if writer == nil {
		writer = os.Stdout
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: parseLevel(level)})
	return &Logger{logger: slog.New(handler)}
}

// WithRequestID stores a correlation id in the context for later log calls.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the correlation id stored in the context,
// if any.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, l.withRequestID(ctx, args)...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, l.withRequestID(ctx, args)...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, l.withRequestID(ctx, args)...)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, l.withRequestID(ctx, args)...)
}

func (l *Logger) withRequestID(ctx context.Context, args []any) []any {
	if id := RequestIDFromContext(ctx); id != "" {
		return append(args, slog.String("request_id", id))
	}
	return args
}

func parseLevel(level string) slog.Leveler {
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
