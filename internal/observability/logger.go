// Package observability holds the structured logger, Prometheus metrics and tracing setup.
package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

type contextKey string

// RequestIDKey is the context key for the request id set by middleware.
const RequestIDKey contextKey = "request_id"

// Logger wraps slog.Logger with the event helpers used across the service.
type Logger struct {
	*slog.Logger
}

// NewLogger writes JSON to stdout, or debug-level text when env is "development".
func NewLogger(env string) *Logger {
	return newLogger(env, os.Stdout)
}

func newLogger(env string, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler
	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

// NopLogger discards everything. Used by tests.
func NopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// WithContext adds the request id and trace id found on ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	out := l.Logger
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		out = out.With(slog.String("request_id", id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		out = out.With(slog.String("trace_id", sc.TraceID().String()))
	}
	return &Logger{Logger: out}
}

// HTTPRequest logs a completed request.
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	level := slog.LevelInfo
	if status >= 500 {
		level = slog.LevelError
	}
	l.Log(context.Background(), level, "http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// AuthEvent logs a register or login outcome. Never pass passwords or tokens here.
func (l *Logger) AuthEvent(event, email string, success bool, reason string) {
	if success {
		l.Info("auth_event",
			slog.String("event", event),
			slog.String("email", email),
			slog.Bool("success", true),
		)
		return
	}
	l.Warn("auth_event",
		slog.String("event", event),
		slog.String("email", email),
		slog.Bool("success", false),
		slog.String("reason", reason),
	)
}

// StorageError logs an unexpected persistence failure.
func (l *Logger) StorageError(operation string, err error) {
	l.Error("storage_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs a rejected request.
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}

// Printf and Fatalf let the logger stand in for migration tooling loggers.
func (l *Logger) Printf(format string, v ...any) {
	l.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *Logger) Fatalf(format string, v ...any) {
	l.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
	os.Exit(1)
}
