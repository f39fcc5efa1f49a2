// Package logger configures the process-wide slog logger and derives
// request-scoped loggers carrying request and trace identifiers.
package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys shared by every log line.
const (
	TraceID   = "trace_id"
	RequestID = "request_id"
	UserID    = "user_id"
	OrderID   = "order_id"
	Error     = "error"
)

// New builds a JSON logger writing to w at the given level name
// (debug, info, warn, error). Unknown names fall back to info.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// FromContext returns the default logger enriched with the request id set by
// chi's RequestID middleware and the trace id of the active span, if any.
func FromContext(ctx context.Context) *slog.Logger {
	l := slog.Default()
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		l = l.With(slog.String(RequestID, reqID))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		l = l.With(slog.String(TraceID, sc.TraceID().String()))
	}
	return l
}

// Err is shorthand for the error attribute.
func Err(err error) slog.Attr {
	return slog.Any(Error, err)
}
