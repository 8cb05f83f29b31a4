// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// asyncLog covers work that happens off the request path, where no
// request-scoped logger exists.
var asyncLog = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
	Level: slog.LevelInfo,
}))

// LogAsyncOperationError records a failure in best-effort background work
// (notification fan-out, image cleanup). The primary operation has already
// succeeded by the time this is called; the log line is the only trace of
// the failure. fields may be nil.
func LogAsyncOperationError(ctx context.Context, operation string, err error, fields map[string]interface{}) {
	attrs := []any{
		slog.String("operation", operation),
		slog.String("type", "async_error"),
		slog.String("error", err.Error()),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	asyncLog.ErrorContext(ctx, "async operation failed", attrs...)
}

// WSLogger stamps websocket lifecycle logs with the owning hub's name.
type WSLogger struct {
	hub    string
	logger *slog.Logger
}

func NewWSLogger(hub string) *WSLogger {
	return &WSLogger{hub: hub, logger: asyncLog}
}

// Connect records a connection joining its room.
func (l *WSLogger) Connect(userID uint) {
	l.logger.Info("websocket connected",
		slog.String("hub", l.hub),
		slog.Uint64("user_id", uint64(userID)),
	)
}

// Disconnect records a connection leaving its room.
func (l *WSLogger) Disconnect(userID uint, reason string) {
	l.logger.Info("websocket disconnected",
		slog.String("hub", l.hub),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("reason", reason),
	)
}

// Warn records a suspicious but non-fatal websocket condition.
func (l *WSLogger) Warn(msg string, attrs ...any) {
	l.logger.Warn(msg, append([]any{slog.String("hub", l.hub)}, attrs...)...)
}

// Error records a failed websocket operation for one connection.
func (l *WSLogger) Error(userID uint, event string, err error) {
	l.logger.Error("websocket error",
		slog.String("hub", l.hub),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("event", event),
		slog.String("error", err.Error()),
	)
}
