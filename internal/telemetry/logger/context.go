// Package logger provides structured logging for Keva.
package logger

import "context"

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const (
	// loggerKey is the context key for the logger.
	loggerKey contextKey = "keva.logger"
	// connIDKey is the context key for the connection ID.
	connIDKey contextKey = "keva.connection_id"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithConnectionID adds a connection ID to the context.
func WithConnectionID(ctx context.Context, connID string) context.Context {
	return context.WithValue(ctx, connIDKey, connID)
}

// ConnectionIDFromContext extracts the connection ID from context.
func ConnectionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(connIDKey).(string); ok {
		return id
	}
	return ""
}

// L is a shorthand for FromContext that also enriches the logger
// with the connection ID from the context.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)

	if connID := ConnectionIDFromContext(ctx); connID != "" {
		l = l.With("conn_id", connID)
	}

	return l
}
