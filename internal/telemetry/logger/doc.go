// Package logger provides structured logging for Keva.
//
// This package wraps log/slog for structured logging:
//
//   - logger.go: Logger configuration and initialization
//   - context.go: Context-aware logging with connection IDs
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering with runtime adjustment
//   - Context propagation for per-connection attribution
package logger
