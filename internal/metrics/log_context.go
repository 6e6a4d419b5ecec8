/*-------------------------------------------------------------------------
 *
 * log_context.go
 *    Log context helpers for structured logging
 *
 * Provides helpers for consistent structured logging with request_id,
 * elevation_id, and ticket fields across all components.
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/internal/metrics/log_context.go
 *
 *-------------------------------------------------------------------------
 */

package metrics

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey string

const (
	requestIDKey   contextKey = "request_id"
	elevationIDKey contextKey = "elevation_id"
	ticketKey      contextKey = "ticket"
)

/* WithLogContext adds logging fields to context */
func WithLogContext(ctx context.Context, requestID, elevationID, ticket string) context.Context {
	if requestID != "" {
		ctx = context.WithValue(ctx, requestIDKey, requestID)
	}
	if elevationID != "" {
		ctx = context.WithValue(ctx, elevationIDKey, elevationID)
	}
	if ticket != "" {
		ctx = context.WithValue(ctx, ticketKey, ticket)
	}
	return ctx
}

/* GetRequestIDFromContext gets request ID from context */
func GetRequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

/* GetElevationIDFromContext gets elevation request ID from context */
func GetElevationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(elevationIDKey).(string); ok {
		return id
	}
	return ""
}

/* GetTicketFromContext gets the ticket key from context */
func GetTicketFromContext(ctx context.Context) string {
	if t, ok := ctx.Value(ticketKey).(string); ok {
		return t
	}
	return ""
}

/* LoggerFromContext creates a zerolog logger with fields from context */
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	logger := *zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = rootLogger
	}

	/* Add context fields */
	if requestID := GetRequestIDFromContext(ctx); requestID != "" {
		logger = logger.With().Str("request_id", requestID).Logger()
	}
	if elevationID := GetElevationIDFromContext(ctx); elevationID != "" {
		logger = logger.With().Str("elevation_id", elevationID).Logger()
	}
	if ticket := GetTicketFromContext(ctx); ticket != "" {
		logger = logger.With().Str("ticket", ticket).Logger()
	}

	return logger
}

/* LogWithContext logs a message with context fields */
func LogWithContext(ctx context.Context, level zerolog.Level, message string, fields map[string]interface{}) {
	logger := LoggerFromContext(ctx)
	event := logger.WithLevel(level)

	for key, value := range fields {
		event = event.Interface(key, value)
	}

	event.Msg(message)
}

/* DebugWithContext logs a debug message with context */
func DebugWithContext(ctx context.Context, message string, fields map[string]interface{}) {
	LogWithContext(ctx, zerolog.DebugLevel, message, fields)
}

/* InfoWithContext logs an info message with context */
func InfoWithContext(ctx context.Context, message string, fields map[string]interface{}) {
	LogWithContext(ctx, zerolog.InfoLevel, message, fields)
}

/* WarnWithContext logs a warning message with context */
func WarnWithContext(ctx context.Context, message string, fields map[string]interface{}) {
	LogWithContext(ctx, zerolog.WarnLevel, message, fields)
}

/* ErrorWithContext logs an error message with context */
func ErrorWithContext(ctx context.Context, message string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	LogWithContext(ctx, zerolog.ErrorLevel, message, fields)
}
