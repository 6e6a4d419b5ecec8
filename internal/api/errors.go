/*-------------------------------------------------------------------------
 *
 * errors.go
 *    API error types and response helpers
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/internal/api/errors.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/accessdesk/AccessAgent/internal/metrics"
)

/* APIError carries an HTTP status plus the underlying cause */
type APIError struct {
	Code      int
	Message   string
	Err       error
	RequestID string
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

/* ErrorResponse is the JSON error envelope */
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

/* Common errors */
var (
	ErrUnauthorized = NewError(http.StatusUnauthorized, "unauthorized", nil)
	ErrNotFound     = NewError(http.StatusNotFound, "resource not found", nil)
)

/* NewError creates a new API error */
func NewError(code int, message string, err error) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

/* WrapError attaches a request ID to an API error */
func WrapError(err *APIError, requestID string) *APIError {
	return &APIError{
		Code:      err.Code,
		Message:   err.Message,
		Err:       err.Err,
		RequestID: requestID,
	}
}

/* NewErrorWithContext creates an API error and logs it with request context */
func NewErrorWithContext(code int, message string, err error, requestID, endpoint, method string, fields map[string]interface{}) *APIError {
	logFields := map[string]interface{}{
		"endpoint": endpoint,
		"method":   method,
		"status":   code,
	}
	for k, v := range fields {
		logFields[k] = v
	}
	ctx := metrics.WithLogContext(context.Background(), requestID, "", "")
	if code >= http.StatusInternalServerError {
		metrics.ErrorWithContext(ctx, message, err, logFields)
	} else {
		metrics.WarnWithContext(ctx, message, logFields)
	}
	return &APIError{
		Code:      code,
		Message:   message,
		Err:       err,
		RequestID: requestID,
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, err *APIError) {
	response := ErrorResponse{
		Error: err.Message,
		Code:  err.Code,
	}
	if err.Err != nil {
		response.Message = err.Err.Error()
	}
	if err.RequestID != "" {
		w.Header().Set("X-Request-ID", err.RequestID)
	}
	respondJSON(w, err.Code, response)
}
