// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorHandler writes standardized error responses to HTTP clients
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// errorBody is the JSON error envelope returned to clients.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// WriteError normalizes any error to a StandardError, logs it, and sends
// the JSON error envelope with the mapped status code.
func (h *ErrorHandler) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := h.normalizeError(err)
	status := StatusFor(stdErr.Code)

	h.logger.Error("request failed", map[string]interface{}{
		"method":        r.Method,
		"path":          r.URL.Path,
		"status":        status,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{
		Code:    string(stdErr.Code),
		Message: stdErr.Message,
		Details: stdErr.Details,
	})
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// StatusFor maps error codes to HTTP status codes.
func StatusFor(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidRequest, ErrCodeMessageTooLong:
		return http.StatusBadRequest
	case ErrCodeSessionNotFound:
		return http.StatusNotFound
	case ErrCodeAIProviderTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeAIProviderFailed:
		return http.StatusBadGateway
	case ErrCodeDatabaseConnectionFailed, ErrCodeHistoryQueryFailed, ErrCodeHistoryWriteFailed,
		ErrCodeSessionStoreFailed, ErrCodeArchiveIndexFailed, ErrCodeArchiveQueryFailed:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
