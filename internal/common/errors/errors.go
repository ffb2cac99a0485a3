// Package errors provides standardized error handling for the chat backend.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidRequest  ErrorCode = "INVALID_REQUEST"
	ErrCodeMessageTooLong  ErrorCode = "MESSAGE_TOO_LONG"
	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"

	ErrCodeAIProviderTimeout ErrorCode = "AI_PROVIDER_TIMEOUT"
	ErrCodeAIProviderFailed  ErrorCode = "AI_PROVIDER_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeHistoryQueryFailed       ErrorCode = "HISTORY_QUERY_FAILED"
	ErrCodeHistoryWriteFailed       ErrorCode = "HISTORY_WRITE_FAILED"

	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeArchiveIndexFailed ErrorCode = "ARCHIVE_INDEX_FAILED"
	ErrCodeArchiveQueryFailed ErrorCode = "ARCHIVE_QUERY_FAILED"

	ErrCodeRenderFailed ErrorCode = "RENDER_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidRequestError creates a non-retryable request validation error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMessageTooLongError creates a non-retryable message length error.
func NewMessageTooLongError(length, limit int) *StandardError {
	return &StandardError{
		Code:      ErrCodeMessageTooLong,
		Message:   "Message exceeds maximum length",
		Details:   fmt.Sprintf("length: %d, limit: %d", length, limit),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFoundError creates a non-retryable session lookup error.
func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Chat session not found",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAIProviderTimeoutError creates a retryable provider timeout error.
func NewAIProviderTimeoutError(provider string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAIProviderTimeout,
		Message:   "AI provider call timed out",
		Details:   fmt.Sprintf("provider: %s", provider),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAIProviderFailedError creates a retryable provider error.
func NewAIProviderFailedError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAIProviderFailed,
		Message:   "AI provider call failed",
		Details:   fmt.Sprintf("provider: %s, error: %s", provider, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewHistoryQueryFailedError creates a retryable history read error.
func NewHistoryQueryFailedError(sessionID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHistoryQueryFailed,
		Message:   "Chat history query failed",
		Details:   fmt.Sprintf("sessionId: %s, error: %s", sessionID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewHistoryWriteFailedError creates a retryable history write error.
func NewHistoryWriteFailedError(sessionID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHistoryWriteFailed,
		Message:   "Chat history write failed",
		Details:   fmt.Sprintf("sessionId: %s, error: %s", sessionID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreFailedError creates a retryable session store error.
func NewSessionStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Session store operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewArchiveIndexFailedError creates a retryable archive indexing error.
func NewArchiveIndexFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArchiveIndexFailed,
		Message:   "Exchange archive indexing failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewArchiveQueryFailedError creates a retryable archive search error.
func NewArchiveQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArchiveQueryFailed,
		Message:   "Exchange archive search failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRenderFailedError creates a non-retryable formatting error.
func NewRenderFailedError(format string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRenderFailed,
		Message:   "Response formatting failed",
		Details:   fmt.Sprintf("format: %s, error: %s", format, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Helper Functions
// ==========================

// IsRetryableErrorCode reports whether the code is worth retrying.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeInvalidRequest, ErrCodeMessageTooLong, ErrCodeSessionNotFound, ErrCodeRenderFailed:
		return false
	}
	return true
}

// GetErrorCategory groups error codes for logging and metrics.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeInvalidRequest, ErrCodeMessageTooLong:
		return "validation"
	case ErrCodeSessionNotFound, ErrCodeSessionStoreFailed:
		return "session"
	case ErrCodeAIProviderTimeout, ErrCodeAIProviderFailed:
		return "ai_provider"
	case ErrCodeDatabaseConnectionFailed, ErrCodeHistoryQueryFailed, ErrCodeHistoryWriteFailed:
		return "database"
	case ErrCodeArchiveIndexFailed, ErrCodeArchiveQueryFailed:
		return "archive"
	case ErrCodeRenderFailed:
		return "formatting"
	}
	return "internal"
}
