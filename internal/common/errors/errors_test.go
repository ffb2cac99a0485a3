package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureLogger struct {
	lastFields map[string]interface{}
}

func (l *captureLogger) Error(msg string, fields map[string]interface{}) {
	l.lastFields = fields
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code   ErrorCode
		status int
	}{
		{ErrCodeInvalidRequest, http.StatusBadRequest},
		{ErrCodeMessageTooLong, http.StatusBadRequest},
		{ErrCodeSessionNotFound, http.StatusNotFound},
		{ErrCodeAIProviderTimeout, http.StatusGatewayTimeout},
		{ErrCodeAIProviderFailed, http.StatusBadGateway},
		{ErrCodeHistoryQueryFailed, http.StatusServiceUnavailable},
		{ErrCodeSessionStoreFailed, http.StatusServiceUnavailable},
		{ErrCodeArchiveQueryFailed, http.StatusServiceUnavailable},
		{ErrCodeRenderFailed, http.StatusInternalServerError},
		{ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.status, StatusFor(tt.code))
		})
	}
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.False(t, IsRetryableErrorCode(ErrCodeInvalidRequest))
	assert.False(t, IsRetryableErrorCode(ErrCodeSessionNotFound))
	assert.False(t, IsRetryableErrorCode(ErrCodeRenderFailed))
	assert.True(t, IsRetryableErrorCode(ErrCodeAIProviderTimeout))
	assert.True(t, IsRetryableErrorCode(ErrCodeHistoryQueryFailed))
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name      string
		err       *StandardError
		code      ErrorCode
		retryable bool
		details   string
	}{
		{"provider timeout", NewAIProviderTimeoutError("qwen3"), ErrCodeAIProviderTimeout, true, "qwen3"},
		{"provider failed", NewAIProviderFailedError("openai", errors.New("boom")), ErrCodeAIProviderFailed, true, "boom"},
		{"database connection", NewDatabaseConnectionFailedError(errors.New("refused")), ErrCodeDatabaseConnectionFailed, true, "refused"},
		{"archive index", NewArchiveIndexFailedError(errors.New("es down")), ErrCodeArchiveIndexFailed, true, "es down"},
		{"render failed", NewRenderFailedError("CHART", errors.New("bad tree")), ErrCodeRenderFailed, false, "CHART"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.retryable, tt.err.Retryable)
			assert.Contains(t, tt.err.Details, tt.details)
			assert.Contains(t, tt.err.Error(), string(tt.code))
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "validation", GetErrorCategory(ErrCodeMessageTooLong))
	assert.Equal(t, "session", GetErrorCategory(ErrCodeSessionStoreFailed))
	assert.Equal(t, "ai_provider", GetErrorCategory(ErrCodeAIProviderFailed))
	assert.Equal(t, "database", GetErrorCategory(ErrCodeHistoryWriteFailed))
	assert.Equal(t, "archive", GetErrorCategory(ErrCodeArchiveIndexFailed))
	assert.Equal(t, "formatting", GetErrorCategory(ErrCodeRenderFailed))
	assert.Equal(t, "internal", GetErrorCategory(ErrorCode("UNMAPPED")))
}

func TestWriteError_StandardError(t *testing.T) {
	log := &captureLogger{}
	handler := NewErrorHandler(log)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chat/message", nil)

	handler.WriteError(rec, req, NewMessageTooLongError(2500, 2000))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "MESSAGE_TOO_LONG", body["code"])
	assert.Equal(t, "Message exceeds maximum length", body["message"])
	assert.Contains(t, body["details"], "2500")

	assert.Equal(t, "validation", log.lastFields["errorCategory"])
	assert.Equal(t, http.StatusBadRequest, log.lastFields["status"])
}

func TestWriteError_PlainErrorNormalized(t *testing.T) {
	handler := NewErrorHandler(&captureLogger{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/chat/health", nil)

	handler.WriteError(rec, req, errors.New("something broke"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
	assert.Equal(t, "something broke", body["details"])
}
