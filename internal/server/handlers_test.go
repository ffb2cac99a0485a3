package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot-backend/internal/chat"
	"chatbot-backend/internal/common/config"
	"chatbot-backend/internal/common/logger"
	"chatbot-backend/internal/models"
	"chatbot-backend/internal/storage"
)

// ==========================
// Fakes
// ==========================

type stubProvider struct {
	reply string
}

func (p *stubProvider) Name() string { return "stub" }
func (p *stubProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return p.reply, nil
}

type stubMessages struct {
	stored []*models.ChatMessage
}

func (m *stubMessages) Append(ctx context.Context, msg *models.ChatMessage) error {
	m.stored = append(m.stored, msg)
	return nil
}

func (m *stubMessages) BySession(ctx context.Context, sessionID string) ([]*models.ChatMessage, error) {
	var out []*models.ChatMessage
	for _, msg := range m.stored {
		if msg.SessionID == sessionID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *stubMessages) RecentBySession(ctx context.Context, sessionID string, since time.Time) ([]*models.ChatMessage, error) {
	return nil, nil
}

func (m *stubMessages) DeleteBySession(ctx context.Context, sessionID string) error {
	m.stored = nil
	return nil
}

func (m *stubMessages) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type stubSessions struct {
	sessions map[string]*models.ChatSession
}

func (s *stubSessions) Create(ctx context.Context, session *models.ChatSession) error {
	s.sessions[session.SessionID] = session
	return nil
}

func (s *stubSessions) Get(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, storage.ErrSessionNotFound
	}
	return session, nil
}

func (s *stubSessions) Save(ctx context.Context, session *models.ChatSession) error {
	s.sessions[session.SessionID] = session
	return nil
}

func (s *stubSessions) End(ctx context.Context, sessionID string) error {
	session, ok := s.sessions[sessionID]
	if !ok {
		return storage.ErrSessionNotFound
	}
	session.Active = false
	return nil
}

func (s *stubSessions) ForUser(ctx context.Context, userID string) ([]*models.ChatSession, error) {
	var out []*models.ChatSession
	for _, session := range s.sessions {
		if session.UserID == userID && session.Active {
			out = append(out, session)
		}
	}
	return out, nil
}

func (s *stubSessions) DeactivateIdle(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}

func (s *stubSessions) CountActive(ctx context.Context) (int, error) {
	return len(s.sessions), nil
}

type stubArchive struct {
	results []*storage.ArchivedExchange
}

func (a *stubArchive) Index(ctx context.Context, doc *storage.ArchivedExchange) error { return nil }
func (a *stubArchive) Search(ctx context.Context, userID, query string, limit int) ([]*storage.ArchivedExchange, error) {
	return a.results, nil
}

// ==========================
// Fixture
// ==========================

type serverFixture struct {
	server   *Server
	messages *stubMessages
	sessions *stubSessions
	archive  *stubArchive
}

func newServerFixture(t *testing.T) *serverFixture {
	f := &serverFixture{
		messages: &stubMessages{},
		sessions: &stubSessions{sessions: make(map[string]*models.ChatSession)},
		archive:  &stubArchive{},
	}
	service := chat.NewService(
		config.ChatConfig{HistoryWindowHours: 24, DeactivateAfterDays: 7, DeleteAfterDays: 30},
		&stubProvider{reply: "Sure, here you go."},
		f.messages,
		f.sessions,
		f.archive,
		logger.NewTestLogger(t),
	)
	f.server = New(config.ServerConfig{
		Host:         "127.0.0.1",
		Port:         0,
		ReadTimeout:  15000,
		WriteTimeout: 60000,
	}, service, nil, logger.NewTestLogger(t))
	return f
}

func (f *serverFixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.server.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// ==========================
// POST /api/chat/message
// ==========================

func TestHandleMessage_Success(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodPost, "/api/chat/message",
		`{"message":"hello","userId":"user-1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "Sure, here you go.", resp.Message)
	assert.Equal(t, models.FormatText, resp.ResponseFormat)
}

func TestHandleMessage_SystemContextOrderSurvivesDecode(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodPost, "/api/chat/message",
		`{"message":"show me the user table","systemContext":{"users":[{"id":1,"name":"alice"}]}}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.FormatTable, resp.ResponseFormat)
}

func TestHandleMessage_InvalidJSON(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodPost, "/api/chat/message", `not json`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, rec)["code"])
}

func TestHandleMessage_SchemaViolations(t *testing.T) {
	f := newServerFixture(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing message", `{"userId":"user-1"}`},
		{"empty message", `{"message":""}`},
		{"message too long", `{"message":"` + strings.Repeat("x", 2001) + `"}`},
		{"wrong type", `{"message":42}`},
		{"unknown field", `{"message":"hi","surprise":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/chat/message", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "INVALID_REQUEST", decodeError(t, rec)["code"])
		})
	}
}

// ==========================
// History endpoints
// ==========================

func TestHandleHistory(t *testing.T) {
	f := newServerFixture(t)
	f.messages.stored = []*models.ChatMessage{
		{ID: 1, SessionID: "sess-1", Message: "q", Response: "a"},
	}

	rec := f.do(t, http.MethodGet, "/api/chat/history/sess-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var messages []*models.ChatMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &messages))
	require.Len(t, messages, 1)
	assert.Equal(t, "q", messages[0].Message)

	// Unknown sessions return an empty array, not null.
	rec = f.do(t, http.MethodGet, "/api/chat/history/unknown", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestHandleClearHistory(t *testing.T) {
	f := newServerFixture(t)
	f.messages.stored = []*models.ChatMessage{{ID: 1, SessionID: "sess-1"}}

	rec := f.do(t, http.MethodDelete, "/api/chat/history/sess-1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, f.messages.stored)
}

// ==========================
// Session endpoints
// ==========================

func TestHandleSessions(t *testing.T) {
	f := newServerFixture(t)
	f.sessions.sessions["sess-1"] = &models.ChatSession{
		SessionID: "sess-1", UserID: "user-1", Active: true,
	}

	rec := f.do(t, http.MethodGet, "/api/chat/sessions?userId=user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var sessions []*models.ChatSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, "sess-1", sessions[0].SessionID)
}

func TestHandleSessions_MissingUserID(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/api/chat/sessions", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, rec)["code"])
}

func TestHandleEndSession(t *testing.T) {
	f := newServerFixture(t)
	f.sessions.sessions["sess-1"] = &models.ChatSession{SessionID: "sess-1", Active: true}

	rec := f.do(t, http.MethodPost, "/api/chat/session/sess-1/end", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeError(t, rec)
	assert.Equal(t, "sess-1", body["sessionId"])
	assert.Equal(t, "ended", body["status"])
	assert.False(t, f.sessions.sessions["sess-1"].Active)
}

func TestHandleEndSession_NotFound(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodPost, "/api/chat/session/missing/end", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", decodeError(t, rec)["code"])
}

// ==========================
// Search and health
// ==========================

func TestHandleSearch(t *testing.T) {
	f := newServerFixture(t)
	f.archive.results = []*storage.ArchivedExchange{
		{SessionID: "sess-1", Message: "hello", Response: "hi"},
	}

	rec := f.do(t, http.MethodGet, "/api/chat/search?q=hello&userId=user-1&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Query   string                      `json:"query"`
		Results []*storage.ArchivedExchange `json:"results"`
		Count   int                         `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "hello", body.Query)
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Results, 1)
}

func TestHandleSearch_Validation(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/api/chat/search?q=", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/chat/search?q=hello&limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/chat/search?q=hello&limit=-3", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/api/chat/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeError(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["time"])
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/api/chat/message", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
