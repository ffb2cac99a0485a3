package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot-backend/internal/common/database"
	"chatbot-backend/internal/models"
)

func newMockStore(t *testing.T) (*MessageStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMessageStore(&database.PostgresClient{DB: db}), mock
}

func messageRows(msgs ...*models.ChatMessage) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "session_id", "user_id", "message", "response",
		"message_type", "response_format", "metadata", "timestamp",
	})
	for _, m := range msgs {
		rows.AddRow(m.ID, m.SessionID, m.UserID, m.Message, m.Response,
			m.MessageType, m.ResponseFormat, m.Metadata, m.Timestamp)
	}
	return rows
}

func TestMessageStore_Append(t *testing.T) {
	store, mock := newMockStore(t)

	msg := &models.ChatMessage{
		SessionID:      "sess-1",
		UserID:         "user-1",
		Message:        "hello",
		Response:       "hi",
		MessageType:    models.MessageTypeUserQuery,
		ResponseFormat: models.FormatText,
		Metadata:       `{"intent":"general_query"}`,
	}

	mock.ExpectQuery(`INSERT INTO chat_messages`).
		WithArgs(msg.SessionID, msg.UserID, msg.Message, msg.Response,
			msg.MessageType, msg.ResponseFormat, msg.Metadata, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	err := store.Append(context.Background(), msg)
	require.NoError(t, err)

	assert.Equal(t, int64(42), msg.ID)
	assert.False(t, msg.Timestamp.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageStore_AppendKeepsExplicitTimestamp(t *testing.T) {
	store, mock := newMockStore(t)

	ts := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	msg := &models.ChatMessage{SessionID: "sess-1", Timestamp: ts}

	mock.ExpectQuery(`INSERT INTO chat_messages`).
		WithArgs(msg.SessionID, "", "", "", models.MessageType(""), models.ResponseFormat(""), "", ts).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	require.NoError(t, store.Append(context.Background(), msg))
	assert.Equal(t, ts, msg.Timestamp)
}

func TestMessageStore_BySession(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT .+ FROM chat_messages\s+WHERE session_id = \$1\s+ORDER BY timestamp ASC`).
		WithArgs("sess-1").
		WillReturnRows(messageRows(
			&models.ChatMessage{ID: 1, SessionID: "sess-1", Message: "first", Timestamp: now.Add(-time.Hour)},
			&models.ChatMessage{ID: 2, SessionID: "sess-1", Message: "second", Timestamp: now},
		))

	messages, err := store.BySession(context.Background(), "sess-1")
	require.NoError(t, err)

	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Message)
	assert.Equal(t, "second", messages[1].Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageStore_RecentBySession(t *testing.T) {
	store, mock := newMockStore(t)

	since := time.Now().Add(-24 * time.Hour)
	mock.ExpectQuery(`SELECT .+ FROM chat_messages\s+WHERE session_id = \$1 AND timestamp > \$2`).
		WithArgs("sess-1", since).
		WillReturnRows(messageRows())

	messages, err := store.RecentBySession(context.Background(), "sess-1", since)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestMessageStore_DeleteBySession(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM chat_messages WHERE session_id = \$1`).
		WithArgs("sess-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := store.DeleteBySession(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageStore_DeleteOlderThan(t *testing.T) {
	store, mock := newMockStore(t)

	cutoff := time.Now().Add(-30 * 24 * time.Hour)
	mock.ExpectExec(`DELETE FROM chat_messages WHERE timestamp < \$1`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 17))

	deleted, err := store.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(17), deleted)
}

func TestMessageStore_QueryError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM chat_messages`).
		WithArgs("sess-1").
		WillReturnError(assert.AnError)

	_, err := store.BySession(context.Background(), "sess-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query session history")
}
