// Package storage implements the persistence layer: chat history in
// PostgreSQL, live sessions in Redis, and the searchable exchange archive
// in Elasticsearch.
package storage

import (
	"context"
	"fmt"
	"time"

	"chatbot-backend/internal/common/database"
	"chatbot-backend/internal/models"
)

// MessageStore is the PostgreSQL-backed chat history repository.
type MessageStore struct {
	db *database.PostgresClient
}

func NewMessageStore(db *database.PostgresClient) *MessageStore {
	return &MessageStore{db: db}
}

const messageColumns = "id, session_id, user_id, message, response, message_type, response_format, metadata, timestamp"

// Append persists one exchange and fills in the generated id and timestamp.
func (s *MessageStore) Append(ctx context.Context, msg *models.ChatMessage) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	err := s.db.QueryRow(ctx,
		`INSERT INTO chat_messages (session_id, user_id, message, response, message_type, response_format, metadata, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		msg.SessionID, msg.UserID, msg.Message, msg.Response,
		msg.MessageType, msg.ResponseFormat, msg.Metadata, msg.Timestamp,
	).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

// BySession returns the full history for a session, oldest first.
func (s *MessageStore) BySession(ctx context.Context, sessionID string) ([]*models.ChatMessage, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+messageColumns+` FROM chat_messages
		 WHERE session_id = $1
		 ORDER BY timestamp ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query session history: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// RecentBySession returns messages newer than the cutoff, oldest first.
func (s *MessageStore) RecentBySession(ctx context.Context, sessionID string, since time.Time) ([]*models.ChatMessage, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+messageColumns+` FROM chat_messages
		 WHERE session_id = $1 AND timestamp > $2
		 ORDER BY timestamp ASC`,
		sessionID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent history: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// DeleteBySession removes all history for a session.
func (s *MessageStore) DeleteBySession(ctx context.Context, sessionID string) error {
	if _, err := s.db.Exec(ctx,
		`DELETE FROM chat_messages WHERE session_id = $1`, sessionID,
	); err != nil {
		return fmt.Errorf("delete session history: %w", err)
	}
	return nil
}

// DeleteOlderThan purges history older than the cutoff and reports how many
// rows went away.
func (s *MessageStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(ctx,
		`DELETE FROM chat_messages WHERE timestamp < $1`, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("purge old messages: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanMessages(rows rowScanner) ([]*models.ChatMessage, error) {
	var messages []*models.ChatMessage
	for rows.Next() {
		var msg models.ChatMessage
		if err := rows.Scan(
			&msg.ID, &msg.SessionID, &msg.UserID, &msg.Message, &msg.Response,
			&msg.MessageType, &msg.ResponseFormat, &msg.Metadata, &msg.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
