// internal/models/message.go
package models

import (
	"context"
	"time"
)

// MessageType labels why a chat message row exists.
type MessageType string

const (
	MessageTypeUserQuery  MessageType = "USER_QUERY"
	MessageTypeSystemInfo MessageType = "SYSTEM_INFO"
	MessageTypeAIResponse MessageType = "AI_RESPONSE"
	MessageTypeError      MessageType = "ERROR"
)

// ChatMessage is one persisted user/assistant exchange.
type ChatMessage struct {
	ID             int64          `json:"id" db:"id"`
	SessionID      string         `json:"sessionId" db:"session_id"`
	UserID         string         `json:"userId" db:"user_id"`
	Message        string         `json:"message" db:"message"`
	Response       string         `json:"response" db:"response"`
	MessageType    MessageType    `json:"messageType" db:"message_type"`
	ResponseFormat ResponseFormat `json:"responseFormat" db:"response_format"`
	Metadata       string         `json:"metadata,omitempty" db:"metadata"` // JSON blob
	Timestamp      time.Time      `json:"timestamp" db:"timestamp"`
}

// MessageRepository defines chat history data access.
type MessageRepository interface {
	Append(ctx context.Context, msg *ChatMessage) error
	BySession(ctx context.Context, sessionID string) ([]*ChatMessage, error)
	RecentBySession(ctx context.Context, sessionID string, since time.Time) ([]*ChatMessage, error)
	DeleteBySession(ctx context.Context, sessionID string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
