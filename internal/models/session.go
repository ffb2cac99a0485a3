package models

import (
	"context"
	"time"
)

// ChatSession represents one conversation's session record.
type ChatSession struct {
	SessionID    string    `json:"sessionId" db:"session_id"`
	UserID       string    `json:"userId" db:"user_id"`
	Context      string    `json:"context,omitempty" db:"context"` // serialized system context JSON
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	LastActivity time.Time `json:"lastActivity" db:"last_activity"`
	Active       bool      `json:"active" db:"active"`
}

// IdleSince reports whether the session has seen no activity since the cutoff.
func (s *ChatSession) IdleSince(cutoff time.Time) bool {
	return s.LastActivity.Before(cutoff)
}

// Touch updates the last activity timestamp.
func (s *ChatSession) Touch(now time.Time) {
	s.LastActivity = now
}

// SessionStore defines session data access.
type SessionStore interface {
	Create(ctx context.Context, session *ChatSession) error
	Get(ctx context.Context, sessionID string) (*ChatSession, error)
	Save(ctx context.Context, session *ChatSession) error
	End(ctx context.Context, sessionID string) error
	ForUser(ctx context.Context, userID string) ([]*ChatSession, error)
	DeactivateIdle(ctx context.Context, cutoff time.Time) (int, error)
	CountActive(ctx context.Context) (int, error)
}
