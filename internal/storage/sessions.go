package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chatbot-backend/internal/common/database"
	"chatbot-backend/internal/models"
)

var ErrSessionNotFound = errors.New("SESSION_NOT_FOUND")

const (
	sessionKeyPrefix = "chat:session:"
	userIndexPrefix  = "chat:user:"
)

// SessionStore keeps live sessions in Redis as JSON blobs with a sliding
// TTL, plus a per-user set indexing that user's session ids.
type SessionStore struct {
	rdb *database.RedisClient
	ttl time.Duration
}

func NewSessionStore(rdb *database.RedisClient, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func userIndexKey(userID string) string {
	return userIndexPrefix + userID + ":sessions"
}

// Create stores a new session and registers it in the owner's index.
func (s *SessionStore) Create(ctx context.Context, session *models.ChatSession) error {
	if err := s.write(ctx, session); err != nil {
		return err
	}
	if session.UserID != "" {
		client := s.rdb.GetClient()
		if err := client.SAdd(ctx, userIndexKey(session.UserID), session.SessionID).Err(); err != nil {
			return fmt.Errorf("index session for user: %w", err)
		}
	}
	return nil
}

// Get loads a session by id.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session models.ChatSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

// Save rewrites the session and refreshes its TTL.
func (s *SessionStore) Save(ctx context.Context, session *models.ChatSession) error {
	return s.write(ctx, session)
}

// End marks the session inactive. The record stays readable until its TTL
// lapses so history endpoints keep working briefly after a session closes.
func (s *SessionStore) End(ctx context.Context, sessionID string) error {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	session.Active = false
	return s.write(ctx, session)
}

// ForUser lists the user's active sessions. Expired ids are pruned from the
// index as they are discovered.
func (s *SessionStore) ForUser(ctx context.Context, userID string) ([]*models.ChatSession, error) {
	client := s.rdb.GetClient()
	ids, err := client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list user sessions: %w", err)
	}

	sessions := make([]*models.ChatSession, 0, len(ids))
	for _, id := range ids {
		session, err := s.Get(ctx, id)
		if errors.Is(err, ErrSessionNotFound) {
			_ = client.SRem(ctx, userIndexKey(userID), id).Err()
			continue
		}
		if err != nil {
			return nil, err
		}
		if session.Active {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}

// DeactivateIdle scans all session keys and marks sessions idle since the
// cutoff as inactive. Returns how many sessions were deactivated.
func (s *SessionStore) DeactivateIdle(ctx context.Context, cutoff time.Time) (int, error) {
	client := s.rdb.GetClient()
	deactivated := 0

	iter := client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := client.Get(ctx, iter.Val()).Result()
		if err != nil {
			continue
		}
		var session models.ChatSession
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			continue
		}
		if session.Active && session.IdleSince(cutoff) {
			session.Active = false
			if err := s.write(ctx, &session); err == nil {
				deactivated++
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deactivated, fmt.Errorf("scan sessions: %w", err)
	}
	return deactivated, nil
}

// CountActive scans all session keys and counts the active ones. Used by the
// cleanup pass to reconcile the active-sessions gauge after TTL expiry.
func (s *SessionStore) CountActive(ctx context.Context) (int, error) {
	client := s.rdb.GetClient()
	active := 0

	iter := client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := client.Get(ctx, iter.Val()).Result()
		if err != nil {
			continue
		}
		var session models.ChatSession
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			continue
		}
		if session.Active {
			active++
		}
	}
	if err := iter.Err(); err != nil {
		return active, fmt.Errorf("scan sessions: %w", err)
	}
	return active, nil
}

func (s *SessionStore) write(ctx context.Context, session *models.ChatSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(session.SessionID), payload, s.ttl); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}
