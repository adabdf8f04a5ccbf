package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/campushq/campuschat-core/internal/core/domain"
	"github.com/campushq/campuschat-core/internal/core/ports/driven"
	"github.com/redis/go-redis/v9"
)

// Verify interface compliance
var _ driven.SessionStore = (*SessionStore)(nil)

// Key layout:
//
//	sess:<id>            session JSON, TTL = time until ExpiresAt
//	sess:refresh:<tok>   refresh token -> session ID, same TTL
//	sess:user:<userID>   set of session IDs held by one account
//
// Access tokens are self-contained JWTs carrying the session ID, so no
// token index is kept. The refresh index exists because refresh tokens
// are opaque.
const (
	sessKeyPrefix    = "sess:"
	sessRefreshIndex = "sess:refresh:"
	sessUserIndex    = "sess:user:"
)

// userIndexTTL bounds how long a stale user set can outlive its sessions.
// Members that expired underneath it are pruned on DeleteByUser.
const userIndexTTL = 30 * 24 * time.Hour

// SessionStore keeps staff and admin sign-in sessions in Redis, letting
// key TTLs do the expiry work.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a Redis-backed SessionStore
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Save writes the session and its refresh index, both expiring at the
// session's ExpiresAt. A session that already expired is not written.
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", session.ID, err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, sessKeyPrefix+session.ID, data, ttl)
	pipe.Set(ctx, sessRefreshIndex+session.RefreshToken, session.ID, ttl)
	pipe.SAdd(ctx, sessUserIndex+session.UserID, session.ID)
	pipe.Expire(ctx, sessUserIndex+session.UserID, userIndexTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return nil
}

// Get retrieves a session by ID
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := s.client.Get(ctx, sessKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	session := new(domain.Session)
	if err := json.Unmarshal(data, session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return session, nil
}

// GetByRefreshToken resolves the refresh index and loads the session.
// A dangling index entry reads as not found.
func (s *SessionStore) GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	id, err := s.client.Get(ctx, sessRefreshIndex+refreshToken).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve refresh token: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete removes a session and its index entries. Already-gone sessions
// are a no-op so logout is idempotent.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	session, err := s.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.remove(ctx, session)
}

// DeleteByUser removes every session a user holds along with the user's
// session set. Expired members are simply skipped.
func (s *SessionStore) DeleteByUser(ctx context.Context, userID string) error {
	ids, err := s.client.SMembers(ctx, sessUserIndex+userID).Result()
	if err != nil {
		return fmt.Errorf("list sessions for user %s: %w", userID, err)
	}

	pipe := s.client.Pipeline()
	for _, id := range ids {
		session, err := s.Get(ctx, id)
		if err != nil {
			continue
		}
		pipe.Del(ctx, sessKeyPrefix+session.ID)
		pipe.Del(ctx, sessRefreshIndex+session.RefreshToken)
	}
	pipe.Del(ctx, sessUserIndex+userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete sessions for user %s: %w", userID, err)
	}
	return nil
}

func (s *SessionStore) remove(ctx context.Context, session *domain.Session) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, sessKeyPrefix+session.ID)
	pipe.Del(ctx, sessRefreshIndex+session.RefreshToken)
	pipe.SRem(ctx, sessUserIndex+session.UserID, session.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session %s: %w", session.ID, err)
	}
	return nil
}
