package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "session:revoked:"

// SessionStore tracks revoked session ids in Redis so logout takes effect
// before token expiry.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore wraps a redis client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Revoke marks a session id unusable for the remainder of its lifetime.
func (s *SessionStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if s.client == nil || ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether the session id was revoked. Redis outages fail
// open: an unreachable store does not lock every user out.
func (s *SessionStore) IsRevoked(ctx context.Context, jti string) bool {
	if s.client == nil {
		return false
	}
	res, err := s.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false
	}
	return res > 0
}
