// Package session implements the Redis-backed session token store consumed
// by the principal resolver.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/meridian-club/meridian/internal/authz"
)

type payload struct {
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store keeps session tokens in Redis with a bounded lifetime.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewStore constructs a Store.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *Store) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// TTL exposes the configured session lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create issues a fresh token for the user.
func (s *Store) Create(ctx context.Context, userID int64) (string, time.Time, error) {
	token := uuid.NewString()
	expiresAt := s.now().Add(s.ttl).UTC()
	data, err := json.Marshal(payload{UserID: userID, ExpiresAt: expiresAt})
	if err != nil {
		return "", time.Time{}, err
	}
	if err := s.client.Set(ctx, redisKey(token), data, s.ttl).Err(); err != nil {
		return "", time.Time{}, fmt.Errorf("session: store token: %w", err)
	}
	return token, expiresAt, nil
}

// Validate resolves a token to its claims. Unknown, malformed, and expired
// tokens all return authz.ErrUnauthenticated.
func (s *Store) Validate(ctx context.Context, token string) (authz.SessionClaims, error) {
	if token == "" {
		return authz.SessionClaims{}, authz.ErrUnauthenticated
	}
	data, err := s.client.Get(ctx, redisKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return authz.SessionClaims{}, authz.ErrUnauthenticated
		}
		return authz.SessionClaims{}, fmt.Errorf("session: load token: %w", err)
	}
	var stored payload
	if err := json.Unmarshal(data, &stored); err != nil {
		return authz.SessionClaims{}, authz.ErrUnauthenticated
	}
	if !stored.ExpiresAt.After(s.now()) {
		_ = s.client.Del(ctx, redisKey(token)).Err()
		return authz.SessionClaims{}, authz.ErrUnauthenticated
	}
	return authz.SessionClaims{UserID: stored.UserID, ExpiresAt: stored.ExpiresAt}, nil
}

// Revoke deletes a token.
func (s *Store) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.client.Del(ctx, redisKey(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

func redisKey(token string) string {
	return "session:" + token
}

var _ authz.SessionStore = (*Store)(nil)
