package authz

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// SessionClaims is what a session store returns for a live token.
type SessionClaims struct {
	UserID    int64
	ExpiresAt time.Time
}

// SessionStore validates an opaque session token. Implementations return
// ErrUnauthenticated for unknown or expired tokens.
type SessionStore interface {
	Validate(ctx context.Context, token string) (SessionClaims, error)
}

// RoleFacts are the authoritative role records for a user.
type RoleFacts struct {
	BaseRole             Role
	EmployeeRoleCategory string
}

// DirectoryStore fetches role facts from the authoritative record store.
type DirectoryStore interface {
	GetRoleFacts(ctx context.Context, userID int64) (RoleFacts, error)
}

// Resolver turns a session token into a Principal. Role facts are always
// re-fetched by the resolved user id, never taken from request payloads, so a
// forged body cannot escalate privileges.
type Resolver struct {
	sessions  SessionStore
	directory DirectoryStore
	timeout   time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

const defaultResolveTimeout = 3 * time.Second

// NewResolver constructs a Resolver. A non-positive timeout falls back to the
// default bound.
func NewResolver(sessions SessionStore, directory DirectoryStore, timeout time.Duration, logger *slog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = defaultResolveTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		sessions:  sessions,
		directory: directory,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (r *Resolver) WithNow(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// Resolve validates the token and builds a Principal. Every failure path,
// including store timeouts, collapses to ErrUnauthenticated: the resolver
// fails closed, never open.
func (r *Resolver) Resolve(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, ErrUnauthenticated
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	claims, err := r.sessions.Validate(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrUnauthenticated) {
			r.logger.Warn("session validate failed", slog.Any("error", err))
		}
		return Principal{}, ErrUnauthenticated
	}
	if !claims.ExpiresAt.After(r.now()) {
		return Principal{}, ErrUnauthenticated
	}

	facts, err := r.directory.GetRoleFacts(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, ErrUnauthenticated) {
			r.logger.Warn("role facts lookup failed", slog.Int64("user_id", claims.UserID), slog.Any("error", err))
		}
		return Principal{}, ErrUnauthenticated
	}

	return Principal{
		UserID:               claims.UserID,
		BaseRole:             facts.BaseRole,
		EmployeeRoleCategory: facts.EmployeeRoleCategory,
		SessionValidUntil:    claims.ExpiresAt,
	}, nil
}
