package authz

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubSessionStore struct {
	claims SessionClaims
	err    error
	delay  time.Duration
}

func (s *stubSessionStore) Validate(ctx context.Context, token string) (SessionClaims, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return SessionClaims{}, ctx.Err()
		}
	}
	if s.err != nil {
		return SessionClaims{}, s.err
	}
	return s.claims, nil
}

type stubDirectoryStore struct {
	facts RoleFacts
	err   error
	calls int
}

func (s *stubDirectoryStore) GetRoleFacts(ctx context.Context, userID int64) (RoleFacts, error) {
	s.calls++
	if s.err != nil {
		return RoleFacts{}, s.err
	}
	return s.facts, nil
}

func TestResolveBuildsPrincipalFromDirectoryFacts(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	sessions := &stubSessionStore{claims: SessionClaims{UserID: 42, ExpiresAt: now.Add(time.Hour)}}
	directory := &stubDirectoryStore{facts: RoleFacts{BaseRole: RoleManagerAdmin, EmployeeRoleCategory: ChairmanCategory}}
	r := NewResolver(sessions, directory, time.Second, nil)
	r.WithNow(func() time.Time { return now })

	p, err := r.Resolve(context.Background(), "token")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.UserID != 42 || p.BaseRole != RoleManagerAdmin || !p.IsChairman() {
		t.Fatalf("unexpected principal: %+v", p)
	}
	if directory.calls != 1 {
		t.Fatalf("expected one directory lookup, got %d", directory.calls)
	}
}

func TestResolveEmptyToken(t *testing.T) {
	r := NewResolver(&stubSessionStore{}, &stubDirectoryStore{}, time.Second, nil)
	if _, err := r.Resolve(context.Background(), ""); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestResolveExpiredSession(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	sessions := &stubSessionStore{claims: SessionClaims{UserID: 1, ExpiresAt: now.Add(-time.Minute)}}
	r := NewResolver(sessions, &stubDirectoryStore{}, time.Second, nil)
	r.WithNow(func() time.Time { return now })

	if _, err := r.Resolve(context.Background(), "token"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestResolveFailsClosedOnStoreTimeout(t *testing.T) {
	sessions := &stubSessionStore{
		claims: SessionClaims{UserID: 1, ExpiresAt: time.Now().Add(time.Hour)},
		delay:  200 * time.Millisecond,
	}
	r := NewResolver(sessions, &stubDirectoryStore{}, 10*time.Millisecond, nil)

	if _, err := r.Resolve(context.Background(), "token"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated on timeout, got %v", err)
	}
}

func TestResolveFailsClosedOnDirectoryError(t *testing.T) {
	sessions := &stubSessionStore{claims: SessionClaims{UserID: 1, ExpiresAt: time.Now().Add(time.Hour)}}
	directory := &stubDirectoryStore{err: errors.New("connection reset")}
	r := NewResolver(sessions, directory, time.Second, nil)

	if _, err := r.Resolve(context.Background(), "token"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated on directory failure, got %v", err)
	}
}
