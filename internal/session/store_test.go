package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/meridian-club/meridian/internal/authz"
)

func testStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, time.Hour), mr
}

func TestCreateAndValidate(t *testing.T) {
	store, _ := testStore(t)
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	store.WithNow(func() time.Time { return now })

	token, expiresAt, err := store.Create(context.Background(), 42)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}
	if !expiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", expiresAt)
	}

	claims, err := store.Validate(context.Background(), token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 || !claims.ExpiresAt.Equal(expiresAt) {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateUnknownToken(t *testing.T) {
	store, _ := testStore(t)
	if _, err := store.Validate(context.Background(), "nope"); !errors.Is(err, authz.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestValidateMalformedPayload(t *testing.T) {
	store, mr := testStore(t)
	mr.Set("session:bad", "{not json")
	if _, err := store.Validate(context.Background(), "bad"); !errors.Is(err, authz.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestValidateExpiredTokenIsDeleted(t *testing.T) {
	store, mr := testStore(t)
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	store.WithNow(func() time.Time { return now })

	token, _, err := store.Create(context.Background(), 7)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	store.WithNow(func() time.Time { return now.Add(2 * time.Hour) })

	if _, err := store.Validate(context.Background(), token); !errors.Is(err, authz.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if mr.Exists("session:" + token) {
		t.Fatalf("expired token should be deleted")
	}
}

func TestRevoke(t *testing.T) {
	store, _ := testStore(t)
	token, _, err := store.Create(context.Background(), 7)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Revoke(context.Background(), token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := store.Validate(context.Background(), token); !errors.Is(err, authz.ErrUnauthenticated) {
		t.Fatalf("revoked token must not validate, got %v", err)
	}
}
