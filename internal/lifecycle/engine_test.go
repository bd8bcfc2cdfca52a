package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/meridian-club/meridian/internal/audit"
	"github.com/meridian-club/meridian/internal/authz"
)

type captureRecorder struct {
	mu      sync.Mutex
	entries []audit.Entry
	err     error
}

func (c *captureRecorder) Enqueue(ctx context.Context, entry audit.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.entries = append(c.entries, entry)
	return nil
}

func (c *captureRecorder) all() []audit.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]audit.Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

const testKind = "test_resource"

var testMachine = Machine{
	Kind: testKind,
	Transitions: map[authz.Action]Transition{
		authz.ActionPeriodClose: {
			From:         []State{"open"},
			To:           "closed",
			Guard:        authz.ActionPeriodClose,
			RequireAudit: true,
		},
		authz.ActionPeriodReopen: {
			From:  []State{"closed"},
			To:    "open",
			Guard: authz.ActionPeriodReopen,
		},
		authz.ActionVerificationReject: {
			From:         []State{"open"},
			To:           "closed",
			Guard:        authz.ActionVerificationReject,
			RequireAudit: true,
			Validate: func(payload map[string]any) error {
				if v, _ := payload["rejection_reason"].(string); v == "" {
					return errors.New("rejection reason required")
				}
				return nil
			},
		},
	},
}

func chairman() authz.Principal {
	return authz.Principal{UserID: 10, BaseRole: authz.RoleManagerAdmin, EmployeeRoleCategory: authz.ChairmanCategory}
}

func seededEngine(t *testing.T) (*Engine, *MemoryStore, *captureRecorder) {
	t.Helper()
	store := NewMemoryStore()
	store.Seed(Record{ID: "r1", Kind: testKind, State: "open", Version: 1})
	rec := &captureRecorder{}
	engine := NewEngine(store, rec, nil, nil)
	engine.WithNow(func() time.Time { return time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC) })
	return engine, store, rec
}

func TestTransitionHappyPath(t *testing.T) {
	engine, store, _ := seededEngine(t)

	updated, err := engine.Transition(context.Background(), testMachine, "r1", authz.ActionPeriodClose, chairman(), nil)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if updated.State != "closed" || updated.PreviousState != "open" {
		t.Fatalf("unexpected record: %+v", updated)
	}
	if updated.Version != 2 {
		t.Fatalf("expected version 2, got %d", updated.Version)
	}
	if len(store.Entries) != 1 {
		t.Fatalf("expected one audited entry, got %d", len(store.Entries))
	}
	entry := store.Entries[0]
	if entry.BeforeState != "open" || entry.AfterState != "closed" || entry.Denied {
		t.Fatalf("unexpected audit entry: %+v", entry)
	}
}

func TestTransitionUnknownResource(t *testing.T) {
	engine, _, _ := seededEngine(t)
	_, err := engine.Transition(context.Background(), testMachine, "missing", authz.ActionPeriodClose, chairman(), nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTransitionInvalidFromState(t *testing.T) {
	engine, store, _ := seededEngine(t)

	if _, err := engine.Transition(context.Background(), testMachine, "r1", authz.ActionPeriodClose, chairman(), nil); err != nil {
		t.Fatalf("first close: %v", err)
	}
	_, err := engine.Transition(context.Background(), testMachine, "r1", authz.ActionPeriodClose, chairman(), nil)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on second close, got %v", err)
	}
	rec, _ := store.Read(context.Background(), testKind, "r1")
	if rec.Version != 2 {
		t.Fatalf("second close must not mutate, version %d", rec.Version)
	}
}

func TestTransitionDenyShortCircuits(t *testing.T) {
	engine, store, rec := seededEngine(t)
	member := authz.Principal{UserID: 20, BaseRole: authz.RoleMember}

	_, err := engine.Transition(context.Background(), testMachine, "r1", authz.ActionPeriodClose, member, nil)
	var denial *authz.Denial
	if !errors.As(err, &denial) {
		t.Fatalf("expected Denial, got %v", err)
	}
	if denial.Violation != authz.ViolationInsufficientRole {
		t.Fatalf("expected INSUFFICIENT_ROLE, got %s", denial.Violation)
	}

	got, _ := store.Read(context.Background(), testKind, "r1")
	if got.State != "open" || got.Version != 1 {
		t.Fatalf("deny must not mutate, got %+v", got)
	}

	entries := rec.all()
	if len(entries) != 1 {
		t.Fatalf("expected one denied attempt record, got %d", len(entries))
	}
	if !entries[0].Denied || entries[0].BeforeState != "open" || entries[0].AfterState != "open" {
		t.Fatalf("unexpected attempt record: %+v", entries[0])
	}
}

func TestTransitionValidationBeforeMutation(t *testing.T) {
	engine, store, _ := seededEngine(t)

	_, err := engine.Transition(context.Background(), testMachine, "r1", authz.ActionVerificationReject, chairman(), map[string]any{})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	got, _ := store.Read(context.Background(), testKind, "r1")
	if got.State != "open" || got.Version != 1 {
		t.Fatalf("failed validation must not mutate, got %+v", got)
	}
	if len(store.Entries) != 0 {
		t.Fatalf("failed validation must not audit, got %d entries", len(store.Entries))
	}
}

func TestTransitionAuditRollback(t *testing.T) {
	engine, store, _ := seededEngine(t)
	store.AppendErr = fmt.Errorf("audit insert: %w", errors.New("disk full"))

	if _, err := engine.Transition(context.Background(), testMachine, "r1", authz.ActionPeriodClose, chairman(), nil); err == nil {
		t.Fatalf("expected error when audit append fails")
	}
	got, _ := store.Read(context.Background(), testKind, "r1")
	if got.State != "open" || got.Version != 1 {
		t.Fatalf("failed audit append must roll the transition back, got %+v", got)
	}
}

func TestTransitionBestEffortAuditFailureKeepsWrite(t *testing.T) {
	store := NewMemoryStore()
	store.Seed(Record{ID: "r1", Kind: testKind, State: "closed", Version: 1})
	rec := &captureRecorder{err: errors.New("queue down")}
	engine := NewEngine(store, rec, nil, nil)

	updated, err := engine.Transition(context.Background(), testMachine, "r1", authz.ActionPeriodReopen, chairman(), nil)
	if err != nil {
		t.Fatalf("transition should survive best-effort audit failure: %v", err)
	}
	if updated.State != "open" {
		t.Fatalf("unexpected state %s", updated.State)
	}
}

func TestTransitionConcurrentWritersOneWins(t *testing.T) {
	engine, store, _ := seededEngine(t)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Transition(context.Background(), testMachine, "r1", authz.ActionPeriodClose, chairman(), nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, failed int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		if !errors.Is(err, ErrConflict) && !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("unexpected error: %v", err)
		}
		failed++
	}
	if ok != 1 {
		t.Fatalf("exactly one writer must win, got %d", ok)
	}
	if failed != writers-1 {
		t.Fatalf("expected %d losers, got %d", writers-1, failed)
	}
	if store.Writes[key(testKind, "r1")] != 1 {
		t.Fatalf("expected exactly one committed write, got %d", store.Writes[key(testKind, "r1")])
	}
}

func TestTransitionUndeclaredAction(t *testing.T) {
	engine, _, _ := seededEngine(t)
	_, err := engine.Transition(context.Background(), testMachine, "r1", authz.ActionJobListingArchive, chairman(), nil)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for undeclared action, got %v", err)
	}
}
