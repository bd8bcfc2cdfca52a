package lifecycle

import (
	"context"
	"time"

	"github.com/meridian-club/meridian/internal/audit"
	"github.com/meridian-club/meridian/internal/platform/httpx"
)

// The canonical error values live in httpx so its kernel error mapping does
// not import this package, which imports audit, whose handler imports httpx.
var (
	// ErrNotFound indicates the resource id is unknown.
	ErrNotFound = httpx.ErrNotFound
	// ErrConflict indicates the conditional write lost a concurrent race.
	// Callers may reload and retry once.
	ErrConflict = httpx.ErrConflict
	// ErrInvalidTransition indicates the action is not valid from the
	// resource's current state.
	ErrInvalidTransition = httpx.ErrInvalidTransition
	// ErrValidation indicates the payload failed validation before any
	// mutation occurred.
	ErrValidation = httpx.ErrValidation
)

// Record is the persisted lifecycle view of a resource.
type Record struct {
	ID             string
	Kind           string
	State          State
	PreviousState  State
	StateEnteredAt time.Time
	StateEnteredBy int64
	Version        int64
	Fields         map[string]any
}

// Store persists resource records. Writes are conditioned on the version read
// beforehand; the store is the linearization point for concurrent transitions.
type Store interface {
	Read(ctx context.Context, kind, id string) (Record, error)
	Create(ctx context.Context, rec Record) (Record, error)
	ConditionalWrite(ctx context.Context, kind, id string, expectedVersion int64, w Write) (Record, error)
	// ConditionalWriteAudited commits the state write and the audit entry
	// atomically. Either both persist or neither does.
	ConditionalWriteAudited(ctx context.Context, kind, id string, expectedVersion int64, w Write, entry audit.Entry) (Record, error)
}

// Write bundles the fields of one conditional state write.
type Write struct {
	NewState       State
	PreviousState  State
	StateEnteredAt time.Time
	StateEnteredBy int64
	Fields         map[string]any
}
