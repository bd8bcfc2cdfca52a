package audit

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-club/meridian/internal/platform/httpx"
)

// Entry is a single append-only audit record. Entries are never mutated or
// deleted after the append.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	ActorID     int64     `json:"actor_id"`
	Action      string    `json:"action"`
	Kind        string    `json:"kind"`
	ResourceID  string    `json:"resource_id"`
	BeforeState string    `json:"before_state"`
	AfterState  string    `json:"after_state"`
	Reason      string    `json:"reason,omitempty"`
	// Override marks a super_admin safety bypass of a chairman gate.
	Override bool `json:"override,omitempty"`
	// Denied marks a forensic record of a rejected attempt; no state changed.
	Denied bool      `json:"denied,omitempty"`
	At     time.Time `json:"at"`
}

// Validate checks the fields required before an append.
func (e Entry) Validate() error {
	if e.ActorID == 0 {
		return errors.New("audit: actor required")
	}
	if e.Action == "" {
		return errors.New("audit: action required")
	}
	if e.Kind == "" || e.ResourceID == "" {
		return errors.New("audit: kind and resource id required")
	}
	return nil
}

// ErrStorageUnavailable indicates the audit store rejected the append.
// Callers surface it as a warning distinct from the primary operation.
// The canonical value lives in httpx to avoid an import cycle.
var ErrStorageUnavailable = httpx.ErrStorageUnavailable
