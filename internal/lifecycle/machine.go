package lifecycle

import (
	"time"

	"github.com/meridian-club/meridian/internal/authz"
)

// State is a resource lifecycle state.
type State string

// Transition declares one action edge of a machine.
type Transition struct {
	// From lists the states the action is valid in.
	From []State
	// To is the target state. Empty keeps the current state; used by actions
	// that only flip resource fields.
	To State
	// Guard is the authorization action evaluated before any mutation.
	Guard authz.Action
	// RequireAudit makes the audit row commit atomically with the state
	// write; a failed audit append rolls the transition back.
	RequireAudit bool
	// Validate rejects malformed payloads before any mutation or audit.
	Validate func(payload map[string]any) error
	// Check rejects transitions based on the current record, beyond the
	// plain from-state match.
	Check func(rec Record) error
	// Fields produces the resource fields written together with the state
	// change in one conditional write.
	Fields func(payload map[string]any, actor authz.Principal, now time.Time) map[string]any
}

func (t Transition) allowsFrom(s State) bool {
	for _, from := range t.From {
		if from == s {
			return true
		}
	}
	return false
}

// Machine is the declared transition table for one resource kind.
type Machine struct {
	Kind        string
	Transitions map[authz.Action]Transition
}

func (m Machine) transitionFor(action authz.Action) (Transition, bool) {
	t, ok := m.Transitions[action]
	return t, ok
}
