// Package joblisting implements the job listing lifecycle. A listing has an
// open/closed status plus two independent flags, published and archived.
// Archiving always forces published=false in the same conditional write so no
// observable state is both archived and published.
package joblisting

import (
	"fmt"
	"time"

	"github.com/meridian-club/meridian/internal/authz"
	"github.com/meridian-club/meridian/internal/lifecycle"
)

// Kind is the resource kind for job listings.
const Kind = "job_listing"

const (
	StateOpen   lifecycle.State = "open"
	StateClosed lifecycle.State = "closed"
)

func isArchived(rec lifecycle.Record) bool {
	v, ok := rec.Fields["archived_at"]
	return ok && v != nil
}

var anyStatus = []lifecycle.State{StateOpen, StateClosed}

// Machine declares the listing transition table. Flag flips keep the current
// status (empty To); only close/reopen move it.
var Machine = lifecycle.Machine{
	Kind: Kind,
	Transitions: map[authz.Action]lifecycle.Transition{
		authz.ActionJobListingPublish: {
			From:  []lifecycle.State{StateOpen},
			Guard: authz.ActionJobListingPublish,
			Check: func(rec lifecycle.Record) error {
				if isArchived(rec) {
					return fmt.Errorf("%w: archived listing cannot be published", lifecycle.ErrInvalidTransition)
				}
				return nil
			},
			Fields: func(payload map[string]any, actor authz.Principal, now time.Time) map[string]any {
				return map[string]any{"published": true, "published_at": now}
			},
		},
		authz.ActionJobListingUnpublish: {
			From:  anyStatus,
			Guard: authz.ActionJobListingUnpublish,
			Fields: func(payload map[string]any, actor authz.Principal, now time.Time) map[string]any {
				return map[string]any{"published": false}
			},
		},
		authz.ActionJobListingArchive: {
			From:  anyStatus,
			Guard: authz.ActionJobListingArchive,
			Check: func(rec lifecycle.Record) error {
				if isArchived(rec) {
					return fmt.Errorf("%w: listing already archived", lifecycle.ErrInvalidTransition)
				}
				return nil
			},
			// One combined write: archived and unpublished together.
			Fields: func(payload map[string]any, actor authz.Principal, now time.Time) map[string]any {
				return map[string]any{"archived_at": now, "published": false}
			},
		},
		authz.ActionJobListingRestore: {
			From:  anyStatus,
			Guard: authz.ActionJobListingRestore,
			Check: func(rec lifecycle.Record) error {
				if !isArchived(rec) {
					return fmt.Errorf("%w: listing is not archived", lifecycle.ErrInvalidTransition)
				}
				return nil
			},
			Fields: func(payload map[string]any, actor authz.Principal, now time.Time) map[string]any {
				return map[string]any{"archived_at": nil}
			},
		},
		authz.ActionJobListingClose: {
			From:  []lifecycle.State{StateOpen},
			To:    StateClosed,
			Guard: authz.ActionJobListingClose,
		},
		authz.ActionJobListingReopen: {
			From:  []lifecycle.State{StateClosed},
			To:    StateOpen,
			Guard: authz.ActionJobListingReopen,
			Check: func(rec lifecycle.Record) error {
				if isArchived(rec) {
					return fmt.Errorf("%w: archived listing cannot be reopened", lifecycle.ErrInvalidTransition)
				}
				return nil
			},
		},
		authz.ActionJobListingUpdate: {
			From:  anyStatus,
			Guard: authz.ActionJobListingUpdate,
			Fields: func(payload map[string]any, actor authz.Principal, now time.Time) map[string]any {
				fields := map[string]any{"updated_by": actor.UserID}
				for _, key := range []string{"title", "description", "company"} {
					if v, ok := payload[key].(string); ok && v != "" {
						fields[key] = v
					}
				}
				return fields
			},
		},
	},
}
