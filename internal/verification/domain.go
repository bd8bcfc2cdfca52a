// Package verification implements the identity verification lifecycle.
// Submitted documents sit in PENDING until the chairman approves or rejects
// them; a rejection always carries a reason.
package verification

import (
	"errors"
	"strings"
	"time"

	"github.com/meridian-club/meridian/internal/authz"
	"github.com/meridian-club/meridian/internal/lifecycle"
)

// Kind is the resource kind for identity verifications.
const Kind = "identity_verification"

const (
	StatePending  lifecycle.State = "PENDING"
	StateApproved lifecycle.State = "APPROVED"
	StateRejected lifecycle.State = "REJECTED"
)

// ErrReasonRequired rejects a verification rejection without a reason.
var ErrReasonRequired = errors.New("verification: rejection reason required")

// Machine declares the verification transition table. Both decisions are
// chairman gated without a super_admin override, and their audit rows commit
// with the state write.
var Machine = lifecycle.Machine{
	Kind: Kind,
	Transitions: map[authz.Action]lifecycle.Transition{
		authz.ActionVerificationApprove: {
			From:         []lifecycle.State{StatePending},
			To:           StateApproved,
			Guard:        authz.ActionVerificationApprove,
			RequireAudit: true,
			Fields: func(payload map[string]any, actor authz.Principal, now time.Time) map[string]any {
				return map[string]any{"decided_at": now, "decided_by": actor.UserID}
			},
		},
		authz.ActionVerificationReject: {
			From:         []lifecycle.State{StatePending},
			To:           StateRejected,
			Guard:        authz.ActionVerificationReject,
			RequireAudit: true,
			Validate: func(payload map[string]any) error {
				reason, _ := payload["rejection_reason"].(string)
				if strings.TrimSpace(reason) == "" {
					return ErrReasonRequired
				}
				return nil
			},
			Fields: func(payload map[string]any, actor authz.Principal, now time.Time) map[string]any {
				reason, _ := payload["rejection_reason"].(string)
				return map[string]any{
					"rejection_reason": strings.TrimSpace(reason),
					"decided_at":       now,
					"decided_by":       actor.UserID,
				}
			},
		},
	},
}
