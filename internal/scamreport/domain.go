// Package scamreport implements the scam report lifecycle. Members submit
// reports, an admin triages them into review, and the chairman adjudicates
// each report as verified or rejected.
package scamreport

import (
	"errors"
	"strings"
	"time"

	"github.com/meridian-club/meridian/internal/authz"
	"github.com/meridian-club/meridian/internal/lifecycle"
)

// Kind is the resource kind for scam reports.
const Kind = "scam_report"

const (
	StateSubmitted lifecycle.State = "submitted"
	StatePending   lifecycle.State = "pending"
	StateVerified  lifecycle.State = "verified"
	StateRejected  lifecycle.State = "rejected"
)

// ErrReasonRequired rejects an adjudication without a non-empty reason.
var ErrReasonRequired = errors.New("scamreport: rejection reason required")

func requireReason(payload map[string]any) error {
	reason, _ := payload["reason"].(string)
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}
	return nil
}

func decisionFields(payload map[string]any, actor authz.Principal, now time.Time) map[string]any {
	fields := map[string]any{"decided_at": now, "decided_by": actor.UserID}
	if reason, _ := payload["reason"].(string); strings.TrimSpace(reason) != "" {
		fields["reason"] = strings.TrimSpace(reason)
	}
	return fields
}

// Machine declares the scam report transition table. Adjudication is
// chairman gated; triage is open to the administrative ranks.
var Machine = lifecycle.Machine{
	Kind: Kind,
	Transitions: map[authz.Action]lifecycle.Transition{
		authz.ActionScamReportTriage: {
			From:  []lifecycle.State{StateSubmitted},
			To:    StatePending,
			Guard: authz.ActionScamReportTriage,
		},
		authz.ActionScamReportVerify: {
			From:         []lifecycle.State{StatePending},
			To:           StateVerified,
			Guard:        authz.ActionScamReportVerify,
			RequireAudit: true,
			Fields:       decisionFields,
		},
		authz.ActionScamReportReject: {
			From:         []lifecycle.State{StatePending},
			To:           StateRejected,
			Guard:        authz.ActionScamReportReject,
			RequireAudit: true,
			Validate:     requireReason,
			Fields:       decisionFields,
		},
	},
}
