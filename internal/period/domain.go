// Package period implements the financial period lifecycle: periods close at
// month end, closed periods can be locked against further adjustment, and a
// locked period can be unlocked back to closed.
package period

import (
	"github.com/meridian-club/meridian/internal/authz"
	"github.com/meridian-club/meridian/internal/lifecycle"
)

// Kind is the resource kind for financial periods.
const Kind = "financial_period"

const (
	StateOpen   lifecycle.State = "open"
	StateClosed lifecycle.State = "closed"
	StateLocked lifecycle.State = "locked"
)

// Machine declares the period transition table. Close and unlock carry the
// super_admin safety override and commit their audit row with the state
// write: both are irreversible from an accounting standpoint.
var Machine = lifecycle.Machine{
	Kind: Kind,
	Transitions: map[authz.Action]lifecycle.Transition{
		authz.ActionPeriodClose: {
			From:         []lifecycle.State{StateOpen},
			To:           StateClosed,
			Guard:        authz.ActionPeriodClose,
			RequireAudit: true,
		},
		authz.ActionPeriodReopen: {
			From:  []lifecycle.State{StateClosed},
			To:    StateOpen,
			Guard: authz.ActionPeriodReopen,
		},
		authz.ActionPeriodLock: {
			From:  []lifecycle.State{StateClosed},
			To:    StateLocked,
			Guard: authz.ActionPeriodLock,
		},
		authz.ActionPeriodUnlock: {
			From:         []lifecycle.State{StateLocked},
			To:           StateClosed,
			Guard:        authz.ActionPeriodUnlock,
			RequireAudit: true,
		},
	},
}
