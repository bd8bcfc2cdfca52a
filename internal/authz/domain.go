package authz

import (
	"errors"
	"fmt"
	"time"
)

// Role is the base role attached to a user account.
type Role string

const (
	RoleChairman     Role = "chairman"
	RoleSuperAdmin   Role = "super_admin"
	RoleManagerAdmin Role = "manager_admin"
	RoleWorkerAdmin  Role = "worker_admin"
	RoleAgent        Role = "agent"
	RoleMember       Role = "member"
	RoleAnonymous    Role = "anonymous"
)

// ChairmanCategory is the employee designation that unlocks chairman-gated
// actions. At most one live designation exists at a time; the employee
// directory enforces that.
const ChairmanCategory = "chairman"

var adminRanks = map[Role]int{
	RoleSuperAdmin:   3,
	RoleManagerAdmin: 2,
	RoleWorkerAdmin:  1,
}

// AdminRank returns the administrative rank of the role, 0 for non-admins.
func (r Role) AdminRank() int {
	return adminRanks[r]
}

// IsAdmin reports whether the role belongs to the administrative hierarchy.
func (r Role) IsAdmin() bool {
	return adminRanks[r] > 0
}

// Principal describes the authenticated actor for a single request. It is
// built fresh by the Resolver on every call and never persisted. BaseRole and
// EmployeeRoleCategory are independent facts: a user may hold an
// administrative base role and separately carry the chairman designation.
type Principal struct {
	UserID               int64
	BaseRole             Role
	EmployeeRoleCategory string
	SessionValidUntil    time.Time
}

// IsChairman reports whether the principal carries the chairman designation.
// The designation is authoritative for chairman-gated actions; a chairman
// base role without the designation does not pass the gate.
func (p Principal) IsChairman() bool {
	return p.EmployeeRoleCategory == ChairmanCategory
}

// Violation classifies why an authorization check denied.
type Violation string

const (
	// ViolationInsufficientRole marks a rank or designation failure.
	ViolationInsufficientRole Violation = "INSUFFICIENT_ROLE"
	// ViolationNotAssigned marks a missing agent-member assignment.
	ViolationNotAssigned Violation = "NOT_ASSIGNED"
)

// Decision is the outcome of evaluating a principal against an action.
type Decision struct {
	Allowed   bool
	Violation Violation
	Reason    string
	// Override is set when a super_admin bypassed a chairman-only gate
	// through the named safety override. Callers must audit it.
	Override bool
}

// ErrUnauthenticated indicates a missing, malformed, or expired session.
// Session checks always fail closed to this error.
var ErrUnauthenticated = errors.New("authz: unauthenticated")

// Denial is the typed error returned when an authorization check rejects an
// action. Callers map the violation to a precise response without leaking
// which resource-state gate failed.
type Denial struct {
	Action    Action
	Violation Violation
	Reason    string
}

func (d *Denial) Error() string {
	return fmt.Sprintf("authz: %s denied: %s", d.Action, d.Reason)
}

// NewDenial builds a Denial from an evaluation outcome.
func NewDenial(action Action, dec Decision) *Denial {
	return &Denial{Action: action, Violation: dec.Violation, Reason: dec.Reason}
}
