package authz

import "fmt"

// Fact carries a resource-ownership input for assignment-gated actions. It
// must be fetched from the assignment store immediately before evaluation and
// never cached across requests.
type Fact struct {
	Assigned bool
}

// Evaluate decides whether the principal may perform the action. It is a pure
// function of its inputs: no lookups, no clock, no hidden state.
func Evaluate(p Principal, action Action, fact *Fact) Decision {
	rule, ok := RuleFor(action)
	if !ok {
		return Decision{
			Violation: ViolationInsufficientRole,
			Reason:    fmt.Sprintf("unknown action %q", action),
		}
	}

	if rule.RequireChairman {
		if p.IsChairman() {
			return Decision{Allowed: true}
		}
		if rule.SuperAdminOverride && p.BaseRole == RoleSuperAdmin {
			return Decision{Allowed: true, Override: true}
		}
		return Decision{
			Violation: ViolationInsufficientRole,
			Reason:    "chairman designation required",
		}
	}

	if rule.RequireAssignment {
		if fact != nil && fact.Assigned {
			return Decision{Allowed: true}
		}
		return Decision{
			Violation: ViolationNotAssigned,
			Reason:    "no assignment between agent and member",
		}
	}

	if len(rule.AllowedRoles) > 0 {
		if p.BaseRole == RoleSuperAdmin {
			return Decision{Allowed: true}
		}
		for _, role := range rule.AllowedRoles {
			if p.BaseRole == role {
				return Decision{Allowed: true}
			}
		}
		return Decision{
			Violation: ViolationInsufficientRole,
			Reason:    fmt.Sprintf("role %s not permitted", p.BaseRole),
		}
	}

	return Decision{
		Violation: ViolationInsufficientRole,
		Reason:    "no rule grants this action",
	}
}
