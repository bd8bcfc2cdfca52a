package authz

// Action identifies a guarded operation.
type Action string

const (
	ActionVerificationApprove Action = "verification.approve"
	ActionVerificationReject  Action = "verification.reject"

	ActionScamReportTriage Action = "scam_report.triage"
	ActionScamReportVerify Action = "scam_report.verify"
	ActionScamReportReject Action = "scam_report.reject"

	ActionJobListingCreate    Action = "job_listing.create"
	ActionJobListingUpdate    Action = "job_listing.update"
	ActionJobListingPublish   Action = "job_listing.publish"
	ActionJobListingUnpublish Action = "job_listing.unpublish"
	ActionJobListingArchive   Action = "job_listing.archive"
	ActionJobListingRestore   Action = "job_listing.restore"
	ActionJobListingClose     Action = "job_listing.close"
	ActionJobListingReopen    Action = "job_listing.reopen"

	ActionPeriodClose  Action = "period.close"
	ActionPeriodReopen Action = "period.reopen"
	ActionPeriodLock   Action = "period.lock"
	ActionPeriodUnlock Action = "period.unlock"

	ActionConversationView Action = "conversation.view"
	ActionConversationSend Action = "conversation.send"

	ActionPrizeDrawEnter Action = "prize_draw.enter"

	ActionAdminView Action = "admin.view"
	ActionAuditView Action = "audit.view"
)

// Rule declares the requirement gating an action. Gates are checked in
// priority order: chairman designation, then assignment, then role rank.
type Rule struct {
	RequireChairman bool
	// SuperAdminOverride lets a super_admin pass a chairman gate for safety
	// actions. The evaluator marks the decision so the bypass is audited.
	SuperAdminOverride bool
	RequireAssignment  bool
	AllowedRoles       []Role
}

// rules is the single source of truth for action guards. Every guarded call
// site consumes this table; no endpoint re-derives its own chairman check.
var rules = map[Action]Rule{
	ActionVerificationApprove: {RequireChairman: true},
	ActionVerificationReject:  {RequireChairman: true},

	ActionScamReportTriage: {AllowedRoles: []Role{RoleSuperAdmin, RoleManagerAdmin, RoleWorkerAdmin}},
	ActionScamReportVerify: {RequireChairman: true},
	ActionScamReportReject: {RequireChairman: true},

	ActionJobListingCreate:    {RequireChairman: true},
	ActionJobListingUpdate:    {RequireChairman: true},
	ActionJobListingPublish:   {RequireChairman: true},
	ActionJobListingUnpublish: {RequireChairman: true},
	ActionJobListingArchive:   {RequireChairman: true},
	ActionJobListingRestore:   {RequireChairman: true},
	ActionJobListingClose:     {RequireChairman: true},
	ActionJobListingReopen:    {RequireChairman: true},

	ActionPeriodClose:  {RequireChairman: true, SuperAdminOverride: true},
	ActionPeriodReopen: {RequireChairman: true},
	ActionPeriodLock:   {RequireChairman: true},
	ActionPeriodUnlock: {RequireChairman: true, SuperAdminOverride: true},

	ActionConversationView: {RequireAssignment: true},
	ActionConversationSend: {RequireAssignment: true},

	ActionPrizeDrawEnter: {AllowedRoles: []Role{RoleMember}},

	ActionAdminView: {AllowedRoles: []Role{RoleSuperAdmin, RoleManagerAdmin, RoleWorkerAdmin}},
	ActionAuditView: {AllowedRoles: []Role{RoleSuperAdmin, RoleManagerAdmin, RoleWorkerAdmin}},
}

// RuleFor returns the declared rule for an action.
func RuleFor(action Action) (Rule, bool) {
	rule, ok := rules[action]
	return rule, ok
}
