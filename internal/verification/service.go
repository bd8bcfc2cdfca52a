package verification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-club/meridian/internal/authz"
	"github.com/meridian-club/meridian/internal/lifecycle"
)

// Service exposes verification operations.
type Service struct {
	engine *lifecycle.Engine
	now    func() time.Time
}

// NewService constructs a Service.
func NewService(engine *lifecycle.Engine) *Service {
	return &Service{engine: engine, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Submit files a new verification request for the member. The record starts
// in PENDING.
func (s *Service) Submit(ctx context.Context, actor authz.Principal, documentRef string) (lifecycle.Record, error) {
	now := s.now().UTC()
	return s.engine.Store().Create(ctx, lifecycle.Record{
		ID:             uuid.NewString(),
		Kind:           Kind,
		State:          StatePending,
		StateEnteredAt: now,
		StateEnteredBy: actor.UserID,
		Fields: map[string]any{
			"member_id":    actor.UserID,
			"document_ref": documentRef,
			"submitted_at": now,
		},
	})
}

// Approve marks a pending verification as approved.
func (s *Service) Approve(ctx context.Context, id string, actor authz.Principal) (lifecycle.Record, error) {
	return s.engine.Transition(ctx, Machine, id, authz.ActionVerificationApprove, actor, nil)
}

// Reject marks a pending verification as rejected with the given reason. The
// reason is validated before any state mutation or audit write.
func (s *Service) Reject(ctx context.Context, id string, actor authz.Principal, reason string) (lifecycle.Record, error) {
	return s.engine.Transition(ctx, Machine, id, authz.ActionVerificationReject, actor, map[string]any{
		"rejection_reason": reason,
	})
}

// Get returns the current verification record.
func (s *Service) Get(ctx context.Context, id string) (lifecycle.Record, error) {
	return s.engine.Store().Read(ctx, Kind, id)
}
