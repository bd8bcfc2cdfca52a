package scamreport

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-club/meridian/internal/authz"
	"github.com/meridian-club/meridian/internal/lifecycle"
)

// Service exposes scam report operations.
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

// Submit files a new scam report from the acting member.
func (s *Service) Submit(ctx context.Context, actor authz.Principal, accusedRef, details string) (lifecycle.Record, error) {
	if strings.TrimSpace(details) == "" {
		return lifecycle.Record{}, errors.New("scamreport: details required")
	}
	now := s.now().UTC()
	return s.engine.Store().Create(ctx, lifecycle.Record{
		ID:             uuid.NewString(),
		Kind:           Kind,
		State:          StateSubmitted,
		StateEnteredAt: now,
		StateEnteredBy: actor.UserID,
		Fields: map[string]any{
			"reporter_id":  actor.UserID,
			"accused_ref":  accusedRef,
			"details":      details,
			"submitted_at": now,
		},
	})
}

// Triage moves a submitted report into review.
func (s *Service) Triage(ctx context.Context, id string, actor authz.Principal) (lifecycle.Record, error) {
	return s.engine.Transition(ctx, Machine, id, authz.ActionScamReportTriage, actor, nil)
}

// Verify adjudicates a pending report as a confirmed scam.
func (s *Service) Verify(ctx context.Context, id string, actor authz.Principal) (lifecycle.Record, error) {
	return s.engine.Transition(ctx, Machine, id, authz.ActionScamReportVerify, actor, nil)
}

// Reject adjudicates a pending report as unfounded. The reason is validated
// before any state mutation or audit write.
func (s *Service) Reject(ctx context.Context, id string, actor authz.Principal, reason string) (lifecycle.Record, error) {
	return s.engine.Transition(ctx, Machine, id, authz.ActionScamReportReject, actor, map[string]any{
		"reason": reason,
	})
}

// Get returns the current report record.
func (s *Service) Get(ctx context.Context, id string) (lifecycle.Record, error) {
	return s.engine.Store().Read(ctx, Kind, id)
}
