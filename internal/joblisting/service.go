package joblisting

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-club/meridian/internal/authz"
	"github.com/meridian-club/meridian/internal/lifecycle"
)

// CreateInput captures the fields of a new listing.
type CreateInput struct {
	Title       string `json:"title" validate:"required"`
	Company     string `json:"company" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// Service exposes job listing operations.
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

// Create inserts a new unpublished open listing. Creation is chairman gated
// like every other listing mutation.
func (s *Service) Create(ctx context.Context, actor authz.Principal, in CreateInput) (lifecycle.Record, error) {
	dec := authz.Evaluate(actor, authz.ActionJobListingCreate, nil)
	if !dec.Allowed {
		return lifecycle.Record{}, authz.NewDenial(authz.ActionJobListingCreate, dec)
	}
	now := s.now().UTC()
	return s.engine.Store().Create(ctx, lifecycle.Record{
		ID:             uuid.NewString(),
		Kind:           Kind,
		State:          StateOpen,
		StateEnteredAt: now,
		StateEnteredBy: actor.UserID,
		Fields: map[string]any{
			"title":       in.Title,
			"company":     in.Company,
			"description": in.Description,
			"published":   false,
			"archived_at": nil,
			"created_by":  actor.UserID,
		},
	})
}

// Update edits listing fields in place.
func (s *Service) Update(ctx context.Context, id string, actor authz.Principal, fields map[string]any) (lifecycle.Record, error) {
	return s.engine.Transition(ctx, Machine, id, authz.ActionJobListingUpdate, actor, fields)
}

// Publish makes an open, unarchived listing visible.
func (s *Service) Publish(ctx context.Context, id string, actor authz.Principal) (lifecycle.Record, error) {
	return s.engine.Transition(ctx, Machine, id, authz.ActionJobListingPublish, actor, nil)
}

// Unpublish hides a listing without archiving it.
func (s *Service) Unpublish(ctx context.Context, id string, actor authz.Principal) (lifecycle.Record, error) {
	return s.engine.Transition(ctx, Machine, id, authz.ActionJobListingUnpublish, actor, nil)
}

// Archive retires a listing. The unpublish happens in the same atomic write.
func (s *Service) Archive(ctx context.Context, id string, actor authz.Principal) (lifecycle.Record, error) {
	return s.engine.Transition(ctx, Machine, id, authz.ActionJobListingArchive, actor, nil)
}

// Restore brings an archived listing back; it stays unpublished.
func (s *Service) Restore(ctx context.Context, id string, actor authz.Principal) (lifecycle.Record, error) {
	return s.engine.Transition(ctx, Machine, id, authz.ActionJobListingRestore, actor, nil)
}

// Close stops a listing from accepting applications.
func (s *Service) Close(ctx context.Context, id string, actor authz.Principal) (lifecycle.Record, error) {
	return s.engine.Transition(ctx, Machine, id, authz.ActionJobListingClose, actor, nil)
}

// Reopen reverses a close for an unarchived listing.
func (s *Service) Reopen(ctx context.Context, id string, actor authz.Principal) (lifecycle.Record, error) {
	return s.engine.Transition(ctx, Machine, id, authz.ActionJobListingReopen, actor, nil)
}

// Get returns the current listing record.
func (s *Service) Get(ctx context.Context, id string) (lifecycle.Record, error) {
	return s.engine.Store().Read(ctx, Kind, id)
}
