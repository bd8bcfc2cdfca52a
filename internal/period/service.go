package period

import (
	"context"

	"github.com/meridian-club/meridian/internal/authz"
	"github.com/meridian-club/meridian/internal/lifecycle"
)

// Service exposes period transitions to callers.
type Service struct {
	engine *lifecycle.Engine
}

// NewService constructs a Service.
func NewService(engine *lifecycle.Engine) *Service {
	return &Service{engine: engine}
}

// Close moves an open period to closed. Re-closing a closed period is an
// error, not a no-op.
func (s *Service) Close(ctx context.Context, periodID string, actor authz.Principal) (lifecycle.Record, error) {
	return s.engine.Transition(ctx, Machine, periodID, authz.ActionPeriodClose, actor, nil)
}

// Reopen moves a closed period back to open.
func (s *Service) Reopen(ctx context.Context, periodID string, actor authz.Principal) (lifecycle.Record, error) {
	return s.engine.Transition(ctx, Machine, periodID, authz.ActionPeriodReopen, actor, nil)
}

// Lock seals a closed period against adjustment.
func (s *Service) Lock(ctx context.Context, periodID string, actor authz.Principal) (lifecycle.Record, error) {
	return s.engine.Transition(ctx, Machine, periodID, authz.ActionPeriodLock, actor, nil)
}

// Unlock moves a locked period back to closed.
func (s *Service) Unlock(ctx context.Context, periodID string, actor authz.Principal) (lifecycle.Record, error) {
	return s.engine.Transition(ctx, Machine, periodID, authz.ActionPeriodUnlock, actor, nil)
}

// Get returns the current period record.
func (s *Service) Get(ctx context.Context, periodID string) (lifecycle.Record, error) {
	return s.engine.Store().Read(ctx, Kind, periodID)
}
