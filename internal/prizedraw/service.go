package prizedraw

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/meridian-club/meridian/internal/audit"
	"github.com/meridian-club/meridian/internal/authz"
)

// Recorder is the audit sink for new entries.
type Recorder interface {
	Enqueue(ctx context.Context, entry audit.Entry) error
}

// Service exposes prize draw entry.
type Service struct {
	repo   Repository
	audit  Recorder
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, recorder Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: recorder, logger: logger, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// EnsureEntry enters the acting member into the draw. The call is idempotent:
// when an entry already exists it is returned unchanged, constraint violation
// included, so two concurrent calls report the same EnteredAt.
func (s *Service) EnsureEntry(ctx context.Context, actor authz.Principal, drawID int64) (Entry, error) {
	dec := authz.Evaluate(actor, authz.ActionPrizeDrawEnter, nil)
	if !dec.Allowed {
		return Entry{}, authz.NewDenial(authz.ActionPrizeDrawEnter, dec)
	}

	entry, err := s.repo.Insert(ctx, actor.UserID, drawID, s.now().UTC())
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return s.repo.Get(ctx, actor.UserID, drawID)
		}
		return Entry{}, err
	}

	if s.audit != nil {
		auditEntry := audit.Entry{
			ActorID:     actor.UserID,
			Action:      string(authz.ActionPrizeDrawEnter),
			Kind:        "prize_draw_entry",
			ResourceID:  fmt.Sprintf("%d/%d", actor.UserID, drawID),
			BeforeState: "none",
			AfterState:  "entered",
			At:          entry.EnteredAt,
		}
		if err := s.audit.Enqueue(ctx, auditEntry); err != nil {
			s.logger.Warn("audit enqueue failed", slog.Any("error", err))
		}
	}
	return entry, nil
}

// Get returns the entry for the acting member, if any.
func (s *Service) Get(ctx context.Context, actor authz.Principal, drawID int64) (Entry, error) {
	return s.repo.Get(ctx, actor.UserID, drawID)
}
