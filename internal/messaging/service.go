package messaging

import (
	"context"
	"strings"
	"time"

	"github.com/meridian-club/meridian/internal/authz"
)

// AssignmentStore reports whether an agent is assigned to a member.
type AssignmentStore interface {
	IsAssigned(ctx context.Context, agentID, memberID int64) (bool, error)
}

// Service exposes conversation access, gated by fresh assignment facts.
type Service struct {
	repo        Repository
	assignments AssignmentStore
	now         func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, assignments AssignmentStore) *Service {
	return &Service{repo: repo, assignments: assignments, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// ViewConversation returns the member's conversation when the actor may see
// it. The ownership fact is fetched immediately before the check on every
// call; it is never carried over from an earlier request.
func (s *Service) ViewConversation(ctx context.Context, actor authz.Principal, memberID int64) ([]Message, error) {
	fact, err := s.ownershipFact(ctx, actor, memberID)
	if err != nil {
		return nil, err
	}
	dec := authz.Evaluate(actor, authz.ActionConversationView, fact)
	if !dec.Allowed {
		return nil, authz.NewDenial(authz.ActionConversationView, dec)
	}
	return s.repo.ListMessages(ctx, memberID)
}

// SendMessage appends a message to the member's conversation under the same
// assignment gate as viewing.
func (s *Service) SendMessage(ctx context.Context, actor authz.Principal, memberID int64, body string) (Message, error) {
	if strings.TrimSpace(body) == "" {
		return Message{}, ErrEmptyBody
	}
	fact, err := s.ownershipFact(ctx, actor, memberID)
	if err != nil {
		return Message{}, err
	}
	dec := authz.Evaluate(actor, authz.ActionConversationSend, fact)
	if !dec.Allowed {
		return Message{}, authz.NewDenial(authz.ActionConversationSend, dec)
	}
	return s.repo.InsertMessage(ctx, memberID, actor.UserID, body, s.now())
}

func (s *Service) ownershipFact(ctx context.Context, actor authz.Principal, memberID int64) (*authz.Fact, error) {
	// A member owns their own conversation.
	if actor.BaseRole == authz.RoleMember && actor.UserID == memberID {
		return &authz.Fact{Assigned: true}, nil
	}
	if actor.BaseRole == authz.RoleAgent {
		assigned, err := s.assignments.IsAssigned(ctx, actor.UserID, memberID)
		if err != nil {
			return nil, err
		}
		return &authz.Fact{Assigned: assigned}, nil
	}
	return &authz.Fact{}, nil
}
