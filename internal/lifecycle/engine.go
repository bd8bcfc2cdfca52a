package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/meridian-club/meridian/internal/audit"
	"github.com/meridian-club/meridian/internal/authz"
	"github.com/meridian-club/meridian/internal/observability"
)

// Recorder is the audit sink consumed by the engine.
type Recorder interface {
	Enqueue(ctx context.Context, entry audit.Entry) error
}

// Engine runs guarded state transitions for every resource kind. It holds no
// in-process locks; correctness under concurrency comes entirely from the
// store's conditional write.
type Engine struct {
	store   Store
	audit   Recorder
	metrics *observability.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewEngine constructs an Engine.
func NewEngine(store Store, recorder Recorder, metrics *observability.Metrics, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:   store,
		audit:   recorder,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (e *Engine) WithNow(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

// Store exposes the underlying store for services that create resources.
func (e *Engine) Store() Store {
	return e.store
}

// Transition applies one guarded state change. Order is fixed: load current
// state, check the source state, evaluate the guard, validate the payload,
// then one conditional write. A deny short-circuits with no state mutation;
// only a forensic attempt record is queued.
func (e *Engine) Transition(ctx context.Context, m Machine, id string, action authz.Action, actor authz.Principal, payload map[string]any) (Record, error) {
	t, ok := m.transitionFor(action)
	if !ok {
		return Record{}, fmt.Errorf("%w: %s does not define %s", ErrInvalidTransition, m.Kind, action)
	}

	rec, err := e.store.Read(ctx, m.Kind, id)
	if err != nil {
		return Record{}, err
	}
	if !t.allowsFrom(rec.State) {
		e.observe(m.Kind, action, "invalid")
		return Record{}, fmt.Errorf("%w: %s cannot %s from %s", ErrInvalidTransition, m.Kind, action, rec.State)
	}
	if t.Check != nil {
		if err := t.Check(rec); err != nil {
			e.observe(m.Kind, action, "invalid")
			return Record{}, err
		}
	}

	dec := authz.Evaluate(actor, action, nil)
	if !dec.Allowed {
		e.metrics.ObserveDecision(string(action), "deny")
		e.recordAttempt(ctx, m.Kind, id, action, actor, rec.State, dec)
		e.observe(m.Kind, action, "denied")
		return Record{}, authz.NewDenial(action, dec)
	}
	e.metrics.ObserveDecision(string(action), "allow")

	if t.Validate != nil {
		if err := t.Validate(payload); err != nil {
			return Record{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	now := e.now().UTC()
	target := t.To
	if target == "" {
		target = rec.State
	}
	var fields map[string]any
	if t.Fields != nil {
		fields = t.Fields(payload, actor, now)
	}

	entry := audit.Entry{
		ActorID:     actor.UserID,
		Action:      string(action),
		Kind:        m.Kind,
		ResourceID:  id,
		BeforeState: string(rec.State),
		AfterState:  string(target),
		Reason:      reasonFromPayload(payload),
		Override:    dec.Override,
		At:          now,
	}
	if dec.Override {
		e.logger.Info("super admin override",
			slog.String("kind", m.Kind),
			slog.String("action", string(action)),
			slog.String("resource_id", id),
			slog.Int64("actor_id", actor.UserID))
	}

	w := Write{
		NewState:       target,
		PreviousState:  rec.State,
		StateEnteredAt: now,
		StateEnteredBy: actor.UserID,
		Fields:         fields,
	}

	var updated Record
	if t.RequireAudit {
		updated, err = e.store.ConditionalWriteAudited(ctx, m.Kind, id, rec.Version, w, entry)
	} else {
		updated, err = e.store.ConditionalWrite(ctx, m.Kind, id, rec.Version, w)
	}
	if err != nil {
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound) {
			e.observe(m.Kind, action, "conflict")
		}
		return Record{}, err
	}

	if !t.RequireAudit && e.audit != nil {
		if err := e.audit.Enqueue(ctx, entry); err != nil {
			// Best-effort path: the transition stands, the gap is surfaced.
			e.logger.Warn("audit enqueue failed",
				slog.String("kind", m.Kind),
				slog.String("action", string(action)),
				slog.String("resource_id", id),
				slog.Any("error", err))
		}
	}

	e.observe(m.Kind, action, "ok")
	return updated, nil
}

func (e *Engine) recordAttempt(ctx context.Context, kind, id string, action authz.Action, actor authz.Principal, state State, dec authz.Decision) {
	if e.audit == nil {
		return
	}
	entry := audit.Entry{
		ActorID:     actor.UserID,
		Action:      string(action),
		Kind:        kind,
		ResourceID:  id,
		BeforeState: string(state),
		AfterState:  string(state),
		Reason:      dec.Reason,
		Denied:      true,
		At:          e.now().UTC(),
	}
	if err := e.audit.Enqueue(ctx, entry); err != nil {
		e.logger.Warn("audit attempt record failed", slog.Any("error", err))
	}
}

func (e *Engine) observe(kind string, action authz.Action, outcome string) {
	if e.metrics != nil {
		e.metrics.ObserveTransition(kind, string(action), outcome)
	}
}

func reasonFromPayload(payload map[string]any) string {
	if payload == nil {
		return ""
	}
	for _, key := range []string{"reason", "rejection_reason"} {
		if v, ok := payload[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
