package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const insertEntrySQL = `INSERT INTO audit_entries
(id, actor_id, action, kind, resource_id, before_state, after_state, reason, override, denied, at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// Recorder appends audit entries. Append writes synchronously; Enqueue defers
// the write to the background queue for fire-and-forget call sites.
type Recorder struct {
	pool   *pgxpool.Pool
	client *asynq.Client
	logger *slog.Logger
}

// NewRecorder constructs a Recorder. The asynq client may be nil, in which
// case Enqueue degrades to a synchronous append.
func NewRecorder(pool *pgxpool.Pool, client *asynq.Client, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{pool: pool, client: client, logger: logger}
}

// Append persists the entry immediately.
func (r *Recorder) Append(ctx context.Context, entry Entry) error {
	if r == nil || r.pool == nil {
		return errors.New("audit: recorder not initialised")
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	entry = withDefaults(entry)
	_, err := r.pool.Exec(ctx, insertEntrySQL,
		entry.ID, entry.ActorID, entry.Action, entry.Kind, entry.ResourceID,
		entry.BeforeState, entry.AfterState, entry.Reason, entry.Override, entry.Denied, entry.At)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// AppendTx persists the entry inside the caller's transaction. Used when an
// irreversible transition requires the audit row to commit with the state
// write.
func (r *Recorder) AppendTx(ctx context.Context, tx pgx.Tx, entry Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	entry = withDefaults(entry)
	_, err := tx.Exec(ctx, insertEntrySQL,
		entry.ID, entry.ActorID, entry.Action, entry.Kind, entry.ResourceID,
		entry.BeforeState, entry.AfterState, entry.Reason, entry.Override, entry.Denied, entry.At)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Enqueue hands the entry to the background queue. Failures are reported to
// the caller but must not fail the primary operation.
func (r *Recorder) Enqueue(ctx context.Context, entry Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	entry = withDefaults(entry)
	if r.client == nil {
		return r.Append(ctx, entry)
	}
	task, err := NewRecordTask(entry)
	if err != nil {
		return err
	}
	if _, err := r.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func withDefaults(entry Entry) Entry {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	return entry
}
