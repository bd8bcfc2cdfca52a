package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-club/meridian/internal/audit"
	"github.com/meridian-club/meridian/internal/platform/db"
)

// PGStore persists resource records in the resources table. Every state write
// is a single UPDATE conditioned on the version read beforehand.
type PGStore struct {
	pool     *pgxpool.Pool
	recorder *audit.Recorder
}

// NewPGStore constructs a PGStore. The recorder is used for transactional
// audit appends; it may be nil when no transition requires them.
func NewPGStore(pool *pgxpool.Pool, recorder *audit.Recorder) *PGStore {
	return &PGStore{pool: pool, recorder: recorder}
}

// Read loads the current persisted state of a resource.
func (s *PGStore) Read(ctx context.Context, kind, id string) (Record, error) {
	return s.read(ctx, s.pool, kind, id)
}

type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PGStore) read(ctx context.Context, q queryer, kind, id string) (Record, error) {
	var rec Record
	var fieldsJSON []byte
	err := q.QueryRow(ctx, `SELECT id, kind, state, previous_state, state_entered_at, state_entered_by, version, fields
FROM resources WHERE kind=$1 AND id=$2`, kind, id).Scan(
		&rec.ID, &rec.Kind, &rec.State, &rec.PreviousState,
		&rec.StateEnteredAt, &rec.StateEnteredBy, &rec.Version, &fieldsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	if len(fieldsJSON) > 0 {
		_ = json.Unmarshal(fieldsJSON, &rec.Fields)
	}
	return rec, nil
}

// Create inserts a new resource record at version 1.
func (s *PGStore) Create(ctx context.Context, rec Record) (Record, error) {
	fieldsJSON, err := json.Marshal(rec.Fields)
	if err != nil {
		return Record{}, err
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO resources (id, kind, state, previous_state, state_entered_at, state_entered_by, version, fields)
VALUES ($1, $2, $3, '', $4, $5, 1, $6)`,
		rec.ID, rec.Kind, rec.State, rec.StateEnteredAt, rec.StateEnteredBy, fieldsJSON)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Record{}, ErrConflict
		}
		return Record{}, err
	}
	return s.Read(ctx, rec.Kind, rec.ID)
}

const conditionalWriteSQL = `UPDATE resources
SET state=$1, previous_state=$2, state_entered_at=$3, state_entered_by=$4,
    version=version+1, fields=fields || $5
WHERE kind=$6 AND id=$7 AND version=$8
RETURNING id, kind, state, previous_state, state_entered_at, state_entered_by, version, fields`

// ConditionalWrite applies one optimistic state write. A version mismatch
// yields ErrConflict; an unknown id yields ErrNotFound.
func (s *PGStore) ConditionalWrite(ctx context.Context, kind, id string, expectedVersion int64, w Write) (Record, error) {
	return s.conditionalWrite(ctx, s.pool, kind, id, expectedVersion, w)
}

func (s *PGStore) conditionalWrite(ctx context.Context, q queryer, kind, id string, expectedVersion int64, w Write) (Record, error) {
	fieldsJSON, err := json.Marshal(orEmpty(w.Fields))
	if err != nil {
		return Record{}, err
	}
	var rec Record
	var rawFields []byte
	err = q.QueryRow(ctx, conditionalWriteSQL,
		w.NewState, w.PreviousState, w.StateEnteredAt, w.StateEnteredBy, fieldsJSON,
		kind, id, expectedVersion).Scan(
		&rec.ID, &rec.Kind, &rec.State, &rec.PreviousState,
		&rec.StateEnteredAt, &rec.StateEnteredBy, &rec.Version, &rawFields)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a lost race from a missing resource.
			if _, readErr := s.read(ctx, s.pool, kind, id); readErr != nil {
				return Record{}, readErr
			}
			return Record{}, ErrConflict
		}
		return Record{}, err
	}
	if len(rawFields) > 0 {
		_ = json.Unmarshal(rawFields, &rec.Fields)
	}
	return rec, nil
}

// ConditionalWriteAudited commits the state write and the audit entry in one
// transaction so neither lands without the other.
func (s *PGStore) ConditionalWriteAudited(ctx context.Context, kind, id string, expectedVersion int64, w Write, entry audit.Entry) (Record, error) {
	if s.recorder == nil {
		return Record{}, fmt.Errorf("lifecycle: audited write requires a recorder")
	}
	var rec Record
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		rec, err = s.conditionalWrite(ctx, tx, kind, id, expectedVersion, w)
		if err != nil {
			return err
		}
		return s.recorder.AppendTx(ctx, tx, entry)
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func orEmpty(fields map[string]any) map[string]any {
	if fields == nil {
		return map[string]any{}
	}
	return fields
}

var _ Store = (*PGStore)(nil)
