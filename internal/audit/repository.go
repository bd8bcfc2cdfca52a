package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository reads audit entries from PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// TimelineWindow returns entries newest first, filtered and windowed.
func (r *PGRepository) TimelineWindow(ctx context.Context, filters TimelineFilters, limit, offset int) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, actor_id, action, kind, resource_id, before_state, after_state, reason, override, denied, at
FROM audit_entries
WHERE ($1::timestamptz IS NULL OR at >= $1)
  AND ($2::timestamptz IS NULL OR at <= $2)
  AND ($3::bigint = 0 OR actor_id = $3)
  AND ($4::text = '' OR kind = $4)
  AND ($5::text = '' OR action = $5)
ORDER BY at DESC
LIMIT $6 OFFSET $7`,
		nullableTime(filters.From), nullableTime(filters.To), filters.ActorID,
		normalizeFilter(filters.Kind), normalizeFilter(filters.Action), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Kind, &e.ResourceID,
			&e.BeforeState, &e.AfterState, &e.Reason, &e.Override, &e.Denied, &e.At); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

var _ Repository = (*PGRepository)(nil)
