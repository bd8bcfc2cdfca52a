package prizedraw

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists prize draw entries.
type Repository interface {
	Insert(ctx context.Context, userID, drawID int64, at time.Time) (Entry, error)
	Get(ctx context.Context, userID, drawID int64) (Entry, error)
}

// PGRepository implements Repository using PostgreSQL. The table carries a
// primary key on (user_id, draw_id); the 23505 unique violation is the
// idempotency signal.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Insert creates the entry, returning ErrDuplicate when one already exists.
func (r *PGRepository) Insert(ctx context.Context, userID, drawID int64, at time.Time) (Entry, error) {
	_, err := r.pool.Exec(ctx, `INSERT INTO prize_draw_entries (user_id, draw_id, entered_at)
VALUES ($1, $2, $3)`, userID, drawID, at.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Entry{}, ErrDuplicate
		}
		return Entry{}, err
	}
	return Entry{UserID: userID, DrawID: drawID, EnteredAt: at.UTC()}, nil
}

// Get loads the entry for the pair.
func (r *PGRepository) Get(ctx context.Context, userID, drawID int64) (Entry, error) {
	var entry Entry
	err := r.pool.QueryRow(ctx, `SELECT user_id, draw_id, entered_at
FROM prize_draw_entries WHERE user_id = $1 AND draw_id = $2`, userID, drawID).Scan(
		&entry.UserID, &entry.DrawID, &entry.EnteredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	return entry, nil
}

var _ Repository = (*PGRepository)(nil)
