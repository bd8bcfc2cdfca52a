package messaging

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists conversation messages.
type Repository interface {
	ListMessages(ctx context.Context, memberID int64) ([]Message, error)
	InsertMessage(ctx context.Context, memberID, senderID int64, body string, at time.Time) (Message, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ListMessages returns the member's conversation oldest first.
func (r *PGRepository) ListMessages(ctx context.Context, memberID int64) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, member_id, sender_id, body, sent_at
FROM messages WHERE member_id = $1 ORDER BY sent_at ASC`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.MemberID, &m.SenderID, &m.Body, &m.SentAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// InsertMessage appends a message to the member's conversation.
func (r *PGRepository) InsertMessage(ctx context.Context, memberID, senderID int64, body string, at time.Time) (Message, error) {
	var m Message
	err := r.pool.QueryRow(ctx, `INSERT INTO messages (member_id, sender_id, body, sent_at)
VALUES ($1, $2, $3, $4)
RETURNING id, member_id, sender_id, body, sent_at`, memberID, senderID, body, at.UTC()).Scan(
		&m.ID, &m.MemberID, &m.SenderID, &m.Body, &m.SentAt)
	if err != nil {
		return Message{}, err
	}
	return m, nil
}

var _ Repository = (*PGRepository)(nil)
