// Package directory reads the authoritative user and employee records used
// for authorization: base roles, employee designations, and agent-member
// assignments.
package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-club/meridian/internal/authz"
)

// ErrNotFound indicates the user record does not exist.
var ErrNotFound = errors.New("directory: user not found")

// Repository reads role facts and assignments from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetRoleFacts fetches the base role and optional employee designation for a
// user. Facts always come from this store, keyed by user id; client-supplied
// role fields are never consulted.
func (r *Repository) GetRoleFacts(ctx context.Context, userID int64) (authz.RoleFacts, error) {
	var facts authz.RoleFacts
	var baseRole string
	var category *string
	err := r.pool.QueryRow(ctx, `SELECT u.base_role, e.role_category
FROM users u
LEFT JOIN employees e ON e.user_id = u.id AND e.ended_at IS NULL
WHERE u.id = $1 AND u.is_active`, userID).Scan(&baseRole, &category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authz.RoleFacts{}, ErrNotFound
		}
		return authz.RoleFacts{}, fmt.Errorf("directory: role facts: %w", err)
	}
	facts.BaseRole = authz.Role(baseRole)
	if category != nil {
		facts.EmployeeRoleCategory = *category
	}
	return facts, nil
}

// IsAssigned reports whether the agent currently holds an assignment to the
// member. The fact is read fresh on every call; callers must not cache it
// across requests.
func (r *Repository) IsAssigned(ctx context.Context, agentID, memberID int64) (bool, error) {
	var assigned bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (
SELECT 1 FROM agent_assignments
WHERE agent_id = $1 AND member_id = $2 AND revoked_at IS NULL)`, agentID, memberID).Scan(&assigned)
	if err != nil {
		return false, fmt.Errorf("directory: assignment lookup: %w", err)
	}
	return assigned, nil
}

var _ authz.DirectoryStore = (*Repository)(nil)
