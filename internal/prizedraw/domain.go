// Package prizedraw implements prize-draw entry. Entry is a one-shot:
// at most one entry exists per (user, draw) pair, enforced by a store-level
// unique constraint, and entering twice returns the existing entry unchanged.
package prizedraw

import (
	"errors"
	"time"
)

// Entry records a member's participation in a draw.
type Entry struct {
	UserID    int64     `json:"user_id"`
	DrawID    int64     `json:"draw_id"`
	EnteredAt time.Time `json:"entered_at"`
}

// ErrDuplicate signals the unique constraint fired on insert. Callers treat
// it as "already entered", never as a failure.
var ErrDuplicate = errors.New("prizedraw: entry already exists")

// ErrNotFound indicates no entry exists for the pair.
var ErrNotFound = errors.New("prizedraw: entry not found")
