package auth

import (
	"errors"
	"time"

	"github.com/meridian-club/meridian/internal/authz"
)

// User represents an account able to hold a session.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	BaseRole     authz.Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ErrInvalidCredentials indicates login failure. The same error covers
// unknown accounts, bad passwords, and deactivated users so responses leak
// nothing about which check failed.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")
