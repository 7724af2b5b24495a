package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateIdentity = errors.New("email already registered")
)

// Store persists user records. Every method touches exactly one user, and
// Insert is the only arbiter of email uniqueness.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Insert(ctx context.Context, user *User) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id string, hash string) error
	// RecordProgress applies update to the stored progress in one atomic step
	// and returns the result.
	RecordProgress(ctx context.Context, id string, update ProgressUpdate) (Progress, error)
	SetActive(ctx context.Context, id string, active bool) error
}
