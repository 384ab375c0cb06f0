package directory

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when no user matches the lookup key.
	ErrNotFound = errors.New("directory: user not found")

	// ErrConflict signals a uniqueness violation on create. Callers
	// racing on first login retry the operation as a lookup.
	ErrConflict = errors.New("directory: email already registered")
)

// User is a local identity record. Exactly one exists per normalized
// email; records are never deleted by this subsystem and only the
// verification flag is mutated after creation.
type User struct {
	ID       string
	Email    string
	Verified bool
}

// Directory is the durable store of user records, keyed by a unique,
// case-normalized email.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, email string, verified bool) (*User, error)

	// FindOrCreate resolves an email to exactly one user even under
	// concurrent first logins.
	FindOrCreate(ctx context.Context, email string, verified bool) (*User, error)

	// MarkVerified flips the verification flag once onboarding finishes.
	MarkVerified(ctx context.Context, id string) error
}

// NormalizeEmail lowers and trims an email so lookups and the store's
// uniqueness constraint agree on the key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
