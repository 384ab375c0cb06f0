package directory

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryDirectory is an in-process Directory with the same uniqueness
// semantics as the Postgres implementation. Used in tests and available
// for local development without a database.
type MemoryDirectory struct {
	mu      sync.Mutex
	byEmail map[string]*User
	byID    map[string]*User
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		byEmail: make(map[string]*User),
		byID:    make(map[string]*User),
	}
}

func (d *MemoryDirectory) FindByEmail(_ context.Context, email string) (*User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (d *MemoryDirectory) Create(_ context.Context, email string, verified bool) (*User, error) {
	email = NormalizeEmail(email)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.byEmail[email]; ok {
		return nil, ErrConflict
	}

	user := &User{ID: uuid.NewString(), Email: email, Verified: verified}
	d.byEmail[email] = user
	d.byID[user.ID] = user

	copied := *user
	return &copied, nil
}

func (d *MemoryDirectory) FindOrCreate(ctx context.Context, email string, verified bool) (*User, error) {
	user, err := d.Create(ctx, email, verified)
	if err == nil {
		return user, nil
	}
	if err != ErrConflict {
		return nil, err
	}
	return d.FindByEmail(ctx, email)
}

func (d *MemoryDirectory) MarkVerified(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.byID[id]
	if !ok {
		return ErrNotFound
	}
	user.Verified = true
	return nil
}
