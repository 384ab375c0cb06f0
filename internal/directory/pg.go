package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Aryan3212/yelpcamp/internal/db"
)

const uniqueViolation = "23505"

// PGDirectory is the canonical Directory backed by Postgres. The
// LOWER(email) unique index enforces the one-record-per-email
// invariant.
type PGDirectory struct {
	db *db.DB
}

func NewPGDirectory(db *db.DB) *PGDirectory {
	return &PGDirectory{db: db}
}

func (d *PGDirectory) FindByEmail(ctx context.Context, email string) (*User, error) {
	var (
		id       uuid.UUID
		stored   string
		verified bool
	)
	err := d.db.QueryRowContext(ctx, `
		SELECT id, email, verified
		FROM users
		WHERE LOWER(email) = $1
	`, NormalizeEmail(email)).Scan(&id, &stored, &verified)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("directory: lookup failed: %w", err)
	}

	return &User{ID: id.String(), Email: stored, Verified: verified}, nil
}

func (d *PGDirectory) Create(ctx context.Context, email string, verified bool) (*User, error) {
	email = NormalizeEmail(email)

	var id uuid.UUID
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO users (email, verified)
		VALUES ($1, $2)
		RETURNING id
	`, email, verified).Scan(&id)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("directory: create failed: %w", err)
	}

	return &User{ID: id.String(), Email: email, Verified: verified}, nil
}

// FindOrCreate tries the lookup first, then the insert. A concurrent
// winner surfaces as ErrConflict, in which case the losing writer
// retries as a lookup instead of erroring to the caller.
func (d *PGDirectory) FindOrCreate(ctx context.Context, email string, verified bool) (*User, error) {
	user, err := d.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	user, err = d.Create(ctx, email, verified)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrConflict) {
		return nil, err
	}

	return d.FindByEmail(ctx, email)
}

func (d *PGDirectory) MarkVerified(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE users
		SET verified = true, updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("directory: mark verified failed: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
