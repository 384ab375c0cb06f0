package credentials

import (
	"context"
	"fmt"

	"github.com/Aryan3212/yelpcamp/internal/db"
	"github.com/Aryan3212/yelpcamp/internal/directory"
)

// Service finalizes federated accounts: it stores a local credential
// for the user and flips the directory's verification flag so later
// logins skip onboarding.
type Service struct {
	db    *db.DB
	users directory.Directory
}

func NewService(db *db.DB, users directory.Directory) *Service {
	return &Service{db: db, users: users}
}

// Finalize sets the user's local password and marks the account
// verified. Re-running it replaces the stored credential.
func (s *Service) Finalize(ctx context.Context, userID, password string) error {
	hash, version, err := HashPassword(password)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (user_id, password_hash, hash_version)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET password_hash = $2, hash_version = $3, updated_at = NOW()
	`, userID, hash, version)
	if err != nil {
		return fmt.Errorf("credentials: store failed: %w", err)
	}

	return s.users.MarkVerified(ctx, userID)
}
