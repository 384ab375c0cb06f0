package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/Aryan3212/yelpcamp/internal/auth"
	"github.com/Aryan3212/yelpcamp/internal/directory"
)

// DirectoryResolver resolves identities against the user directory.
// New accounts start unverified so the caller routes the user through
// the finalization step before the main application.
type DirectoryResolver struct {
	users directory.Directory
}

func NewDirectoryResolver(users directory.Directory) *DirectoryResolver {
	return &DirectoryResolver{users: users}
}

func (r *DirectoryResolver) Resolve(ctx context.Context, identity *auth.Identity) (auth.Principal, error) {
	if identity == nil {
		return auth.Principal{}, errors.New("resolver: identity is nil")
	}

	if identity.Email == "" || !identity.EmailVerified {
		return auth.Principal{}, auth.ErrUnverifiedEmail
	}

	user, err := r.users.FindOrCreate(ctx, identity.Email, false)
	if err != nil {
		return auth.Principal{}, fmt.Errorf("resolver: resolve %s identity: %w", identity.Provider, err)
	}

	return auth.Principal{
		UserID:               user.ID,
		RequiresFinalization: !user.Verified,
	}, nil
}
