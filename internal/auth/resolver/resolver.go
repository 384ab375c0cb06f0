package resolver

import (
	"context"

	"github.com/Aryan3212/yelpcamp/internal/auth"
)

// Resolver maps an external identity to a local principal. It is the
// only place where identity-to-user mapping logic lives.
type Resolver interface {
	Resolve(ctx context.Context, identity *auth.Identity) (auth.Principal, error)
}
