package provider

import (
	"context"

	"github.com/Aryan3212/yelpcamp/internal/auth"
)

// OAuthProvider defines the contract for the external identity
// provider. Implementations return identity facts only and must not
// perform user creation, linking, or session management.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "google").
	Name() string

	// AuthCodeURL returns the OAuth authorization URL. State and PKCE
	// parameters are provided by the caller.
	AuthCodeURL(state string, codeChallenge string) string

	// ExchangeCode exchanges the authorization code for provider
	// credentials and returns a normalized identity.
	ExchangeCode(ctx context.Context, code string, codeVerifier string) (*auth.Identity, error)
}
