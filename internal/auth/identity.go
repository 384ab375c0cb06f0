package auth

import "errors"

var (
	// ErrCallbackMismatch signals that the callback's anti-forgery
	// state did not match the one issued when authorization began.
	ErrCallbackMismatch = errors.New("auth: callback state mismatch")

	// ErrUnverifiedEmail signals that the provider did not assert
	// ownership of the email. An unverified third-party email is never
	// trusted to establish identity.
	ErrUnverifiedEmail = errors.New("auth: provider email not verified")
)

// Identity is the normalized external profile returned by a provider.
// It is transient: facts only, no decisions, discarded after it is
// mapped to a local user.
type Identity struct {
	Provider       string // e.g. "google"
	ProviderUserID string // provider-scoped subject (sub)
	Email          string
	EmailVerified  bool // whether the provider asserts email ownership
	DisplayName    string
}

// Principal is the authenticated identity bound to a session after a
// successful login.
type Principal struct {
	UserID string

	// RequiresFinalization directs the caller to the onboarding step
	// instead of the main application when the account is not yet
	// fully set up. Caller-visible by design, not a hidden side effect.
	RequiresFinalization bool
}
