package resolver

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aryan3212/yelpcamp/internal/auth"
	"github.com/Aryan3212/yelpcamp/internal/directory"
)

func verifiedIdentity(email string) *auth.Identity {
	return &auth.Identity{
		Provider:       "google",
		ProviderUserID: "sub-123",
		Email:          email,
		EmailVerified:  true,
	}
}

func TestResolveFirstLoginCreatesOneUser(t *testing.T) {
	users := directory.NewMemoryDirectory()
	r := NewDirectoryResolver(users)
	ctx := context.Background()

	principal, err := r.Resolve(ctx, verifiedIdentity("a@example.com"))
	require.NoError(t, err)
	assert.NotEmpty(t, principal.UserID)
	assert.True(t, principal.RequiresFinalization, "fresh accounts need onboarding")

	user, err := users.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)
}

func TestResolveExistingVerifiedUser(t *testing.T) {
	users := directory.NewMemoryDirectory()
	ctx := context.Background()

	created, err := users.Create(ctx, "a@example.com", false)
	require.NoError(t, err)
	require.NoError(t, users.MarkVerified(ctx, created.ID))

	principal, err := NewDirectoryResolver(users).Resolve(ctx, verifiedIdentity("A@Example.com"))
	require.NoError(t, err)
	assert.Equal(t, created.ID, principal.UserID)
	assert.False(t, principal.RequiresFinalization)
}

func TestResolveRejectsUnverifiedEmail(t *testing.T) {
	users := directory.NewMemoryDirectory()
	r := NewDirectoryResolver(users)

	identity := verifiedIdentity("a@example.com")
	identity.EmailVerified = false

	_, err := r.Resolve(context.Background(), identity)
	assert.ErrorIs(t, err, auth.ErrUnverifiedEmail)

	_, err = users.FindByEmail(context.Background(), "a@example.com")
	assert.ErrorIs(t, err, directory.ErrNotFound, "no record may be created from an untrusted email")
}

func TestResolveRejectsMissingEmail(t *testing.T) {
	r := NewDirectoryResolver(directory.NewMemoryDirectory())

	identity := verifiedIdentity("")
	_, err := r.Resolve(context.Background(), identity)
	assert.ErrorIs(t, err, auth.ErrUnverifiedEmail)
}

func TestResolveConcurrentFirstLogins(t *testing.T) {
	users := directory.NewMemoryDirectory()
	r := NewDirectoryResolver(users)
	ctx := context.Background()

	const callers = 16
	principals := make([]auth.Principal, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := r.Resolve(ctx, verifiedIdentity("race@example.com"))
			require.NoError(t, err)
			principals[i] = p
		}(i)
	}
	wg.Wait()

	for _, p := range principals[1:] {
		assert.Equal(t, principals[0].UserID, p.UserID, "all callers must resolve to the same record")
	}
}
