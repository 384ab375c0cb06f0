package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignerRoundTrip(t *testing.T) {
	s := NewSigner("test-secret")

	id, err := GenerateID()
	require.NoError(t, err)

	got, ok := s.Verify(s.Sign(id))
	require.True(t, ok)
	require.Equal(t, id, got)
}

func TestSignerRejectsTamperedValue(t *testing.T) {
	s := NewSigner("test-secret")

	id, err := GenerateID()
	require.NoError(t, err)
	signed := s.Sign(id)

	_, ok := s.Verify("x" + signed[1:])
	require.False(t, ok)

	_, ok = s.Verify(signed + "x")
	require.False(t, ok)
}

func TestSignerRejectsWrongSecret(t *testing.T) {
	id, err := GenerateID()
	require.NoError(t, err)
	signed := NewSigner("one").Sign(id)

	_, ok := NewSigner("two").Verify(signed)
	require.False(t, ok)
}

func TestSignerRejectsMalformedValue(t *testing.T) {
	s := NewSigner("test-secret")

	for _, v := range []string{"", "no-separator", ".onlymac"} {
		_, ok := s.Verify(v)
		require.False(t, ok, "value %q", v)
	}
}
