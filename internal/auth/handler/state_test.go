package handler

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aryan3212/yelpcamp/internal/session"
)

func TestBeginHandshake(t *testing.T) {
	p := session.NewPayload()

	state, challenge, err := beginHandshake(&p)
	require.NoError(t, err)
	require.NotEmpty(t, state)
	require.NotEmpty(t, challenge)

	assert.Equal(t, state, p.Get(statePayloadKey))

	// The challenge must be the S256 transform of the stored verifier.
	verifier := p.Get(pkcePayloadKey)
	require.NotEmpty(t, verifier)
	hash := sha256.Sum256([]byte(verifier))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(hash[:]), challenge)
}

func TestBeginHandshakeTokensAreUnique(t *testing.T) {
	p1, p2 := session.NewPayload(), session.NewPayload()

	s1, _, err := beginHandshake(&p1)
	require.NoError(t, err)
	s2, _, err := beginHandshake(&p2)
	require.NoError(t, err)

	assert.NotEqual(t, s1, s2)
	assert.NotEqual(t, p1.Get(pkcePayloadKey), p2.Get(pkcePayloadKey))
}

func TestFinishHandshakeIsSingleUse(t *testing.T) {
	p := session.NewPayload()
	state, _, err := beginHandshake(&p)
	require.NoError(t, err)

	verifier, ok := finishHandshake(&p, state)
	require.True(t, ok)
	require.NotEmpty(t, verifier)

	// Replaying the same state after consumption must fail.
	_, ok = finishHandshake(&p, state)
	assert.False(t, ok)
}
