package handler

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"github.com/Aryan3212/yelpcamp/internal/session"
)

// The anti-forgery state and the PKCE verifier are bound to the
// pre-auth session payload rather than to bare cookies, so the callback
// can only complete in the browser that began authorization.
const (
	statePayloadKey = "oauth_state"
	pkcePayloadKey  = "oauth_pkce"
)

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// beginHandshake stores a fresh state token and PKCE verifier in the
// payload and returns the state and code challenge for the redirect.
// A failure to source randomness aborts the handshake entirely; a
// predictable state token would defeat the correlation check.
func beginHandshake(p *session.Payload) (state, codeChallenge string, err error) {
	state, err = randomToken()
	if err != nil {
		return "", "", err
	}
	verifier, err := randomToken()
	if err != nil {
		return "", "", err
	}

	hash := sha256.Sum256([]byte(verifier))
	codeChallenge = base64.RawURLEncoding.EncodeToString(hash[:])

	p.Set(statePayloadKey, state)
	p.Set(pkcePayloadKey, verifier)
	return state, codeChallenge, nil
}

// finishHandshake consumes the stored correlation values. It reports
// whether the returned state matches the one issued at the start.
func finishHandshake(p *session.Payload, returnedState string) (codeVerifier string, ok bool) {
	issued := p.Get(statePayloadKey)
	codeVerifier = p.Get(pkcePayloadKey)
	p.Delete(statePayloadKey)
	p.Delete(pkcePayloadKey)

	if issued == "" || returnedState == "" {
		return "", false
	}
	if subtle.ConstantTimeCompare([]byte(issued), []byte(returnedState)) != 1 {
		return "", false
	}
	return codeVerifier, true
}
