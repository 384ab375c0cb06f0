package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Aryan3212/yelpcamp/internal/auth"
	"github.com/Aryan3212/yelpcamp/internal/session"
	"github.com/Aryan3212/yelpcamp/internal/telemetry"
)

const (
	recordKey    = "yelpcamp.session"
	principalKey = "yelpcamp.principal"

	// storeTimeout bounds every session store operation so a slow
	// store can never hold a request open indefinitely.
	storeTimeout = 3 * time.Second
)

// SessionMiddleware attaches a session to every inbound request. A
// missing, expired, or unreadable session degrades to a fresh anonymous
// one; failure to persist that fresh session fails the request rather
// than silently continuing without state.
type SessionMiddleware struct {
	store  session.Store
	cookie session.CookieOptions
	signer *session.Signer
}

func NewSessionMiddleware(store session.Store, cookie session.CookieOptions, signer *session.Signer) *SessionMiddleware {
	return &SessionMiddleware{store: store, cookie: cookie, signer: signer}
}

// Attach is the gin middleware that loads or creates the session and
// exposes the principal, if any, to downstream handlers.
func (m *SessionMiddleware) Attach() gin.HandlerFunc {
	return func(c *gin.Context) {
		rec := m.loadSession(c)
		if rec == nil {
			var err error
			rec, err = m.createSession(c)
			if err != nil {
				slog.Error("failed to create session", "error", err)
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
		}

		c.Set(recordKey, rec)
		if rec.UserID != "" {
			c.Set(principalKey, auth.Principal{
				UserID:               rec.UserID,
				RequiresFinalization: rec.Payload.Get("finalize") == "pending",
			})
		}

		c.Next()
	}
}

func (m *SessionMiddleware) loadSession(c *gin.Context) *session.Record {
	cookie, err := c.Request.Cookie(m.cookie.Name)
	if err != nil || cookie.Value == "" {
		return nil
	}

	// A cookie that fails MAC verification never reaches the store.
	id, ok := m.signer.Verify(cookie.Value)
	if !ok {
		slog.Warn("session cookie failed verification")
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	rec, err := m.store.Get(ctx, id)
	if err != nil {
		// NotFound, an unreachable store, and a timed-out load all read
		// as "no session" here; the login-completion path has its own,
		// stricter handling.
		if !errors.Is(err, session.ErrNotFound) {
			slog.Warn("session load degraded to anonymous", "error", err)
		}
		return nil
	}

	touchCtx, touchCancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer touchCancel()

	if err := m.store.Touch(touchCtx, rec.ID); err != nil && !errors.Is(err, session.ErrNotFound) {
		slog.Warn("session touch failed", "error", err)
	} else if err == nil {
		telemetry.SessionsTouched.Inc()
	}

	return rec
}

func (m *SessionMiddleware) createSession(c *gin.Context) (*session.Record, error) {
	rec, err := session.NewRecord(time.Now())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	if err := m.store.Create(ctx, rec); err != nil {
		return nil, err
	}

	telemetry.SessionsCreated.Inc()
	session.SetCookie(c.Writer, m.signer.Sign(rec.ID), rec.ExpiresAt, m.cookie)
	return &rec, nil
}

// Save persists the current request's session record, typically after a
// handler mutated its payload or principal binding.
func (m *SessionMiddleware) Save(c *gin.Context) error {
	rec, ok := Session(c)
	if !ok {
		return session.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	return m.store.Save(ctx, *rec)
}

// Destroy deletes the current session from the store and clears the
// cookie. It is idempotent.
func (m *SessionMiddleware) Destroy(c *gin.Context) error {
	rec, ok := Session(c)
	if ok {
		ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
		defer cancel()

		if err := m.store.Delete(ctx, rec.ID); err != nil {
			return err
		}
	}
	session.ClearCookie(c.Writer, m.cookie)
	return nil
}

// Session returns the request's session record.
func Session(c *gin.Context) (*session.Record, bool) {
	v, ok := c.Get(recordKey)
	if !ok {
		return nil, false
	}
	rec, ok := v.(*session.Record)
	return rec, ok
}

// Principal returns the authenticated principal, if the session has
// one.
func Principal(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

// RequireAuth guards routes that need an authenticated principal.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := Principal(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}
		c.Next()
	}
}
