package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aryan3212/yelpcamp/internal/auth"
	"github.com/Aryan3212/yelpcamp/internal/auth/credentials"
	"github.com/Aryan3212/yelpcamp/internal/auth/provider"
	"github.com/Aryan3212/yelpcamp/internal/auth/resolver"
	"github.com/Aryan3212/yelpcamp/internal/middleware"
	"github.com/Aryan3212/yelpcamp/internal/telemetry"
)

const finalizePayloadKey = "finalize"

type Handler struct {
	providers *provider.Registry
	sessions  *middleware.SessionMiddleware
	resolver  resolver.Resolver
	creds     *credentials.Service
}

func NewHandler(
	registry *provider.Registry,
	sessions *middleware.SessionMiddleware,
	resolver resolver.Resolver,
	creds *credentials.Service,
) *Handler {
	return &Handler{
		providers: registry,
		sessions:  sessions,
		resolver:  resolver,
		creds:     creds,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/auth/:provider", h.login)
	r.GET("/auth/:provider/callback", h.callback)
	r.POST("/auth/logout", h.Logout)
	r.POST("/users/oauth/finalize", middleware.RequireAuth(), h.Finalize)
}

// login begins the authorization handshake: the only local state is the
// correlation token bound to the pre-auth session.
func (h *Handler) login(c *gin.Context) {
	p, err := h.providers.Get(c.Param("provider"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown oauth provider"})
		return
	}

	rec, ok := middleware.Session(c)
	if !ok {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	state, codeChallenge, err := beginHandshake(&rec.Payload)
	if err != nil {
		slog.Error("failed to start authorization handshake", "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	if err := h.sessions.Save(c); err != nil {
		slog.Error("failed to persist handshake state", "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Redirect(http.StatusFound, p.AuthCodeURL(state, codeChallenge))
}

// callback completes the handshake. Trust-boundary violations reject
// the attempt and route back to the landing page with a flash message;
// they never fall back to a degraded authenticated state.
func (h *Handler) callback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown oauth provider"})
		return
	}

	rec, ok := middleware.Session(c)
	if !ok {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	codeVerifier, stateOK := finishHandshake(&rec.Payload, c.Query("state"))
	if !stateOK {
		h.reject(c, providerName, "callback_mismatch", auth.ErrCallbackMismatch)
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		slog.Warn("provider callback returned error",
			"provider", providerName,
			"error", errParam,
			"desc", c.Query("error_description"),
		)
		h.reject(c, providerName, "provider_error", nil)
		return
	}

	code := c.Query("code")
	if code == "" {
		slog.Error("provider callback missing code and error", "provider", providerName)
		h.reject(c, providerName, "missing_code", nil)
		return
	}

	identity, err := p.ExchangeCode(c.Request.Context(), code, codeVerifier)
	if err != nil {
		slog.Warn("token exchange failed", "provider", providerName, "error", err)
		h.reject(c, providerName, "exchange_failed", nil)
		return
	}

	principal, err := h.resolver.Resolve(c.Request.Context(), identity)
	if errors.Is(err, auth.ErrUnverifiedEmail) {
		h.reject(c, providerName, "unverified_email", err)
		return
	}
	if err != nil {
		// Ambiguous store state on the completion path is a hard
		// failure; never grant a session here.
		slog.Error("failed to resolve user", "provider", providerName, "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	rec.UserID = principal.UserID
	if principal.RequiresFinalization {
		rec.Payload.Set(finalizePayloadKey, "pending")
	} else {
		rec.Payload.Delete(finalizePayloadKey)
	}

	if err := h.sessions.Save(c); err != nil {
		slog.Error("failed to persist authenticated session", "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	telemetry.LoginsCompleted.Inc()
	slog.Info("login completed",
		"provider", providerName,
		"user_id", principal.UserID,
		"requires_finalization", principal.RequiresFinalization,
	)

	if principal.RequiresFinalization {
		c.Redirect(http.StatusFound, "/users/oauth/finalize")
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// reject routes a failed login back to the unauthenticated landing
// state with a transient message, without leaking internal detail.
func (h *Handler) reject(c *gin.Context, providerName, reason string, err error) {
	telemetry.LoginsRejected.WithLabelValues(reason).Inc()
	if err != nil {
		slog.Warn("login rejected", "provider", providerName, "reason", reason, "error", err)
	}

	if rec, ok := middleware.Session(c); ok {
		rec.Payload.AddFlash("error", "Sign-in failed. Please try again.")
		if saveErr := h.sessions.Save(c); saveErr != nil {
			slog.Warn("failed to persist rejection flash", "error", saveErr)
		}
	}

	c.Redirect(http.StatusFound, "/")
}

// Logout destroys the session and clears the cookie. Idempotent.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.Destroy(c); err != nil {
		slog.Warn("logout: session delete failed", "error", err)
	}
	c.Redirect(http.StatusFound, "/")
}

type finalizeRequest struct {
	Password string `form:"password" json:"password"`
}

// Finalize completes onboarding for a federated account: the user sets
// a local password and the directory record is marked verified.
func (h *Handler) Finalize(c *gin.Context) {
	principal, _ := middleware.Principal(c)

	var req finalizeRequest
	if err := c.ShouldBind(&req); err != nil || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password required"})
		return
	}

	if err := h.creds.Finalize(c.Request.Context(), principal.UserID, req.Password); err != nil {
		slog.Error("account finalization failed", "user_id", principal.UserID, "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	if rec, ok := middleware.Session(c); ok {
		rec.Payload.Delete(finalizePayloadKey)
		if err := h.sessions.Save(c); err != nil {
			slog.Warn("failed to persist finalized session", "error", err)
		}
	}

	c.Redirect(http.StatusFound, "/")
}
