package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aryan3212/yelpcamp/internal/auth/credentials"
	"github.com/Aryan3212/yelpcamp/internal/auth/handler"
	"github.com/Aryan3212/yelpcamp/internal/auth/provider"
	"github.com/Aryan3212/yelpcamp/internal/auth/provider/google"
	"github.com/Aryan3212/yelpcamp/internal/auth/resolver"
	"github.com/Aryan3212/yelpcamp/internal/config"
	"github.com/Aryan3212/yelpcamp/internal/directory"
	"github.com/Aryan3212/yelpcamp/internal/middleware"
	"github.com/Aryan3212/yelpcamp/internal/policy"
	"github.com/Aryan3212/yelpcamp/internal/session"
	"github.com/Aryan3212/yelpcamp/internal/telemetry"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {
	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	securityPolicy := policy.New(cfg)
	sessionStore := session.NewRedisStore(infra.Redis.Client)
	users := directory.NewPGDirectory(infra.DB)

	googleProvider, err := google.New(
		ctx,
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
	)
	if err != nil {
		return nil, nil, err
	}

	registry := provider.NewRegistry(googleProvider)

	cookieSigner := session.NewSigner(cfg.SessionSecret)
	sessions := middleware.NewSessionMiddleware(sessionStore, securityPolicy.CookieOptions(), cookieSigner)
	identityResolver := resolver.NewDirectoryResolver(users)
	creds := credentials.NewService(infra.DB, users)

	authHandler := handler.NewHandler(registry, sessions, identityResolver, creds)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	if cfg.Production() {
		// Behind the reverse proxy the first upstream hop is
		// authoritative for scheme and client address.
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			return nil, nil, err
		}
	} else {
		if err := router.SetTrustedProxies(nil); err != nil {
			return nil, nil, err
		}
	}

	router.Use(securityPolicy.SecureHeaders())
	router.Use(policy.Sanitize())
	router.Use(sessions.Attach())

	// ----------------------------
	// Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", telemetry.Handler())

	// Landing page stand-in: the real page rendering lives with the
	// review handlers, outside this subsystem.
	router.GET("/", func(c *gin.Context) {
		rec, _ := middleware.Session(c)

		var flashes []string
		if rec != nil {
			flashes = rec.Payload.ConsumeFlash("error")
			if len(flashes) > 0 {
				if err := sessions.Save(c); err != nil {
					slog.Warn("failed to persist consumed flash", "error", err)
				}
			}
		}

		_, authenticated := middleware.Principal(c)
		c.JSON(http.StatusOK, gin.H{
			"authenticated": authenticated,
			"messages":      flashes,
		})
	})

	router.GET("/users/oauth/finalize", middleware.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "finalize_pending"})
	})

	return router, infra.Close, nil
}
