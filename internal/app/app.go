package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Aryan3212/yelpcamp/internal/config"
)

// App owns the process lifecycle: bind, serve, drain, shutdown.
type App struct {
	httpServer *http.Server
	cleanup    func() error

	tls      bool
	certFile string
	keyFile  string
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	router, cleanup, err := setupHTTP(ctx, cfg)
	if err != nil {
		return nil, err
	}

	server := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: router,
	}

	return &App{
		httpServer: server,
		cleanup:    cleanup,
		tls:        cfg.TLS,
		certFile:   cfg.CertFile,
		keyFile:    cfg.KeyFile,
	}, nil
}

// Addr returns the effective bind address.
func (a *App) Addr() string {
	return a.httpServer.Addr
}

// Run binds the listener and serves until Shutdown. It returns nil when
// the server was closed by Shutdown.
func (a *App) Run() error {
	var err error
	if a.tls {
		err = a.httpServer.ListenAndServeTLS(a.certFile, a.keyFile)
	} else {
		err = a.httpServer.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests, then releases store connections.
// The returned error reflects only the listener close: resource cleanup
// beyond the drain is best-effort and must not change the exit code.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.httpServer.Shutdown(ctx)

	if a.cleanup != nil {
		if cerr := a.cleanup(); cerr != nil {
			slog.Warn("cleanup after drain failed", "error", cerr)
		}
	}

	return err
}
