package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aryan3212/yelpcamp/internal/app"
	"github.com/Aryan3212/yelpcamp/internal/config"
	"github.com/Aryan3212/yelpcamp/internal/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	root := &cobra.Command{
		Use:           "yelpcamp-server",
		Short:         "Review-it application server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	if err := root.Execute(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- application.Run()
	}()

	slog.Info("server started",
		"addr", application.Addr(),
		"mode", cfg.Mode,
		"tls", cfg.TLS,
	)

	select {
	case err := <-serveErr:
		// Listener failed before any signal arrived.
		return err
	case <-ctx.Done():
	}

	slog.Info("shutdown signal received, draining")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Exit code is gated on a clean listener close; in-flight requests
	// must complete before the process exits.
	if err := application.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-serveErr; err != nil {
		return err
	}

	slog.Info("server stopped cleanly")
	return nil
}
